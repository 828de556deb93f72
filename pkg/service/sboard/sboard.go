package sboard

import (
	"context"
	"database/sql"

	"taskboard-backend/pkg/db"
	"taskboard-backend/pkg/idwrap"
	"taskboard-backend/pkg/model/mboard"
)

var ErrNoBoardFound = sql.ErrNoRows

type BoardService struct {
	q db.DBTX
}

func New(q db.DBTX) BoardService {
	return BoardService{q: q}
}

// NewTX binds the service to a caller-owned transaction.
func NewTX(tx db.DBTX) BoardService {
	return BoardService{q: tx}
}

func (s BoardService) CreateBoard(ctx context.Context, board *mboard.Board) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO boards (id, name, created_at)
		VALUES (?, ?, ?)
	`, board.ID, board.Name, board.CreatedAt)
	return err
}

func (s BoardService) GetBoard(ctx context.Context, id idwrap.IDWrap) (*mboard.Board, error) {
	board := mboard.Board{}
	err := s.q.QueryRowContext(ctx, `
		SELECT id, name, created_at
		FROM boards
		WHERE id = ?
	`, id).Scan(&board.ID, &board.Name, &board.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &board, nil
}

func (s BoardService) ListBoards(ctx context.Context) ([]mboard.Board, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, created_at
		FROM boards
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []mboard.Board
	for rows.Next() {
		var board mboard.Board
		if err := rows.Scan(&board.ID, &board.Name, &board.CreatedAt); err != nil {
			return nil, err
		}
		boards = append(boards, board)
	}
	return boards, rows.Err()
}

func (s BoardService) UpdateBoard(ctx context.Context, id idwrap.IDWrap, name string) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE boards
		SET name = ?
		WHERE id = ?
	`, name, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNoBoardFound
	}
	return nil
}

func (s BoardService) DeleteBoard(ctx context.Context, id idwrap.IDWrap) error {
	res, err := s.q.ExecContext(ctx, `
		DELETE FROM boards
		WHERE id = ?
	`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNoBoardFound
	}
	return nil
}
