package slane

import (
	"context"
	"database/sql"

	"taskboard-backend/pkg/db"
	"taskboard-backend/pkg/idwrap"
	"taskboard-backend/pkg/model/mlane"
)

var ErrNoLaneFound = sql.ErrNoRows

type LaneService struct {
	q db.DBTX
}

func New(q db.DBTX) LaneService {
	return LaneService{q: q}
}

// NewTX binds the service to a caller-owned transaction.
func NewTX(tx db.DBTX) LaneService {
	return LaneService{q: tx}
}

func (s LaneService) CreateLane(ctx context.Context, lane *mlane.Lane) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO lanes (id, board_id, title, sort_order)
		VALUES (?, ?, ?, ?)
	`, lane.ID, lane.BoardID, lane.Title, lane.Order)
	return err
}

func (s LaneService) GetLane(ctx context.Context, id idwrap.IDWrap) (*mlane.Lane, error) {
	lane := mlane.Lane{}
	err := s.q.QueryRowContext(ctx, `
		SELECT id, board_id, title, sort_order
		FROM lanes
		WHERE id = ?
	`, id).Scan(&lane.ID, &lane.BoardID, &lane.Title, &lane.Order)
	if err != nil {
		return nil, err
	}
	return &lane, nil
}

func (s LaneService) ListLanesByBoard(ctx context.Context, boardID idwrap.IDWrap) ([]mlane.Lane, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, board_id, title, sort_order
		FROM lanes
		WHERE board_id = ?
		ORDER BY sort_order ASC
	`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lanes []mlane.Lane
	for rows.Next() {
		var lane mlane.Lane
		if err := rows.Scan(&lane.ID, &lane.BoardID, &lane.Title, &lane.Order); err != nil {
			return nil, err
		}
		lanes = append(lanes, lane)
	}
	return lanes, rows.Err()
}

// UpdateLaneTitle renames a lane. Position changes go through the reorder
// engine, never through here.
func (s LaneService) UpdateLaneTitle(ctx context.Context, id idwrap.IDWrap, title string) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE lanes
		SET title = ?
		WHERE id = ?
	`, title, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNoLaneFound
	}
	return nil
}

func (s LaneService) DeleteLane(ctx context.Context, id idwrap.IDWrap) error {
	res, err := s.q.ExecContext(ctx, `
		DELETE FROM lanes
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
		return ErrNoLaneFound
	}
	return nil
}
