package scard

import (
	"context"
	"database/sql"

	"taskboard-backend/pkg/db"
	"taskboard-backend/pkg/idwrap"
	"taskboard-backend/pkg/model/mcard"
)

var ErrNoCardFound = sql.ErrNoRows

type CardService struct {
	q db.DBTX
}

func New(q db.DBTX) CardService {
	return CardService{q: q}
}

// NewTX binds the service to a caller-owned transaction.
func NewTX(tx db.DBTX) CardService {
	return CardService{q: tx}
}

func (s CardService) CreateCard(ctx context.Context, card *mcard.Card) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO cards (id, lane_id, title, description, priority, sort_order)
		VALUES (?, ?, ?, ?, ?, ?)
	`, card.ID, card.LaneID, card.Title, card.Description, card.Priority, card.Order)
	return err
}

func (s CardService) GetCard(ctx context.Context, id idwrap.IDWrap) (*mcard.Card, error) {
	card := mcard.Card{}
	err := s.q.QueryRowContext(ctx, `
		SELECT id, lane_id, title, description, priority, sort_order
		FROM cards
		WHERE id = ?
	`, id).Scan(&card.ID, &card.LaneID, &card.Title, &card.Description, &card.Priority, &card.Order)
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (s CardService) ListCardsByLane(ctx context.Context, laneID idwrap.IDWrap) ([]mcard.Card, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, lane_id, title, description, priority, sort_order
		FROM cards
		WHERE lane_id = ?
		ORDER BY sort_order ASC
	`, laneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCards(rows)
}

// ListCardsByBoard fetches every card on a board in lane then position order,
// so the board read-model can be nested in one pass.
func (s CardService) ListCardsByBoard(ctx context.Context, boardID idwrap.IDWrap) ([]mcard.Card, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT c.id, c.lane_id, c.title, c.description, c.priority, c.sort_order
		FROM cards c
		JOIN lanes l ON l.id = c.lane_id
		WHERE l.board_id = ?
		ORDER BY l.sort_order ASC, c.sort_order ASC
	`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCards(rows)
}

// UpdateCard writes the card's content fields. Lane and position changes go
// through the reorder engine, never through here.
func (s CardService) UpdateCard(ctx context.Context, card *mcard.Card) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE cards
		SET title = ?, description = ?, priority = ?
		WHERE id = ?
	`, card.Title, card.Description, card.Priority, card.ID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNoCardFound
	}
	return nil
}

func (s CardService) DeleteCard(ctx context.Context, id idwrap.IDWrap) error {
	res, err := s.q.ExecContext(ctx, `
		DELETE FROM cards
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
		return ErrNoCardFound
	}
	return nil
}

func scanCards(rows *sql.Rows) ([]mcard.Card, error) {
	var cards []mcard.Card
	for rows.Next() {
		var card mcard.Card
		if err := rows.Scan(&card.ID, &card.LaneID, &card.Title, &card.Description, &card.Priority, &card.Order); err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}
