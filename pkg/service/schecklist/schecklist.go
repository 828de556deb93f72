package schecklist

import (
	"context"
	"database/sql"

	"taskboard-backend/pkg/db"
	"taskboard-backend/pkg/idwrap"
	"taskboard-backend/pkg/model/mchecklist"
)

var ErrNoChecklistItemFound = sql.ErrNoRows

type ChecklistService struct {
	q db.DBTX
}

func New(q db.DBTX) ChecklistService {
	return ChecklistService{q: q}
}

// NewTX binds the service to a caller-owned transaction.
func NewTX(tx db.DBTX) ChecklistService {
	return ChecklistService{q: tx}
}

func (s ChecklistService) CreateItem(ctx context.Context, item *mchecklist.ChecklistItem) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO checklist_items (id, card_id, text, completed, assigned_to)
		VALUES (?, ?, ?, ?, ?)
	`, item.ID, item.CardID, item.Text, item.Completed, assignedArg(item.AssignedTo))
	return err
}

func (s ChecklistService) GetItem(ctx context.Context, id idwrap.IDWrap) (*mchecklist.ChecklistItem, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, card_id, text, completed, assigned_to
		FROM checklist_items
		WHERE id = ?
	`, id)
	return scanItem(row)
}

func (s ChecklistService) ListItemsByCard(ctx context.Context, cardID idwrap.IDWrap) ([]mchecklist.ChecklistItem, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, card_id, text, completed, assigned_to
		FROM checklist_items
		WHERE card_id = ?
		ORDER BY id ASC
	`, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

// ListItemsByBoard fetches every checklist item on a board, ordered the same
// way the cards are, for the nested board read-model.
func (s ChecklistService) ListItemsByBoard(ctx context.Context, boardID idwrap.IDWrap) ([]mchecklist.ChecklistItem, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT i.id, i.card_id, i.text, i.completed, i.assigned_to
		FROM checklist_items i
		JOIN cards c ON c.id = i.card_id
		JOIN lanes l ON l.id = c.lane_id
		WHERE l.board_id = ?
		ORDER BY i.id ASC
	`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

// ListPendingByAssignee returns a user's incomplete items joined with the
// owning card's title, the shape the bot's "my tasks" command reports.
func (s ChecklistService) ListPendingByAssignee(ctx context.Context, userID idwrap.IDWrap) ([]mchecklist.PendingTask, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT i.id, i.text, c.title
		FROM checklist_items i
		JOIN cards c ON c.id = i.card_id
		WHERE i.assigned_to = ? AND i.completed = 0
		ORDER BY i.id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []mchecklist.PendingTask
	for rows.Next() {
		var task mchecklist.PendingTask
		if err := rows.Scan(&task.ID, &task.Text, &task.CardTitle); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// GetCardTitle reads the title of the card an item belongs to, for the
// assignment notification payload.
func (s ChecklistService) GetCardTitle(ctx context.Context, itemID idwrap.IDWrap) (string, error) {
	var title string
	err := s.q.QueryRowContext(ctx, `
		SELECT c.title
		FROM checklist_items i
		JOIN cards c ON c.id = i.card_id
		WHERE i.id = ?
	`, itemID).Scan(&title)
	return title, err
}

func (s ChecklistService) UpdateItem(ctx context.Context, item *mchecklist.ChecklistItem) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE checklist_items
		SET text = ?, completed = ?, assigned_to = ?
		WHERE id = ?
	`, item.Text, item.Completed, assignedArg(item.AssignedTo), item.ID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNoChecklistItemFound
	}
	return nil
}

func (s ChecklistService) DeleteItem(ctx context.Context, id idwrap.IDWrap) error {
	res, err := s.q.ExecContext(ctx, `
		DELETE FROM checklist_items
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
		return ErrNoChecklistItemFound
	}
	return nil
}

// assignedArg keeps a nil assignee a SQL NULL instead of a zero-value blob.
func assignedArg(id *idwrap.IDWrap) any {
	if id == nil {
		return nil
	}
	return *id
}

func scanItem(row *sql.Row) (*mchecklist.ChecklistItem, error) {
	var item mchecklist.ChecklistItem
	var assigned []byte
	if err := row.Scan(&item.ID, &item.CardID, &item.Text, &item.Completed, &assigned); err != nil {
		return nil, err
	}
	if assigned != nil {
		id, err := idwrap.NewFromBytes(assigned)
		if err != nil {
			return nil, err
		}
		item.AssignedTo = &id
	}
	return &item, nil
}

func scanItems(rows *sql.Rows) ([]mchecklist.ChecklistItem, error) {
	var items []mchecklist.ChecklistItem
	for rows.Next() {
		var item mchecklist.ChecklistItem
		var assigned []byte
		if err := rows.Scan(&item.ID, &item.CardID, &item.Text, &item.Completed, &assigned); err != nil {
			return nil, err
		}
		if assigned != nil {
			id, err := idwrap.NewFromBytes(assigned)
			if err != nil {
				return nil, err
			}
			item.AssignedTo = &id
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
