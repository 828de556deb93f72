// Package reorder keeps sibling sort_order values dense: for every container
// the orders of its n children are exactly {0 .. n-1}, no duplicates, no gaps.
//
// The same engine serves cards-within-a-lane and lanes-within-a-board; the
// Scope value picks the tables. Every operation takes a db.DBTX so the caller
// decides the transaction boundary — a move and all its sibling shifts must
// commit together or not at all.
package reorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskboard-backend/pkg/db"
	"taskboard-backend/pkg/idwrap"
)

// Scope names the sibling set the engine operates on. Table rows carry a
// sort_order column scoped by ContainerColumn.
type Scope struct {
	Table           string
	ContainerTable  string
	ContainerColumn string
}

var (
	CardScope = Scope{Table: "cards", ContainerTable: "lanes", ContainerColumn: "lane_id"}
	LaneScope = Scope{Table: "lanes", ContainerTable: "boards", ContainerColumn: "board_id"}
)

var (
	ErrItemNotFound      = sql.ErrNoRows
	ErrContainerNotFound = errors.New("target container not found")
	ErrOrderingViolated  = errors.New("dense ordering violated")
)

// Placement is an item's current container and position.
type Placement struct {
	ContainerID idwrap.IDWrap
	Order       int64
}

// GetPlacement reads where an item currently sits.
func GetPlacement(ctx context.Context, q db.DBTX, s Scope, itemID idwrap.IDWrap) (Placement, error) {
	var p Placement
	query := fmt.Sprintf(`SELECT %s, sort_order FROM %s WHERE id = ?`, s.ContainerColumn, s.Table)
	err := q.QueryRowContext(ctx, query, itemID).Scan(&p.ContainerID, &p.Order)
	if err != nil {
		return Placement{}, err
	}
	return p, nil
}

func containerExists(ctx context.Context, q db.DBTX, s Scope, containerID idwrap.IDWrap) (bool, error) {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = ?)`, s.ContainerTable)
	err := q.QueryRowContext(ctx, query, containerID).Scan(&exists)
	return exists, err
}

func count(ctx context.Context, q db.DBTX, s Scope, containerID idwrap.IDWrap) (int64, error) {
	var n int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, s.Table, s.ContainerColumn)
	err := q.QueryRowContext(ctx, query, containerID).Scan(&n)
	return n, err
}

// Append returns the order value a newly created child should get: one past
// the current highest sibling, or 0 for the first child.
func Append(ctx context.Context, q db.DBTX, s Scope, containerID idwrap.IDWrap) (int64, error) {
	var next int64
	query := fmt.Sprintf(`SELECT COALESCE(MAX(sort_order) + 1, 0) FROM %s WHERE %s = ?`, s.Table, s.ContainerColumn)
	err := q.QueryRowContext(ctx, query, containerID).Scan(&next)
	return next, err
}

// Move relocates an item to targetPos inside targetContainerID, shifting the
// affected siblings so both containers stay dense. targetPos is a 0-based
// index into the pre-move ordering; positions past the end are clamped to
// "append at end". Moving an item onto its current position is a no-op.
//
// Callers must run Move inside a transaction together with any other writes
// belonging to the same request.
func Move(ctx context.Context, q db.DBTX, s Scope, itemID, targetContainerID idwrap.IDWrap, targetPos int64) error {
	cur, err := GetPlacement(ctx, q, s, itemID)
	if err != nil {
		return err
	}

	sameContainer := cur.ContainerID.Compare(targetContainerID) == 0
	if !sameContainer {
		exists, err := containerExists(ctx, q, s, targetContainerID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrContainerNotFound
		}
	}

	destCount, err := count(ctx, q, s, targetContainerID)
	if err != nil {
		return err
	}

	if targetPos < 0 {
		targetPos = 0
	}
	if sameContainer {
		// The item itself is part of destCount; last valid slot is n-1.
		if max := destCount - 1; targetPos > max {
			targetPos = max
		}
	} else if targetPos > destCount {
		targetPos = destCount
	}

	if sameContainer && targetPos == cur.Order {
		return nil
	}

	switch {
	case sameContainer && targetPos > cur.Order:
		query := fmt.Sprintf(`
			UPDATE %s SET sort_order = sort_order - 1
			WHERE %s = ? AND sort_order > ? AND sort_order <= ?
		`, s.Table, s.ContainerColumn)
		if _, err := q.ExecContext(ctx, query, cur.ContainerID, cur.Order, targetPos); err != nil {
			return err
		}
	case sameContainer:
		query := fmt.Sprintf(`
			UPDATE %s SET sort_order = sort_order + 1
			WHERE %s = ? AND sort_order >= ? AND sort_order < ?
		`, s.Table, s.ContainerColumn)
		if _, err := q.ExecContext(ctx, query, cur.ContainerID, targetPos, cur.Order); err != nil {
			return err
		}
	default:
		closeGap := fmt.Sprintf(`
			UPDATE %s SET sort_order = sort_order - 1
			WHERE %s = ? AND sort_order > ?
		`, s.Table, s.ContainerColumn)
		if _, err := q.ExecContext(ctx, closeGap, cur.ContainerID, cur.Order); err != nil {
			return err
		}
		openSlot := fmt.Sprintf(`
			UPDATE %s SET sort_order = sort_order + 1
			WHERE %s = ? AND sort_order >= ?
		`, s.Table, s.ContainerColumn)
		if _, err := q.ExecContext(ctx, openSlot, targetContainerID, targetPos); err != nil {
			return err
		}
	}

	place := fmt.Sprintf(`UPDATE %s SET %s = ?, sort_order = ? WHERE id = ?`, s.Table, s.ContainerColumn)
	_, err = q.ExecContext(ctx, place, targetContainerID, targetPos, itemID)
	return err
}

// CompactAfterDelete closes the gap a removed item left behind. Run it in the
// same transaction as the delete, with the item's pre-delete placement.
func CompactAfterDelete(ctx context.Context, q db.DBTX, s Scope, containerID idwrap.IDWrap, deletedOrder int64) error {
	query := fmt.Sprintf(`
		UPDATE %s SET sort_order = sort_order - 1
		WHERE %s = ? AND sort_order > ?
	`, s.Table, s.ContainerColumn)
	_, err := q.ExecContext(ctx, query, containerID, deletedOrder)
	return err
}

// CheckDense verifies the container's orders are exactly {0 .. n-1}.
func CheckDense(ctx context.Context, q db.DBTX, s Scope, containerID idwrap.IDWrap) error {
	query := fmt.Sprintf(`
		SELECT sort_order FROM %s WHERE %s = ? ORDER BY sort_order ASC
	`, s.Table, s.ContainerColumn)
	rows, err := q.QueryContext(ctx, query, containerID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var want int64
	for rows.Next() {
		var got int64
		if err := rows.Scan(&got); err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("%w: have %d at slot %d", ErrOrderingViolated, got, want)
		}
		want++
	}
	return rows.Err()
}
