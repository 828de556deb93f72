package mlane

import "taskboard-backend/pkg/idwrap"

// Order is the dense 0-based position of the lane within its board.
type Lane struct {
	ID      idwrap.IDWrap
	BoardID idwrap.IDWrap
	Title   string
	Order   int64
}
