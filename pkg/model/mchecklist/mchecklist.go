package mchecklist

import "taskboard-backend/pkg/idwrap"

type ChecklistItem struct {
	ID         idwrap.IDWrap
	CardID     idwrap.IDWrap
	Text       string
	Completed  bool
	AssignedTo *idwrap.IDWrap
}

// PendingTask is a checklist item joined with its card title, the shape the
// messaging bot reports to an assignee.
type PendingTask struct {
	ID        idwrap.IDWrap
	Text      string
	CardTitle string
}
