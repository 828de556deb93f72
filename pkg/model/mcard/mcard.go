package mcard

import "taskboard-backend/pkg/idwrap"

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Order is the dense 0-based position of the card within its lane.
type Card struct {
	ID          idwrap.IDWrap
	LaneID      idwrap.IDWrap
	Title       string
	Description string
	Priority    Priority
	Order       int64
}
