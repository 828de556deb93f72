package mboard

import (
	"time"

	"taskboard-backend/pkg/idwrap"
)

type Board struct {
	ID        idwrap.IDWrap
	Name      string
	CreatedAt time.Time
}
