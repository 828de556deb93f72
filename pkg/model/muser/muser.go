package muser

import (
	"time"

	"taskboard-backend/pkg/idwrap"
)

// LineUserID is the id LINE issues for the end-user; it is the key we
// correlate logins and inbound bot messages on.
type User struct {
	ID         idwrap.IDWrap
	LineUserID string
	Name       string
	AvatarURL  string
	CreatedAt  time.Time
}
