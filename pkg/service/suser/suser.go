package suser

import (
	"context"
	"database/sql"

	"taskboard-backend/pkg/db"
	"taskboard-backend/pkg/dbtime"
	"taskboard-backend/pkg/idwrap"
	"taskboard-backend/pkg/model/muser"
)

var ErrNoUserFound = sql.ErrNoRows

type UserService struct {
	q db.DBTX
}

func New(q db.DBTX) UserService {
	return UserService{q: q}
}

// NewTX binds the service to a caller-owned transaction.
func NewTX(tx db.DBTX) UserService {
	return UserService{q: tx}
}

func (s UserService) GetUser(ctx context.Context, id idwrap.IDWrap) (*muser.User, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, line_user_id, name, avatar_url, created_at
		FROM users
		WHERE id = ?
	`, id)
	return scanUser(row)
}

func (s UserService) GetUserByLineUserID(ctx context.Context, lineUserID string) (*muser.User, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, line_user_id, name, avatar_url, created_at
		FROM users
		WHERE line_user_id = ?
	`, lineUserID)
	return scanUser(row)
}

// UpsertByLineUserID creates the user on first login and refreshes the
// display fields on every later one. Idempotent by line_user_id.
func (s UserService) UpsertByLineUserID(ctx context.Context, lineUserID, name, avatarURL string) (*muser.User, error) {
	existing, err := s.GetUserByLineUserID(ctx, lineUserID)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	if err == sql.ErrNoRows {
		user := &muser.User{
			ID:         idwrap.NewNow(),
			LineUserID: lineUserID,
			Name:       name,
			AvatarURL:  avatarURL,
			CreatedAt:  dbtime.DBNow(),
		}
		_, err := s.q.ExecContext(ctx, `
			INSERT INTO users (id, line_user_id, name, avatar_url, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, user.ID, user.LineUserID, user.Name, user.AvatarURL, user.CreatedAt)
		if err != nil {
			return nil, err
		}
		return user, nil
	}

	_, err = s.q.ExecContext(ctx, `
		UPDATE users
		SET name = ?, avatar_url = ?
		WHERE line_user_id = ?
	`, name, avatarURL, lineUserID)
	if err != nil {
		return nil, err
	}
	existing.Name = name
	existing.AvatarURL = avatarURL
	return existing, nil
}

func (s UserService) ListUsers(ctx context.Context) ([]muser.User, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, line_user_id, name, avatar_url, created_at
		FROM users
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []muser.User
	for rows.Next() {
		var user muser.User
		if err := rows.Scan(&user.ID, &user.LineUserID, &user.Name, &user.AvatarURL, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row *sql.Row) (*muser.User, error) {
	var user muser.User
	if err := row.Scan(&user.ID, &user.LineUserID, &user.Name, &user.AvatarURL, &user.CreatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}
