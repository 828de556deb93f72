package db

import "database/sql"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id BLOB PRIMARY KEY,
	line_user_id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	avatar_url TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS boards (
	id BLOB PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS lanes (
	id BLOB PRIMARY KEY,
	board_id BLOB NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	sort_order INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS cards (
	id BLOB PRIMARY KEY,
	lane_id BLOB NOT NULL REFERENCES lanes(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	priority TEXT NOT NULL DEFAULT 'MEDIUM' CHECK (priority IN ('LOW', 'MEDIUM', 'HIGH')),
	sort_order INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS checklist_items (
	id BLOB PRIMARY KEY,
	card_id BLOB NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
	text TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	assigned_to BLOB REFERENCES users(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_lanes_board_order ON lanes(board_id, sort_order);
CREATE INDEX IF NOT EXISTS idx_cards_lane_order ON cards(lane_id, sort_order);
CREATE INDEX IF NOT EXISTS idx_checklist_card ON checklist_items(card_id);
CREATE INDEX IF NOT EXISTS idx_checklist_assignee ON checklist_items(assigned_to);
`

// Init creates the schema if it does not exist yet.
func Init(conn *sql.DB) error {
	_, err := conn.Exec(schema)
	return err
}
