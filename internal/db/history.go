package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"matchday/internal/conversation"

	_ "modernc.org/sqlite"
)

// HistoryStore persists per-session conversation logs in its own SQLite
// file, kept separate from the match data so the dataset stays read-only.
type HistoryStore struct {
	db *sql.DB
}

// OpenHistory opens (or creates) the conversation log store at path.
func OpenHistory(path string) (*HistoryStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("db: create history directory: %w", err)
		}
	}
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("db: open history store: %w", err)
	}
	store := &HistoryStore{db: handle}
	if err := store.initialize(); err != nil {
		handle.Close()
		return nil, err
	}
	return store, nil
}

func (h *HistoryStore) initialize() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS conversation_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		role TEXT NOT NULL,
		tag TEXT,
		content TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(session_id, position)
	);
	CREATE INDEX IF NOT EXISTS idx_conversation_session ON conversation_log(session_id);
	`
	if _, err := h.db.Exec(schema); err != nil {
		return fmt.Errorf("db: initialize history store: %w", err)
	}
	return nil
}

// SaveMessages appends new messages of a session. Positions already stored
// are ignored, so saving the whole log after each turn is cheap and safe.
func (h *HistoryStore) SaveMessages(ctx context.Context, sessionID string, msgs []conversation.Message) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db: begin history tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO conversation_log (session_id, position, role, tag, content)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("db: prepare history insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range msgs {
		if _, err := stmt.ExecContext(ctx, sessionID, m.Position, string(m.Role), m.Tag, m.Content); err != nil {
			return fmt.Errorf("db: save message %d: %w", m.Position, err)
		}
	}
	return tx.Commit()
}

// SessionMessages loads a session's log in position order.
func (h *HistoryStore) SessionMessages(ctx context.Context, sessionID string) ([]conversation.Message, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT position, role, tag, content FROM conversation_log
		 WHERE session_id = ? ORDER BY position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("db: load session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var msgs []conversation.Message
	for rows.Next() {
		var m conversation.Message
		var role string
		if err := rows.Scan(&m.Position, &role, &m.Tag, &m.Content); err != nil {
			return nil, fmt.Errorf("db: scan message: %w", err)
		}
		m.Role = conversation.Role(role)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Close releases the history store.
func (h *HistoryStore) Close() error {
	return h.db.Close()
}
