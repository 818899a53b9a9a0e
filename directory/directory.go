// Package directory maintains the catalog of resumable conversations in a
// SQLite database. Each row maps a numeric session id to the thread id used
// by the checkpoint store, plus the metadata shown in the startup menu.
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width (no trailing-zero trimming) so that the string
// ordering List relies on matches chronological ordering; RFC 3339 Nano would
// render whole seconds as "...:01Z", which sorts after "...:01.5Z".
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	thread_id TEXT UNIQUE,
	first_message TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TEXT NOT NULL
);

CREATE TRIGGER IF NOT EXISTS sessions_assign_thread_id
AFTER INSERT ON sessions
FOR EACH ROW
WHEN NEW.thread_id IS NULL
BEGIN
	UPDATE sessions SET thread_id = 't' || NEW.id WHERE id = NEW.id;
END;
`

// Session is one directory row.
type Session struct {
	ID           int64
	ThreadID     string
	FirstMessage string
	UpdatedAt    time.Time
}

// Entry is a row formatted for menu display.
type Entry struct {
	ID           int64
	ThreadID     string
	FirstMessage string // Truncated to 50 characters.
	UpdatedAt    string // dd-mm-yyyy.
}

// Directory is the session catalog.
type Directory struct {
	db *sql.DB
}

// Open creates or opens the directory database at path, creating parent
// directories and schema as needed.
func Open(path string) (*Directory, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	// SQLite allows a single writer; the shell is single-threaded but the
	// busy timeout keeps a stray second process from erroring immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000; PRAGMA journal_mode = WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure session database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session schema: %w", err)
	}

	return &Directory{db: db}, nil
}

// Close releases the database handle.
func (d *Directory) Close() error {
	return d.db.Close()
}

// Create inserts a new session row for the given first user message and
// returns it with the server-assigned thread id.
func (d *Directory) Create(ctx context.Context, firstMessage string) (Session, error) {
	now := time.Now().UTC()

	res, err := d.db.ExecContext(ctx,
		"INSERT INTO sessions (first_message, updated_at) VALUES (?, ?)",
		firstMessage, now.Format(timeLayout),
	)
	if err != nil {
		return Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session id: %w", err)
	}

	// The insert trigger derives thread_id from the assigned row id.
	var threadID string
	err = d.db.QueryRowContext(ctx,
		"SELECT thread_id FROM sessions WHERE id = ?", id,
	).Scan(&threadID)
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session thread id: %w", err)
	}

	return Session{ID: id, ThreadID: threadID, FirstMessage: firstMessage, UpdatedAt: now}, nil
}

// Touch bumps a session's updated_at so it sorts first in the menu.
func (d *Directory) Touch(ctx context.Context, id int64) error {
	_, err := d.db.ExecContext(ctx,
		"UPDATE sessions SET updated_at = ? WHERE id = ?",
		time.Now().UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("failed to touch session %d: %w", id, err)
	}
	return nil
}

// List returns all sessions formatted for display, most recent first.
func (d *Directory) List(ctx context.Context) ([]Entry, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, thread_id, first_message, updated_at
		FROM sessions
		ORDER BY updated_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			first   sql.NullString
			updated string
		)
		if err := rows.Scan(&e.ID, &e.ThreadID, &first, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		e.FirstMessage = truncate(first.String, 50)
		e.UpdatedAt = formatDate(updated)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return entries, nil
}

// Get retrieves a session by id. ok is false when the id is unknown.
func (d *Directory) Get(ctx context.Context, id int64) (Session, bool, error) {
	var (
		s       Session
		first   sql.NullString
		updated string
	)
	err := d.db.QueryRowContext(ctx,
		"SELECT id, thread_id, first_message, updated_at FROM sessions WHERE id = ?", id,
	).Scan(&s.ID, &s.ThreadID, &first, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("failed to load session %d: %w", id, err)
	}

	s.FirstMessage = first.String
	if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		s.UpdatedAt = t
	}
	return s, true, nil
}

// Delete removes a session row. It reports whether a row was deleted;
// deleting an unknown id is not an error.
func (d *Directory) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := d.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete session %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete session %d: %w", id, err)
	}
	return n > 0, nil
}

// truncate shortens s to at most max characters, marking the cut with an
// ellipsis. Counts runes so multibyte text is never split.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// formatDate renders a stored RFC 3339 timestamp as dd-mm-yyyy for the menu.
func formatDate(stored string) string {
	t, err := time.Parse(time.RFC3339Nano, stored)
	if err != nil {
		return stored
	}
	return t.Format("02-01-2006")
}
