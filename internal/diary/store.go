package diary

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Entry is one appended interpretation in a visitor's diary.
type Entry struct {
	ID             int64
	SessionID      string
	Prompt         string
	Interpretation string
	CreatedAt      time.Time
}

// Store is the SQLite-backed diary log.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if needed) the diary database at the given path and
// applies any pending migrations.
func Open(dbPath string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	db, err := OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}

	if err := applyMigrations(db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append adds an interpretation to the visitor's diary.
func (s *Store) Append(ctx context.Context, sessionID, prompt,
	interpretation string) error {

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO diary_entries
			(session_id, prompt, interpretation, created_at)
		VALUES (?, ?, ?, ?)`,
		sessionID, prompt, interpretation, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to append diary entry: %w", err)
	}

	return nil
}

// ListBySession returns the visitor's diary entries, newest first.
func (s *Store) ListBySession(ctx context.Context,
	sessionID string) ([]Entry, error) {

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, prompt, interpretation, created_at
		FROM diary_entries
		WHERE session_id = ?
		ORDER BY created_at DESC, id DESC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list diary entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry     Entry
			createdAt int64
		)
		err := rows.Scan(
			&entry.ID, &entry.SessionID, &entry.Prompt,
			&entry.Interpretation, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan diary entry: %w", err)
		}
		entry.CreatedAt = time.Unix(createdAt, 0)

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate diary entries: %w", err)
	}

	return entries, nil
}
