package room

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteSnapshotRepository persists room snapshots as binary blobs.
//
// Each room is one row keyed by name; the blob is the room's binary
// encoding (see MarshalBinary). This is the hub's only durable state
// beyond time-series export: membership survives a restart, recorded
// values do not.
type SQLiteSnapshotRepository struct {
	db     *sql.DB
	logger Logger
}

// NewSQLiteSnapshotRepository creates a snapshot repository over an
// open SQLite connection.
func NewSQLiteSnapshotRepository(db *sql.DB) *SQLiteSnapshotRepository {
	return &SQLiteSnapshotRepository{db: db, logger: noopLogger{}}
}

// SetLogger sets the logger for the repository.
func (s *SQLiteSnapshotRepository) SetLogger(logger Logger) {
	s.logger = logger
}

// Init creates the snapshot table if it does not exist.
func (s *SQLiteSnapshotRepository) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS room_snapshots (
			name       TEXT PRIMARY KEY,
			snapshot   BLOB NOT NULL,
			updated_at TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("creating room_snapshots table: %w", err)
	}
	return nil
}

// Save upserts the room's snapshot.
func (s *SQLiteSnapshotRepository) Save(ctx context.Context, r *Room) error {
	if r == nil || r.Name == "" {
		return fmt.Errorf("room name is required")
	}

	snapshot, err := r.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encoding room %q: %w", r.Name, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO room_snapshots (name, snapshot, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET snapshot = excluded.snapshot, updated_at = excluded.updated_at`,
		r.Name,
		snapshot,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving room %q: %w", r.Name, err)
	}
	return nil
}

// Delete removes the named room's snapshot. Deleting an unknown name
// is a no-op.
func (s *SQLiteSnapshotRepository) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM room_snapshots WHERE name = ?", name); err != nil {
		return fmt.Errorf("deleting room %q: %w", name, err)
	}
	return nil
}

// LoadAll decodes every persisted room. A row whose snapshot header is
// corrupt is logged and skipped; the rest still load.
func (s *SQLiteSnapshotRepository) LoadAll(ctx context.Context) ([]*Room, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, snapshot FROM room_snapshots")
	if err != nil {
		return nil, fmt.Errorf("querying room snapshots: %w", err)
	}
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		var name string
		var snapshot []byte
		if err := rows.Scan(&name, &snapshot); err != nil {
			return nil, fmt.Errorf("scanning room snapshot: %w", err)
		}

		r, decodeErr := Decode(snapshot)
		if decodeErr != nil {
			s.logger.Warn("skipping corrupt room snapshot", "room", name, "error", decodeErr)
			continue
		}
		rooms = append(rooms, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating room snapshots: %w", err)
	}
	return rooms, nil
}
