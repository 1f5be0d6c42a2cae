package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNoSnapshots is returned by LoadLatest when the database is empty.
var ErrNoSnapshots = errors.New("store: no snapshots")

// Snapshot is one persisted brain image. Data is nil on listing calls,
// which only carry metadata.
type Snapshot struct {
	ID          string
	CreatedAt   time.Time
	Quads       int
	Tokens      int
	PeopleNames int
	Data        []byte
}

// SaveSnapshot stores a serialized brain image and returns its record.
func (s *Store) SaveSnapshot(ctx context.Context, quads, tokens, peopleNames int, data []byte) (*Snapshot, error) {
	snap := &Snapshot{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Quads:       quads,
		Tokens:      tokens,
		PeopleNames: peopleNames,
		Data:        data,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, created_at, quads, tokens, people_names, data)
		VALUES (?, ?, ?, ?, ?, ?)
	`, snap.ID, snap.CreatedAt, snap.Quads, snap.Tokens, snap.PeopleNames, snap.Data)
	if err != nil {
		return nil, fmt.Errorf("store: save snapshot: %w", err)
	}

	return snap, nil
}

// LoadSnapshot retrieves one snapshot, including its image data.
func (s *Store) LoadSnapshot(ctx context.Context, id string) (*Snapshot, error) {
	snap := &Snapshot{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, quads, tokens, people_names, data
		FROM snapshots
		WHERE id = ?
	`, id).Scan(&snap.ID, &snap.CreatedAt, &snap.Quads, &snap.Tokens, &snap.PeopleNames, &snap.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: snapshot not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load snapshot: %w", err)
	}
	return snap, nil
}

// LoadLatest retrieves the most recently saved snapshot.
func (s *Store) LoadLatest(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, quads, tokens, people_names, data
		FROM snapshots
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`).Scan(&snap.ID, &snap.CreatedAt, &snap.Quads, &snap.Tokens, &snap.PeopleNames, &snap.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshots
	}
	if err != nil {
		return nil, fmt.Errorf("store: load latest snapshot: %w", err)
	}
	return snap, nil
}

// ListSnapshots returns metadata for every snapshot, newest first. The
// image blobs are left out.
func (s *Store) ListSnapshots(ctx context.Context) ([]*Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, quads, tokens, people_names
		FROM snapshots
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*Snapshot
	for rows.Next() {
		snap := &Snapshot{}
		if err := rows.Scan(&snap.ID, &snap.CreatedAt, &snap.Quads, &snap.Tokens, &snap.PeopleNames); err != nil {
			return nil, fmt.Errorf("store: scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list snapshots: %w", err)
	}
	return snaps, nil
}

// PruneSnapshots deletes all but the keep most recent snapshots and
// reports how many rows were removed.
func (s *Store) PruneSnapshots(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("store: prune: keep must be non-negative, got %d", keep)
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM snapshots
		WHERE id NOT IN (
			SELECT id FROM snapshots
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("store: prune snapshots: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store: prune snapshots: %w", err)
	}
	return int(deleted), nil
}
