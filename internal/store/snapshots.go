package store

import (
	"context"
	"errors"

	"github.com/roach88/semnet/internal/archive"
)

// ErrNotFound is returned when no snapshot matches the request.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotInfo describes a saved snapshot.
type SnapshotInfo struct {
	ID          string `json:"id" msgpack:"id"`
	Seq         int64  `json:"seq" msgpack:"seq"`
	Name        string `json:"name" msgpack:"name"`
	ContentHash string `json:"content_hash" msgpack:"content_hash"`
	Entities    int    `json:"entities" msgpack:"entities"`
	Edges       int    `json:"edges" msgpack:"edges"`
}

// Snapshots is implemented by every snapshot backend.
type Snapshots interface {
	// Save records a and returns its info. Saving content identical to the
	// latest snapshot of the same name returns that snapshot unchanged.
	Save(ctx context.Context, a *archive.Archive) (SnapshotInfo, error)

	// Get loads the snapshot with the given id.
	Get(ctx context.Context, id string) (*archive.Archive, SnapshotInfo, error)

	// Latest loads the highest-seq snapshot named name, or of any name
	// when name is empty.
	Latest(ctx context.Context, name string) (*archive.Archive, SnapshotInfo, error)

	// List returns all snapshots in seq order.
	List(ctx context.Context) ([]SnapshotInfo, error)

	// Delete removes a snapshot.
	Delete(ctx context.Context, id string) error

	// Close releases the backend.
	Close() error
}

var (
	_ Snapshots = (*Store)(nil)
	_ Snapshots = (*BadgerStore)(nil)
)

func describe(a *archive.Archive) (SnapshotInfo, error) {
	hash, err := a.ContentHash()
	if err != nil {
		return SnapshotInfo{}, err
	}
	entities, edges := a.Counts()
	return SnapshotInfo{
		Name:        a.Name,
		ContentHash: hash,
		Entities:    entities,
		Edges:       edges,
	}, nil
}
