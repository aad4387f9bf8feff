package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/semnet/internal/archive"
)

// Save records a as a new snapshot. If the latest snapshot with the same
// name has the same content hash, that snapshot's info is returned and
// nothing is written.
func (s *Store) Save(ctx context.Context, a *archive.Archive) (SnapshotInfo, error) {
	info, err := describe(a)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("save snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("save snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	latest, err := latestInfo(ctx, tx, a.Name)
	switch {
	case err == nil && latest.ContentHash == info.ContentHash:
		return latest, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return SnapshotInfo{}, fmt.Errorf("save snapshot: %w", err)
	}

	if info.Seq, err = advanceSeq(ctx, tx); err != nil {
		return SnapshotInfo{}, fmt.Errorf("save snapshot: %w", err)
	}
	info.ID = s.ids.Generate()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots
		(id, seq, name, schema_source, content_hash, entity_count, edge_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		info.ID,
		info.Seq,
		info.Name,
		a.Schema,
		info.ContentHash,
		info.Entities,
		info.Edges,
	)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("save snapshot: %w", err)
	}

	for pos, it := range a.Items {
		if err := writeItem(ctx, tx, info.ID, pos, it); err != nil {
			return SnapshotInfo{}, fmt.Errorf("save snapshot: item %d: %w", pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return SnapshotInfo{}, fmt.Errorf("save snapshot: commit: %w", err)
	}
	return info, nil
}

// advanceSeq increments and returns the seq counter.
func advanceSeq(ctx context.Context, tx *sql.Tx) (int64, error) {
	if _, err := tx.ExecContext(ctx, `UPDATE snapshot_counter SET seq = seq + 1 WHERE id = 1`); err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT seq FROM snapshot_counter WHERE id = 1`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}

func writeItem(ctx context.Context, tx *sql.Tx, snapshotID string, pos int, it archive.Item) error {
	propsJSON, err := marshalProps(it.Props)
	if err != nil {
		return err
	}

	switch it.Type {
	case archive.TypeEntity:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO snapshot_entities (snapshot_id, position, id, props)
			VALUES (?, ?, ?, ?)
		`, snapshotID, pos, it.ID, propsJSON)
	case archive.TypeEdge:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO snapshot_edges (snapshot_id, position, label, source_id, target_id, props)
			VALUES (?, ?, ?, ?, ?, ?)
		`, snapshotID, pos, it.Label, it.SourceID, it.TargetID, propsJSON)
	default:
		return fmt.Errorf("unknown item type %q", it.Type)
	}
	return err
}

// Delete removes a snapshot and its items.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete snapshot %s: %w", id, ErrNotFound)
	}
	return nil
}
