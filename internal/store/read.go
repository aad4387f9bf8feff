package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/semnet/internal/archive"
)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const snapshotColumns = `id, seq, name, content_hash, entity_count, edge_count, schema_source`

// Get loads the snapshot with the given id.
func (s *Store) Get(ctx context.Context, id string) (*archive.Archive, SnapshotInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		WHERE id = ?
	`, id)
	return s.load(ctx, row)
}

// Latest loads the highest-seq snapshot named name, or of any name when
// name is empty.
func (s *Store) Latest(ctx context.Context, name string) (*archive.Archive, SnapshotInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		WHERE ? = '' OR name = ?
		ORDER BY seq DESC
		LIMIT 1
	`, name, name)
	return s.load(ctx, row)
}

// List returns all snapshots ordered by seq.
//
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) List(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	infos := []SnapshotInfo{}
	for rows.Next() {
		info, _, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return infos, nil
}

func latestInfo(ctx context.Context, q queryer, name string) (SnapshotInfo, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		WHERE name = ?
		ORDER BY seq DESC
		LIMIT 1
	`, name)
	info, _, err := scanSnapshot(row)
	return info, err
}

func (s *Store) load(ctx context.Context, row *sql.Row) (*archive.Archive, SnapshotInfo, error) {
	info, schema, err := scanSnapshot(row)
	if err != nil {
		return nil, SnapshotInfo{}, err
	}

	items, err := readItems(ctx, s.db, info.ID)
	if err != nil {
		return nil, SnapshotInfo{}, err
	}
	return &archive.Archive{Name: info.Name, Schema: schema, Items: items}, info, nil
}

// readItems returns a snapshot's items in their saved order.
func readItems(ctx context.Context, q queryer, snapshotID string) ([]archive.Item, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT position, 'entity', id, '', '', '', props
		FROM snapshot_entities
		WHERE snapshot_id = ?
		UNION ALL
		SELECT position, 'edge', '', label, source_id, target_id, props
		FROM snapshot_edges
		WHERE snapshot_id = ?
		ORDER BY 1 ASC
	`, snapshotID, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query snapshot items: %w", err)
	}
	defer rows.Close()

	items := []archive.Item{}
	for rows.Next() {
		var (
			pos       int
			typ       string
			it        archive.Item
			propsJSON string
		)
		if err := rows.Scan(&pos, &typ, &it.ID, &it.Label, &it.SourceID, &it.TargetID, &propsJSON); err != nil {
			return nil, fmt.Errorf("scan snapshot item: %w", err)
		}
		it.Type = archive.ItemType(typ)
		if it.Props, err = unmarshalProps(propsJSON); err != nil {
			return nil, fmt.Errorf("snapshot item %d: %w", pos, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot items: %w", err)
	}
	return items, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (SnapshotInfo, string, error) {
	var (
		info   SnapshotInfo
		schema string
	)
	err := row.Scan(&info.ID, &info.Seq, &info.Name, &info.ContentHash, &info.Entities, &info.Edges, &schema)
	if errors.Is(err, sql.ErrNoRows) {
		return SnapshotInfo{}, "", ErrNotFound
	}
	if err != nil {
		return SnapshotInfo{}, "", fmt.Errorf("scan snapshot: %w", err)
	}
	return info, schema, nil
}
