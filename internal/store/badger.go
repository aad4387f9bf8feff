package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/roach88/semnet/internal/archive"
)

// Key layout:
//
//	snap/counter       last assigned seq, big-endian uint64
//	snap/seq/<seq>     snapshot id, seq zero-padded so keys sort by seq
//	snap/meta/<id>     msgpack badgerRecord
//	snap/data/<id>     msgpack archive
const (
	counterKey = "snap/counter"
	seqPrefix  = "snap/seq/"
	metaPrefix = "snap/meta/"
	dataPrefix = "snap/data/"
)

// BadgerConfig holds configuration for a BadgerDB-backed store.
type BadgerConfig struct {
	// Path is the directory for BadgerDB files.
	// Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal logs.
	// If nil, BadgerDB's internal logging is disabled.
	Logger *slog.Logger

	// IDs generates snapshot ids. Defaults to UUIDv7Generator.
	IDs IDGenerator
}

// DefaultBadgerConfig returns a durable configuration rooted at path.
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{Path: path, SyncWrites: true}
}

// InMemoryBadgerConfig returns a configuration for tests.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// badgerRecord is the stored form of a snapshot's metadata.
type badgerRecord struct {
	Info   SnapshotInfo `msgpack:"info"`
	Schema string       `msgpack:"schema,omitempty"`
}

// BadgerStore keeps snapshots in BadgerDB, one msgpack archive per
// snapshot.
//
// Thread Safety: safe for concurrent use.
type BadgerStore struct {
	db  *badger.DB
	ids IDGenerator
}

// OpenBadger opens a BadgerDB store, creating the directory if needed.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	ids := cfg.IDs
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	return &BadgerStore{db: db, ids: ids}, nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Save records a as a new snapshot unless the latest snapshot with the
// same name has the same content hash.
func (s *BadgerStore) Save(ctx context.Context, a *archive.Archive) (SnapshotInfo, error) {
	if err := ctx.Err(); err != nil {
		return SnapshotInfo{}, err
	}
	info, err := describe(a)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("save snapshot: %w", err)
	}
	data, err := archive.Marshal(a, archive.EncodingMsgpack)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("save snapshot: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		latest, err := latestRecord(txn, a.Name)
		switch {
		case err == nil && latest.Info.ContentHash == info.ContentHash:
			info = latest.Info
			return nil
		case err != nil && !errors.Is(err, ErrNotFound):
			return err
		}

		seq, err := nextSeq(txn)
		if err != nil {
			return err
		}
		info.Seq = int64(seq)
		info.ID = s.ids.Generate()

		meta, err := msgpack.Marshal(badgerRecord{Info: info, Schema: a.Schema})
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		if err := txn.Set(seqKey(seq), []byte(info.ID)); err != nil {
			return err
		}
		if err := txn.Set([]byte(metaPrefix+info.ID), meta); err != nil {
			return err
		}
		return txn.Set([]byte(dataPrefix+info.ID), data)
	})
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("save snapshot: %w", err)
	}
	return info, nil
}

// Get loads the snapshot with the given id.
func (s *BadgerStore) Get(ctx context.Context, id string) (*archive.Archive, SnapshotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, SnapshotInfo{}, err
	}
	var (
		a   *archive.Archive
		rec badgerRecord
	)
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		if rec, err = readRecord(txn, id); err != nil {
			return err
		}
		a, err = readArchive(txn, id)
		return err
	})
	if err != nil {
		return nil, SnapshotInfo{}, err
	}
	return a, rec.Info, nil
}

// Latest loads the highest-seq snapshot named name, or of any name when
// name is empty.
func (s *BadgerStore) Latest(ctx context.Context, name string) (*archive.Archive, SnapshotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, SnapshotInfo{}, err
	}
	var (
		a   *archive.Archive
		rec badgerRecord
	)
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		if rec, err = latestRecord(txn, name); err != nil {
			return err
		}
		a, err = readArchive(txn, rec.Info.ID)
		return err
	})
	if err != nil {
		return nil, SnapshotInfo{}, err
	}
	return a, rec.Info, nil
}

// List returns all snapshots ordered by seq.
func (s *BadgerStore) List(ctx context.Context) ([]SnapshotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	infos := []SnapshotInfo{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(seqPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			rec, err := readRecord(txn, string(id))
			if err != nil {
				return err
			}
			infos = append(infos, rec.Info)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return infos, nil
}

// Delete removes a snapshot.
func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		rec, err := readRecord(txn, id)
		if err != nil {
			return err
		}
		for _, key := range [][]byte{
			seqKey(uint64(rec.Info.Seq)),
			[]byte(metaPrefix + id),
			[]byte(dataPrefix + id),
		} {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	return nil
}

func seqKey(seq uint64) []byte {
	return fmt.Appendf(nil, "%s%020d", seqPrefix, seq)
}

// nextSeq increments and returns the store's seq counter.
func nextSeq(txn *badger.Txn) (uint64, error) {
	var seq uint64
	item, err := txn.Get([]byte(counterKey))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return 0, err
	default:
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return 0, err
		}
		seq = binary.BigEndian.Uint64(raw)
	}
	seq++
	if err := txn.Set([]byte(counterKey), binary.BigEndian.AppendUint64(nil, seq)); err != nil {
		return 0, err
	}
	return seq, nil
}

// latestRecord walks the seq index backwards for the newest snapshot named
// name (any name when empty).
func latestRecord(txn *badger.Txn, name string) (badgerRecord, error) {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.Prefix = []byte(seqPrefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(append([]byte(seqPrefix), 0xFF)); it.Valid(); it.Next() {
		id, err := it.Item().ValueCopy(nil)
		if err != nil {
			return badgerRecord{}, err
		}
		rec, err := readRecord(txn, string(id))
		if err != nil {
			return badgerRecord{}, err
		}
		if name == "" || rec.Info.Name == name {
			return rec, nil
		}
	}
	return badgerRecord{}, ErrNotFound
}

func readRecord(txn *badger.Txn, id string) (badgerRecord, error) {
	item, err := txn.Get([]byte(metaPrefix + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return badgerRecord{}, ErrNotFound
	}
	if err != nil {
		return badgerRecord{}, err
	}
	var rec badgerRecord
	err = item.Value(func(val []byte) error {
		return msgpack.Unmarshal(val, &rec)
	})
	if err != nil {
		return badgerRecord{}, fmt.Errorf("decode metadata %s: %w", id, err)
	}
	return rec, nil
}

func readArchive(txn *badger.Txn, id string) (*archive.Archive, error) {
	item, err := txn.Get([]byte(dataPrefix + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return archive.Unmarshal(raw, archive.EncodingMsgpack)
}
