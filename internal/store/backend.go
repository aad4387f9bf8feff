package store

import (
	"fmt"
	"log/slog"
)

// Backend names.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// OpenBackend opens the named backend at path. For sqlite path is a file;
// for badger it is a directory. logger may be nil.
func OpenBackend(backend, path string, logger *slog.Logger) (Snapshots, error) {
	switch backend {
	case BackendSQLite, "":
		return Open(path)
	case BackendBadger:
		cfg := DefaultBadgerConfig(path)
		cfg.Logger = logger
		return OpenBadger(cfg)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
