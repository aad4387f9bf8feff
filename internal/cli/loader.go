package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/semnet/internal/archive"
	"github.com/roach88/semnet/internal/compiler"
	"github.com/roach88/semnet/internal/network"
	"github.com/roach88/semnet/internal/schema"
	"github.com/roach88/semnet/internal/store"
)

// NetworkSource selects where a command reads its network from. Script
// takes precedence over the store; within the store, Snapshot (an id)
// takes precedence over Name. With neither set, the latest snapshot of any
// name is used.
type NetworkSource struct {
	Script   string // network script path
	Schema   string // CUE schema path, used with Script
	Snapshot string // snapshot id
	Name     string // snapshot name
}

// LoadError is a failure to obtain a network, tagged with a CLI error code.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// readScript reads a script file.
func readScript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path)}
	}
	if err != nil {
		return "", &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("read %s", path), Err: err}
	}
	return string(data), nil
}

// scriptName derives a network name from a script path: "nets/shapes.sn"
// becomes "shapes".
func scriptName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// buildFromScript compiles a network script, gated by the schema file
// when one is given.
func buildFromScript(name, scriptPath, schemaPath string, opts ...network.Option) (*network.Network, *schema.Validator, error) {
	script, err := readScript(scriptPath)
	if err != nil {
		return nil, nil, err
	}

	var v *schema.Validator
	if schemaPath != "" {
		if v, err = schema.Load(schemaPath); err != nil {
			return nil, nil, &LoadError{Code: ErrCodeSchema, Message: "load schema", Err: err}
		}
		opts = append(opts, network.WithValidator(v))
	}

	if name == "" {
		name = scriptName(scriptPath)
	}
	n, err := compiler.BuildNetwork(name, script, opts...)
	if err != nil {
		code := ErrCodeScript
		if errors.Is(err, network.ErrSchemaViolation) {
			code = ErrCodeSchema
		}
		return nil, nil, &LoadError{Code: code, Message: "build network", Err: err}
	}
	return n, v, nil
}

// openStore opens the configured snapshot store.
func (o *RootOptions) openStore() (store.Snapshots, error) {
	st, err := store.OpenBackend(o.Backend, o.Database, o.logger())
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStore, Message: "open store", Err: err}
	}
	return st, nil
}

// loadArchive reads the archive a source selects from the store.
func (o *RootOptions) loadArchive(ctx context.Context, src NetworkSource) (*archive.Archive, store.SnapshotInfo, error) {
	st, err := o.openStore()
	if err != nil {
		return nil, store.SnapshotInfo{}, err
	}
	defer st.Close()

	var (
		a    *archive.Archive
		info store.SnapshotInfo
	)
	if src.Snapshot != "" {
		a, info, err = st.Get(ctx, src.Snapshot)
	} else {
		a, info, err = st.Latest(ctx, src.Name)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, store.SnapshotInfo{}, &LoadError{Code: ErrCodeNotFound, Message: "no matching snapshot", Err: err}
	}
	if err != nil {
		return nil, store.SnapshotInfo{}, &LoadError{Code: ErrCodeStore, Message: "read snapshot", Err: err}
	}
	return a, info, nil
}

// loadNetwork builds the network a source selects. Networks loaded from a
// snapshot are re-gated by the schema saved with them.
func (o *RootOptions) loadNetwork(ctx context.Context, src NetworkSource) (*network.Network, error) {
	netOpts := []network.Option{network.WithLogger(o.logger())}

	if src.Script != "" {
		n, _, err := buildFromScript(src.Name, src.Script, src.Schema, netOpts...)
		return n, err
	}

	a, info, err := o.loadArchive(ctx, src)
	if err != nil {
		return nil, err
	}
	o.logger().Debug("snapshot loaded", "id", info.ID, "seq", info.Seq, "name", info.Name)

	if a.Schema != "" {
		v, err := schema.Compile(a.Schema)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeSchema, Message: "compile stored schema", Err: err}
		}
		netOpts = append(netOpts, network.WithValidator(v))
	}
	n, err := archive.Load(a, netOpts...)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStore, Message: "load snapshot", Err: err}
	}
	return n, nil
}

// failLoad reports a LoadError (or any error) through the formatter.
func failLoad(f *OutputFormatter, err error) error {
	var le *LoadError
	if errors.As(err, &le) {
		detail := le.Err
		if detail == nil {
			detail = errors.New(le.Message)
		}
		return f.Fail(ExitCommandError, le.Code, le.Message, detail)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, "command failed", err)
}
