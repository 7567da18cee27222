// Package config implements the server's persisted configuration from
// spec §6: the chosen engine kind is written to server.cfg on first
// launch inside the data directory, and every later launch against that
// directory must request the same kind.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"kvd/internal/engine"
)

const fileName = "server.cfg"

// onDisk is server.cfg's JSON shape.
type onDisk struct {
	Engine engine.Kind `json:"engine"`
}

// ErrEngineMismatch is returned by EnsureEngineKind when dir already has
// a server.cfg naming a different engine kind than requested.
type ErrEngineMismatch struct {
	Requested engine.Kind
	Persisted engine.Kind
}

func (e *ErrEngineMismatch) Error() string {
	return fmt.Sprintf("data directory was initialized with engine %q, cannot reopen it with engine %q", e.Persisted, e.Requested)
}

// EnsureEngineKind persists want to dir/server.cfg if no config file
// exists yet, or verifies the existing one matches. It returns
// *ErrEngineMismatch (use errors.As) when the directory was previously
// initialized with a different engine kind (spec §6: "the server
// refuses to start rather than silently reinterpreting a data
// directory").
func EnsureEngineKind(dir string, want engine.Kind) error {
	persisted, ok, err := readPersistedKind(dir)
	if err != nil {
		return err
	}
	if !ok {
		return writeEngineKind(filepath.Join(dir, fileName), want)
	}
	if persisted != want {
		return &ErrEngineMismatch{Requested: want, Persisted: persisted}
	}
	return nil
}

// DefaultEngineKind resolves the engine kind to use when the caller
// didn't request one explicitly: whatever is already persisted in
// dir/server.cfg, or "sled" if the directory has no config file yet
// (spec §6: "--engine kvs|sled (default sled if no prior choice
// persisted)").
func DefaultEngineKind(dir string) (engine.Kind, error) {
	persisted, ok, err := readPersistedKind(dir)
	if err != nil {
		return "", err
	}
	if !ok {
		return engine.KindSled, nil
	}
	return persisted, nil
}

// readPersistedKind reads dir/server.cfg. ok is false when the file
// does not exist yet.
func readPersistedKind(dir string) (kind engine.Kind, ok bool, err error) {
	data, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, engine.IoError("read server.cfg", err)
	}

	var cfg onDisk
	if err := json.Unmarshal(data, &cfg); err != nil {
		return "", false, engine.SerdeError("parse server.cfg", err)
	}
	return cfg.Engine, true, nil
}

func writeEngineKind(path string, kind engine.Kind) error {
	data, err := json.Marshal(onDisk{Engine: kind})
	if err != nil {
		return engine.SerdeError("encode server.cfg", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return engine.IoError("create data directory", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return engine.IoError("write server.cfg", err)
	}
	return nil
}
