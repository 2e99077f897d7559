// Package jsonfile implements the repository interfaces on top of JSON
// snapshot files, one file per collection, rewritten in full on every
// mutation. This is the default storage driver and preserves the data
// layout the frontend was built against.
//
// Each store keeps the whole collection in memory and guards it with a
// sync.RWMutex, so concurrent mutations within the process are serialized
// and cannot lose updates. If a snapshot write fails the store logs the
// error and continues serving from memory for the rest of the process;
// it does not crash and does not fail the triggering request chain with
// an I/O error the user cannot act on.
package jsonfile

import (
	"encoding/json"
	"log/slog"
	"os"
)

// writeSnapshot serializes v and rewrites the file at path in full.
// Indented output keeps the data files hand-inspectable.
func writeSnapshot(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// readSnapshot loads the file at path into v. Returns os.ErrNotExist
// (wrapped) when no snapshot has been written yet.
func readSnapshot(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// logPersistFailure records a failed snapshot write. The store stays
// usable in memory; the operator sees exactly one error per failed write.
func logPersistFailure(logger *slog.Logger, path string, err error) {
	logger.Error("snapshot write failed, continuing in memory",
		slog.String("path", path),
		slog.String("error", err.Error()),
	)
}
