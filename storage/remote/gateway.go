// Package remote defines the client's interface to the shared remote
// key-value store. The store is the source of truth for all records;
// in-memory caches only ever mirror confirmed writes.
package remote

import (
	"context"
	"encoding/json"
	"strings"
)

// Gateway is the thin read-write surface over the shared database.
//
// A path is either a collection name ("students", "groups", "subjects",
// "attendance", "grades") holding a mapping from record id to record, or
// "<collection>/<id>" addressing a single record.
type Gateway interface {
	// GetData returns the JSON value at path, or nil when nothing is
	// stored there.
	GetData(ctx context.Context, path string) (json.RawMessage, error)
	// SetData overwrites the value at path entirely.
	SetData(ctx context.Context, path string, value interface{}) error
	// UpdateData shallow-merges the named fields into the value at path.
	UpdateData(ctx context.Context, path string, fields map[string]interface{}) error
}

// SplitPath breaks a path into its collection and optional record id.
func SplitPath(path string) (collection, id string) {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, ""
}
