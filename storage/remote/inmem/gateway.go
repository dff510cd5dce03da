// Package inmem provides a volatile Gateway backend for tests and offline
// runs.
package inmem

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"dnevnik/storage/remote"
)

type Gateway struct {
	mu   sync.RWMutex
	data map[string]map[string]json.RawMessage // collection -> id -> record

	// Fail, when set, is consulted before every operation; a non-nil
	// return is surfaced as the operation's error. Used by tests to
	// simulate remote I/O failures.
	Fail func(op, path string) error
}

var _ remote.Gateway = (*Gateway)(nil)

func New() *Gateway {
	return &Gateway{data: make(map[string]map[string]json.RawMessage)}
}

func (g *Gateway) GetData(ctx context.Context, path string) (json.RawMessage, error) {
	if err := g.fail("get", path); err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	collection, id := remote.SplitPath(path)
	records, ok := g.data[collection]
	if !ok || len(records) == 0 {
		return nil, nil
	}
	if id != "" {
		raw, ok := records[id]
		if !ok {
			return nil, nil
		}
		return append(json.RawMessage(nil), raw...), nil
	}
	return json.Marshal(records)
}

func (g *Gateway) SetData(ctx context.Context, path string, value interface{}) error {
	if err := g.fail("set", path); err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "encoding record")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	collection, id := remote.SplitPath(path)
	if id == "" {
		var records map[string]json.RawMessage
		if err := json.Unmarshal(raw, &records); err != nil {
			return errors.Wrap(err, "decoding collection value")
		}
		g.data[collection] = records
		return nil
	}
	if g.data[collection] == nil {
		g.data[collection] = make(map[string]json.RawMessage)
	}
	g.data[collection][id] = raw
	return nil
}

func (g *Gateway) UpdateData(ctx context.Context, path string, fields map[string]interface{}) error {
	if err := g.fail("update", path); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	collection, id := remote.SplitPath(path)
	if g.data[collection] == nil {
		g.data[collection] = make(map[string]json.RawMessage)
	}
	if id == "" {
		// merge at collection level: each field is a full record write
		for recID, value := range fields {
			raw, err := json.Marshal(value)
			if err != nil {
				return errors.Wrap(err, "encoding record")
			}
			g.data[collection][recID] = raw
		}
		return nil
	}

	current := make(map[string]interface{})
	if raw, ok := g.data[collection][id]; ok {
		if err := json.Unmarshal(raw, &current); err != nil {
			return errors.Wrap(err, "decoding record")
		}
	}
	for k, v := range fields {
		current[k] = v
	}
	raw, err := json.Marshal(current)
	if err != nil {
		return errors.Wrap(err, "encoding record")
	}
	g.data[collection][id] = raw
	return nil
}

func (g *Gateway) fail(op, path string) error {
	if g.Fail != nil {
		return g.Fail(op, path)
	}
	return nil
}
