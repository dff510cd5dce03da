// Package redisdb is the redis-backed Gateway. Each collection lives in a
// hash keyed "<basePath>:<collection>"; every hash field holds one record
// as a JSON document.
package redisdb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"dnevnik/core"
	"dnevnik/storage/remote"
)

type Gateway struct {
	client   *redis.Client
	basePath string
}

var _ remote.Gateway = (*Gateway)(nil)

// Open connects to redis with short timeouts and verifies connectivity.
func Open(conf *core.Config) (*Gateway, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         conf.Remote.Redis.Addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	return &Gateway{client: client, basePath: conf.Remote.BasePath}, nil
}

func (g *Gateway) Close() error {
	return g.client.Close()
}

func (g *Gateway) key(collection string) string {
	return g.basePath + ":" + collection
}

func (g *Gateway) GetData(ctx context.Context, path string) (json.RawMessage, error) {
	collection, id := remote.SplitPath(path)
	if id != "" {
		raw, err := g.client.HGet(ctx, g.key(collection), id).Result()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", path)
		}
		return json.RawMessage(raw), nil
	}

	fields, err := g.client.HGetAll(ctx, g.key(collection)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	records := make(map[string]json.RawMessage, len(fields))
	for recID, raw := range fields {
		records[recID] = json.RawMessage(raw)
	}
	return json.Marshal(records)
}

func (g *Gateway) SetData(ctx context.Context, path string, value interface{}) error {
	collection, id := remote.SplitPath(path)
	if id != "" {
		raw, err := json.Marshal(value)
		if err != nil {
			return errors.Wrap(err, "encoding record")
		}
		return errors.Wrapf(g.client.HSet(ctx, g.key(collection), id, string(raw)).Err(), "writing %s", path)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "encoding collection value")
	}
	var records map[string]json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return errors.Wrap(err, "decoding collection value")
	}
	fields := make(map[string]interface{}, len(records))
	for recID, rec := range records {
		fields[recID] = string(rec)
	}

	// full overwrite: drop the hash, then rewrite it
	pipe := g.client.TxPipeline()
	pipe.Del(ctx, g.key(collection))
	if len(fields) > 0 {
		pipe.HSet(ctx, g.key(collection), fields)
	}
	_, err = pipe.Exec(ctx)
	return errors.Wrapf(err, "writing %s", path)
}

func (g *Gateway) UpdateData(ctx context.Context, path string, fields map[string]interface{}) error {
	collection, id := remote.SplitPath(path)
	if id == "" {
		// merge at collection level: each field is a full record write
		hset := make(map[string]interface{}, len(fields))
		for recID, value := range fields {
			raw, err := json.Marshal(value)
			if err != nil {
				return errors.Wrap(err, "encoding record")
			}
			hset[recID] = string(raw)
		}
		return errors.Wrapf(g.client.HSet(ctx, g.key(collection), hset).Err(), "updating %s", path)
	}

	// read-merge-write; concurrent writers are last-write-wins
	current := make(map[string]interface{})
	raw, err := g.client.HGet(ctx, g.key(collection), id).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// record does not exist yet; the merge creates it
	case err != nil:
		return errors.Wrapf(err, "updating %s", path)
	default:
		if err := json.Unmarshal([]byte(raw), &current); err != nil {
			return errors.Wrapf(err, "decoding %s", path)
		}
	}
	for k, v := range fields {
		current[k] = v
	}
	merged, err := json.Marshal(current)
	if err != nil {
		return errors.Wrap(err, "encoding record")
	}
	return errors.Wrapf(g.client.HSet(ctx, g.key(collection), id, string(merged)).Err(), "updating %s", path)
}
