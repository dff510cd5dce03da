// Package pgdb is the Postgres-backed Gateway. Every record is one jsonb
// row in a single fixed table, scoped by the configured base path so
// several projects can share one database.
package pgdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"dnevnik/core"
	"dnevnik/storage/remote"
)

const schema = `
CREATE TABLE IF NOT EXISTS remote_records (
	base_path  text NOT NULL,
	collection text NOT NULL,
	id         text NOT NULL,
	data       jsonb NOT NULL,
	PRIMARY KEY (base_path, collection, id)
)`

type Gateway struct {
	db       *sqlx.DB
	basePath string
}

var _ remote.Gateway = (*Gateway)(nil)

// Open connects to Postgres and bootstraps the records table.
func Open(conf *core.Config) (*Gateway, error) {
	sslMode := "require"
	if conf.Remote.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conf.Remote.Database.User, conf.Remote.Database.Password),
		Host:     conf.Remote.Database.Address(),
		Path:     conf.Remote.Database.Name,
		RawQuery: q.Encode(),
	}

	db, err := sqlx.Open("postgres", u.String())
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err := ping(db); err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "bootstrapping records table")
	}
	return &Gateway{db: db, basePath: conf.Remote.BasePath}, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}
	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func (g *Gateway) Close() error {
	return g.db.Close()
}

func (g *Gateway) GetData(ctx context.Context, path string) (json.RawMessage, error) {
	collection, id := remote.SplitPath(path)
	if id != "" {
		var raw []byte
		err := g.db.QueryRowxContext(ctx,
			`SELECT data FROM remote_records WHERE base_path = $1 AND collection = $2 AND id = $3`,
			g.basePath, collection, id,
		).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", path)
		}
		return raw, nil
	}

	rows, err := g.db.QueryxContext(ctx,
		`SELECT id, data FROM remote_records WHERE base_path = $1 AND collection = $2`,
		g.basePath, collection,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	defer rows.Close()

	records := make(map[string]json.RawMessage)
	for rows.Next() {
		var (
			recID string
			raw   []byte
		)
		if err := rows.Scan(&recID, &raw); err != nil {
			return nil, errors.Wrapf(err, "reading %s", path)
		}
		records[recID] = raw
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return json.Marshal(records)
}

func (g *Gateway) SetData(ctx context.Context, path string, value interface{}) error {
	collection, id := remote.SplitPath(path)
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "encoding record")
	}

	if id != "" {
		_, err = g.db.ExecContext(ctx, `
			INSERT INTO remote_records (base_path, collection, id, data)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (base_path, collection, id) DO UPDATE SET data = EXCLUDED.data
		`, g.basePath, collection, id, raw)
		return errors.Wrapf(err, "writing %s", path)
	}

	var records map[string]json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return errors.Wrap(err, "decoding collection value")
	}

	// full overwrite of the collection in one transaction
	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM remote_records WHERE base_path = $1 AND collection = $2`,
		g.basePath, collection,
	); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	for recID, rec := range records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO remote_records (base_path, collection, id, data)
			VALUES ($1, $2, $3, $4)
		`, g.basePath, collection, recID, []byte(rec)); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
	}
	return errors.Wrapf(tx.Commit(), "writing %s", path)
}

func (g *Gateway) UpdateData(ctx context.Context, path string, fields map[string]interface{}) error {
	collection, id := remote.SplitPath(path)
	if id == "" {
		// merge at collection level: each field is a full record write
		for recID, value := range fields {
			if err := g.SetData(ctx, collection+"/"+recID, value); err != nil {
				return err
			}
		}
		return nil
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrap(err, "encoding fields")
	}
	// jsonb || is a shallow merge; the merge creates the record when absent
	_, err = g.db.ExecContext(ctx, `
		INSERT INTO remote_records (base_path, collection, id, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (base_path, collection, id) DO UPDATE SET data = remote_records.data || EXCLUDED.data
	`, g.basePath, collection, id, raw)
	return errors.Wrapf(err, "updating %s", path)
}
