package db

import (
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/pocket/internal/kv"
)

// KV is a kv.Backend over the kv table.
// It also implements kv.Batcher (one transaction per batch) and kv.Lister.
type KV struct {
	db *sql.DB
}

// NewKV wraps an initialized database.
func NewKV(db *sql.DB) *KV {
	return &KV{db: db}
}

var (
	_ kv.Backend = (*KV)(nil)
	_ kv.Batcher = (*KV)(nil)
	_ kv.Lister  = (*KV)(nil)
)

const upsertQuery = `
	INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`

// Get returns the value stored under key.
func (s *KV) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *KV) Set(key, value string) error {
	_, err := s.db.Exec(upsertQuery, key, value, time.Now().Unix())
	return err
}

// Remove deletes key. Missing keys are ignored.
func (s *KV) Remove(key string) error {
	_, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key)
	return err
}

// Apply runs all ops in a single transaction.
func (s *KV) Apply(ops []kv.Op) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().Unix()
	for _, op := range ops {
		if op.Value == nil {
			if _, err := tx.Exec("DELETE FROM kv WHERE key = ?", op.Key); err != nil {
				return err
			}
			continue
		}
		if _, err := tx.Exec(upsertQuery, op.Key, *op.Value, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Keys returns all keys starting with prefix, sorted.
func (s *KV) Keys(prefix string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT key FROM kv WHERE key LIKE ? ESCAPE '\\' ORDER BY key",
		escapeLike(prefix)+"%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// escapeLike escapes LIKE wildcards; key prefixes such as "pc_capsule_" contain underscores.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
