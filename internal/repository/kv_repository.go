// internal/repository/kv_repository.go
package repository

import (
	"database/sql"
	"errors"
	"log/slog"

	"safari-connect/internal/database"
)

// KVRepository is the SQLite-backed key-value store behind the inventory
// counter. Read failures are logged and reported as missing keys.
type KVRepository struct {
	db *database.DB
}

func NewKVRepository(db *database.DB) *KVRepository {
	return &KVRepository{db: db}
}

func (r *KVRepository) Get(key string) (string, bool) {
	var value string
	err := r.db.QueryRow("SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("kv read failed", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

func (r *KVRepository) Set(key, value string) error {
	_, err := r.db.Exec(`
        INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
    `, key, value)
	return err
}

// Keys lists stored keys starting with prefix, in key order. The prefix is
// matched literally.
func (r *KVRepository) Keys(prefix string) ([]string, error) {
	rows, err := r.db.Query(
		"SELECT key FROM kv_store WHERE substr(key, 1, length(?)) = ? ORDER BY key",
		prefix, prefix,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
