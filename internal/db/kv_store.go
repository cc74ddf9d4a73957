package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// KVStore persists namespaced JSON records in the kv_records table.
// It satisfies kv.Backend.
type KVStore struct {
	db *sql.DB
}

// RecordInfo describes a stored record without its value
type RecordInfo struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}

// NewKVStore creates a record store from a base store
func NewKVStore(store *Store) *KVStore {
	if store == nil {
		return nil
	}
	return &KVStore{db: store.DB()}
}

// Load returns the stored value for key if present
func (ks *KVStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if ks == nil || ks.db == nil {
		return nil, false, fmt.Errorf("kv store not initialized")
	}
	var out string
	err := ks.db.QueryRowContext(ctx, `SELECT value FROM kv_records WHERE key=?`, key).Scan(&out)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(out), true, nil
}

// Save upserts the value for key
func (ks *KVStore) Save(ctx context.Context, key string, value []byte) error {
	if ks == nil || ks.db == nil {
		return fmt.Errorf("kv store not initialized")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("empty record key")
	}
	_, err := ks.db.ExecContext(ctx, `INSERT INTO kv_records(key, value, updated_at)
VALUES(?,?,?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at;
`, key, string(value), time.Now().UnixMilli())
	return err
}

// Delete removes the record for key
func (ks *KVStore) Delete(ctx context.Context, key string) error {
	if ks == nil || ks.db == nil {
		return fmt.Errorf("kv store not initialized")
	}
	_, err := ks.db.ExecContext(ctx, `DELETE FROM kv_records WHERE key=?`, key)
	return err
}

// List returns records whose key starts with prefix, most recently updated first
func (ks *KVStore) List(ctx context.Context, prefix string) ([]RecordInfo, error) {
	if ks == nil || ks.db == nil {
		return nil, fmt.Errorf("kv store not initialized")
	}
	rows, err := ks.db.QueryContext(ctx, `SELECT key, length(value), updated_at FROM kv_records
WHERE substr(key, 1, length(?)) = ?
ORDER BY updated_at DESC, key ASC`, prefix, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecordInfo
	for rows.Next() {
		var (
			info RecordInfo
			ms   int64
		)
		if err := rows.Scan(&info.Key, &info.Size, &ms); err != nil {
			return nil, err
		}
		info.UpdatedAt = time.UnixMilli(ms)
		out = append(out, info)
	}
	return out, rows.Err()
}
