package database

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tmwangi/kazi/core"
)

type kvStore struct {
	db *sqlx.DB
}

var _ core.KVStore = (*kvStore)(nil)

// NewKVStore returns a core.KVStore backed by the kv_store table.
func NewKVStore(db *sqlx.DB) core.KVStore {
	return &kvStore{db: db}
}

func (s *kvStore) Load(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.Get(&value, "SELECT value FROM kv_store WHERE key = $1", key)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "loading %q", key)
	}
	return value, true, nil
}

func (s *kvStore) Save(entries map[string][]byte) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "beginning tx")
	}
	for key, value := range entries {
		if _, err = tx.Exec(
			`INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, now())
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			key, value,
		); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "saving %q", key)
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing tx")
	}
	return nil
}
