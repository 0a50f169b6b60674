// Package kvs provides a generic keyed storage abstraction over the shared
// database. Each store owns one table, created through a migration set it
// registers with the migration manager before serving any read or write.
package kvs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/sylphie-project/sylphiedb/internal/common"
	"github.com/sylphie-project/sylphiedb/internal/db"
	"github.com/sylphie-project/sylphiedb/internal/migration"
	"github.com/tidwall/gjson"
)

// StorageClass selects which scope a store lives in. Transient stores are
// backed by the attached transient database and lose their contents when it
// does.
type StorageClass int

const (
	Persistent StorageClass = iota
	Transient
)

func (c StorageClass) String() string {
	if c == Transient {
		return "transient"
	}
	return "persistent"
}

var storeNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Store is a keyed store parameterized by its key and value codecs.
//
// Get, Set and Delete each run as their own transaction. They take no
// process-wide lock and may run concurrently with each other and with
// migrations belonging to unrelated sets. Callers must not assume atomicity
// across multiple calls.
type Store[K, V any] struct {
	name   string
	class  StorageClass
	keys   KeyCodec[K]
	values ValueCodec[V]
	db     *db.Database
	table  string
}

// New attaches a keyed store, running its table-creation migration through
// the manager first. The name becomes part of the backing table name and of
// the migration set id, so it must be stable across releases.
func New[K, V any](
	ctx context.Context,
	database *db.Database,
	mgr *migration.Manager,
	name string,
	class StorageClass,
	keys KeyCodec[K],
	values ValueCodec[V],
) (*Store[K, V], error) {
	if !storeNameRegex.MatchString(name) {
		return nil, fmt.Errorf("invalid kvs store name %q", name)
	}

	set := migrationSetFor(name, class == Transient)
	if err := mgr.ExecuteMigration(ctx, set); err != nil {
		return nil, fmt.Errorf("failed to migrate kvs store %s: %w", name, err)
	}

	logger := common.GetLogger().WithComponent("kvs").WithStore(name)
	logger.Debug("keyed store attached", "scope", class.String())

	return &Store[K, V]{
		name:   name,
		class:  class,
		keys:   keys,
		values: values,
		db:     database,
		table:  tableName(name, class == Transient),
	}, nil
}

// Name returns the store's name.
func (s *Store[K, V]) Name() string { return s.name }

// Class returns the store's storage class.
func (s *Store[K, V]) Class() StorageClass { return s.class }

// Get returns the value for key, reporting whether it existed.
func (s *Store[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V
	raw, ok, err := s.getRaw(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := s.values.DecodeValue(raw)
	if err != nil {
		return zero, false, fmt.Errorf("failed to decode value in store %s: %w", s.name, err)
	}
	return v, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store[K, V]) Set(ctx context.Context, key K, value V) error {
	ks, err := s.keys.EncodeKey(key)
	if err != nil {
		return fmt.Errorf("failed to encode key in store %s: %w", s.name, err)
	}
	vs, err := s.values.EncodeValue(value)
	if err != nil {
		return fmt.Errorf("failed to encode value in store %s: %w", s.name, err)
	}

	tx, err := s.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"REPLACE INTO "+s.table+" (key, value) VALUES (?, ?);", ks, vs,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to write key in store %s: %w", s.name, err)
	}
	return tx.Commit()
}

// Delete removes key from the store. Deleting an absent key is not an error.
func (s *Store[K, V]) Delete(ctx context.Context, key K) error {
	ks, err := s.keys.EncodeKey(key)
	if err != nil {
		return fmt.Errorf("failed to encode key in store %s: %w", s.name, err)
	}

	tx, err := s.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM "+s.table+" WHERE key = ?;", ks,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete key in store %s: %w", s.name, err)
	}
	return tx.Commit()
}

// GetPath extracts one field from a JSON-encoded value without decoding the
// whole document. It only makes sense for stores using a JSON value codec.
func (s *Store[K, V]) GetPath(ctx context.Context, key K, path string) (gjson.Result, bool, error) {
	raw, ok, err := s.getRaw(ctx, key)
	if err != nil || !ok {
		return gjson.Result{}, false, err
	}
	return gjson.GetBytes(raw, path), true, nil
}

func (s *Store[K, V]) getRaw(ctx context.Context, key K) ([]byte, bool, error) {
	ks, err := s.keys.EncodeKey(key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode key in store %s: %w", s.name, err)
	}

	var raw []byte
	err = s.db.DB().QueryRowContext(ctx,
		"SELECT value FROM "+s.table+" WHERE key = ?;", ks,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key in store %s: %w", s.name, err)
	}
	return raw, true, nil
}
