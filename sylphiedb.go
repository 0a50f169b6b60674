// Package sylphiedb is the storage core of the sylphie bot framework: a
// versioned schema migration engine over a persistent/transient SQLite pair,
// plus a generic keyed storage abstraction built on the same connections.
package sylphiedb

import (
	"context"

	"github.com/sylphie-project/sylphiedb/internal/common"
	"github.com/sylphie-project/sylphiedb/internal/db"
	"github.com/sylphie-project/sylphiedb/internal/kvs"
	"github.com/sylphie-project/sylphiedb/internal/migration"
)

// Re-export commonly used types for public API

// Config describes the persistent and transient database files.
type Config = db.Config

// Database is the shared connection pool for one database pair.
type Database = db.Database

// TransactionType selects SQLite transaction locking behavior.
type TransactionType = db.TransactionType

const (
	TransactionDeferred  = db.TransactionDeferred
	TransactionImmediate = db.TransactionImmediate
	TransactionExclusive = db.TransactionExclusive
)

// MigrationScript is one atomic upgrade step between two schema versions.
type MigrationScript = migration.Script

// MigrationSet is an ordered collection of migration scripts owned by one
// schema lineage.
type MigrationSet = migration.Set

// MigrationManager applies migration sets, serialized process-wide.
type MigrationManager = migration.Manager

// TrackingRow is one persisted (migration set id, current version) pair.
type TrackingRow = migration.TrackingRow

// VersionMismatchError reports a migration set whose scripts could not reach
// its target version.
type VersionMismatchError = migration.VersionMismatchError

// NewMigrationSetID returns a fresh unique id for authoring a migration set.
func NewMigrationSetID() string { return migration.NewSetID() }

// StorageClass selects the persistent or transient scope for a keyed store.
type StorageClass = kvs.StorageClass

const (
	Persistent = kvs.Persistent
	Transient  = kvs.Transient
)

// KVStore is a keyed store parameterized by key and value codecs.
type KVStore[K, V any] = kvs.Store[K, V]

type KeyCodec[K any] = kvs.KeyCodec[K]

type ValueCodec[V any] = kvs.ValueCodec[V]

type StringKey = kvs.StringKey

type StringValue = kvs.StringValue

type JSONValue[V any] = kvs.JSONValue[V]

type YAMLValue[V any] = kvs.YAMLValue[V]

// Open opens the database pair described by cfg and creates its migration
// manager.
func Open(cfg Config) (*Database, *MigrationManager, error) {
	database, err := db.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return database, migration.NewManager(database), nil
}

// NewKVStore attaches a keyed store, running its table-creation migration
// through the manager before any read or write.
func NewKVStore[K, V any](
	ctx context.Context,
	database *Database,
	mgr *MigrationManager,
	name string,
	class StorageClass,
	keys KeyCodec[K],
	values ValueCodec[V],
) (*KVStore[K, V], error) {
	return kvs.New(ctx, database, mgr, name, class, keys, values)
}

// Logger is the structured logger used throughout the library.
type Logger = common.Logger

// LogLevel represents logging verbosity levels.
type LogLevel = common.LogLevel

const (
	LogLevelError = common.LogLevelError
	LogLevelWarn  = common.LogLevelWarn
	LogLevelInfo  = common.LogLevelInfo
	LogLevelDebug = common.LogLevelDebug
)

// SetDefaultLogger replaces the library-wide default logger.
func SetDefaultLogger(l *Logger) { common.SetDefaultLogger(l) }

// NewLogger creates a text logger at the given level.
func NewLogger(level LogLevel) *Logger { return common.NewLogger(level) }

// NewJSONLogger creates a JSON logger at the given level.
func NewJSONLogger(level LogLevel) *Logger { return common.NewJSONLogger(level) }
