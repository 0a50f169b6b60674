// Package db provides the connection and transaction provider shared by the
// migration manager and the keyed storage layer. One Database owns two
// SQLite files: the persistent database and a transient database attached
// under the "transient" schema name on every pooled connection.
package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sylphie-project/sylphiedb/internal/common"
	"modernc.org/sqlite"
)

// TransientSchema is the schema name the transient database is attached under.
const TransientSchema = "transient"

// Database wraps the shared connection pool for one persistent/transient
// database pair.
type Database struct {
	sql *sql.DB
	cfg Config

	// scratch transient file to remove on Close, if we created one
	scratch string
}

// Open opens the persistent database and arranges for the transient
// database to be attached on every connection the pool hands out.
func Open(cfg Config) (*Database, error) {
	if cfg.Path == "" {
		return nil, errors.New("db: persistent database path is required")
	}

	transientPath := cfg.TransientPath
	scratch := ""
	if transientPath == "" {
		f, err := os.CreateTemp("", "sylphiedb-transient-*.db")
		if err != nil {
			return nil, fmt.Errorf("failed to create transient scratch file: %w", err)
		}
		transientPath = f.Name()
		scratch = transientPath
		_ = f.Close()
	}

	conn := &connector{
		drv:    &sqlite.Driver{},
		dsn:    cfg.dsn(),
		attach: attachTransientSQL(transientPath),
	}
	pool := sql.OpenDB(conn)

	logger := common.GetLogger().WithComponent("db")
	logger.Debug("database opened", "path", cfg.Path, "transient_path", transientPath)

	return &Database{sql: pool, cfg: cfg, scratch: scratch}, nil
}

// DB exposes the underlying pool for callers that run plain independent
// transactions (the keyed storage layer).
func (d *Database) DB() *sql.DB {
	return d.sql
}

// Connect checks a single connection out of the pool. The caller owns it
// until Close and may run session-scoped statements such as BEGIN EXCLUSIVE
// on it.
func (d *Database) Connect(ctx context.Context) (*Conn, error) {
	c, err := d.sql.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	return &Conn{conn: c}, nil
}

// Close closes the pool and removes the transient scratch file if Open
// created one.
func (d *Database) Close() error {
	err := d.sql.Close()
	if d.scratch != "" {
		_ = os.Remove(d.scratch)
	}
	return err
}

// connector attaches the transient database to each new driver connection
// before it enters the pool. ATTACH is per-connection state in SQLite, so a
// DSN parameter cannot express it.
type connector struct {
	drv    driver.Driver
	dsn    string
	attach string
}

func (c *connector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.drv.Open(c.dsn)
	if err != nil {
		return nil, err
	}
	ex, ok := conn.(driver.ExecerContext)
	if !ok {
		_ = conn.Close()
		return nil, errors.New("sqlite driver connection does not implement ExecerContext")
	}
	if _, err := ex.ExecContext(ctx, c.attach, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to attach transient database: %w", err)
	}
	return conn, nil
}

func (c *connector) Driver() driver.Driver {
	return c.drv
}

func attachTransientSQL(path string) string {
	return fmt.Sprintf("ATTACH DATABASE %s AS %s;", quoteSQLString(path), TransientSchema)
}

// quoteSQLString quotes a string literal for inclusion in SQL text.
// ATTACH does not accept bound parameters on all drivers.
func quoteSQLString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Conn is a checked-out connection supporting batched statement execution,
// single-row scalar queries, and typed transactions.
type Conn struct {
	conn *sql.Conn
}

// Execute runs a single statement and reports the affected row count.
func (c *Conn) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ExecuteBatch runs raw, possibly multi-statement SQL text. No parameters
// may be bound.
func (c *Conn) ExecuteBatch(ctx context.Context, raw string) error {
	_, err := c.conn.ExecContext(ctx, raw)
	return err
}

// QueryInt runs a single-row scalar query. The second return value reports
// whether a row existed.
func (c *Conn) QueryInt(ctx context.Context, query string, args ...any) (int64, bool, error) {
	var v int64
	err := c.conn.QueryRowContext(ctx, query, args...).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// Query runs a multi-row query on this connection.
func (c *Conn) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.conn.QueryContext(ctx, query, args...)
}

// Close returns the connection to the pool.
func (c *Conn) Close() error {
	return c.conn.Close()
}
