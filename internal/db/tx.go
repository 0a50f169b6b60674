package db

import (
	"context"
	"errors"
)

// TransactionType selects the SQLite transaction locking behavior. Exclusive
// transactions block every other writer for their duration, which the
// migration manager relies on to keep schema changes atomic against
// connections outside this process.
type TransactionType string

const (
	TransactionDeferred  TransactionType = "DEFERRED"
	TransactionImmediate TransactionType = "IMMEDIATE"
	TransactionExclusive TransactionType = "EXCLUSIVE"
)

// ErrTxDone is returned when committing a transaction that has already been
// committed or rolled back.
var ErrTxDone = errors.New("db: transaction already finished")

// Tx is an open transaction on a checked-out connection. BEGIN/COMMIT are
// issued as session statements so the transaction type can be selected;
// database/sql's BeginTx has no notion of SQLite locking modes.
type Tx struct {
	conn *Conn
	done bool
}

// TransactionWithType opens a transaction with the given locking behavior.
func (c *Conn) TransactionWithType(ctx context.Context, typ TransactionType) (*Tx, error) {
	if err := c.ExecuteBatch(ctx, "BEGIN "+string(typ)+";"); err != nil {
		return nil, err
	}
	return &Tx{conn: c}, nil
}

// Execute runs a single statement inside the transaction.
func (t *Tx) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	if t.done {
		return 0, ErrTxDone
	}
	return t.conn.Execute(ctx, query, args...)
}

// ExecuteBatch runs raw multi-statement SQL text inside the transaction.
func (t *Tx) ExecuteBatch(ctx context.Context, raw string) error {
	if t.done {
		return ErrTxDone
	}
	return t.conn.ExecuteBatch(ctx, raw)
}

// QueryInt runs a single-row scalar query inside the transaction.
func (t *Tx) QueryInt(ctx context.Context, query string, args ...any) (int64, bool, error) {
	if t.done {
		return 0, false, ErrTxDone
	}
	return t.conn.QueryInt(ctx, query, args...)
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}
	if err := t.conn.ExecuteBatch(ctx, "COMMIT;"); err != nil {
		return err
	}
	t.done = true
	return nil
}

// Rollback aborts the transaction. It is a no-op after Commit, so callers
// can unconditionally defer it. The rollback itself runs even when ctx has
// been cancelled, otherwise a cancelled migration would poison the pooled
// connection with an open transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	return t.conn.ExecuteBatch(context.WithoutCancel(ctx), "ROLLBACK;")
}
