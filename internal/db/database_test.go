package db

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	dir := t.TempDir()
	database, err := Open(Config{Path: filepath.Join(dir, "sylphie.db")})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(Config{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestTransientSchemaSharedAcrossConnections(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	// write through one connection, read through another: the transient
	// schema must be the same database on every pooled connection
	c1, err := database.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer func() { _ = c1.Close() }()
	if err := c1.ExecuteBatch(ctx,
		"CREATE TABLE transient.scratch (id INTEGER); INSERT INTO transient.scratch VALUES (7);",
	); err != nil {
		t.Fatalf("transient write failed: %v", err)
	}

	c2, err := database.Connect(ctx)
	if err != nil {
		t.Fatalf("second Connect failed: %v", err)
	}
	defer func() { _ = c2.Close() }()
	v, ok, err := c2.QueryInt(ctx, "SELECT id FROM transient.scratch;")
	if err != nil || !ok || v != 7 {
		t.Fatalf("transient read = %d ok=%v err=%v, want 7", v, ok, err)
	}
}

func TestQueryIntNoRows(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	conn, err := database.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.ExecuteBatch(ctx, "CREATE TABLE empty_t (id INTEGER);"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, ok, err := conn.QueryInt(ctx, "SELECT id FROM empty_t;")
	if err != nil {
		t.Fatalf("QueryInt failed: %v", err)
	}
	if ok {
		t.Fatal("QueryInt reported a row in an empty table")
	}
}

func TestTransactionCommit(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	conn, err := database.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.ExecuteBatch(ctx, "CREATE TABLE tx_t (id INTEGER);"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	tx, err := conn.TransactionWithType(ctx, TransactionExclusive)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if _, err := tx.Execute(ctx, "INSERT INTO tx_t VALUES (?);", 1); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	// rollback after commit is a no-op
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback after commit = %v, want nil", err)
	}

	v, ok, err := conn.QueryInt(ctx, "SELECT id FROM tx_t;")
	if err != nil || !ok || v != 1 {
		t.Fatalf("read after commit = %d ok=%v err=%v, want 1", v, ok, err)
	}
}

func TestTransactionRollback(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	conn, err := database.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.ExecuteBatch(ctx, "CREATE TABLE rb_t (id INTEGER);"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	tx, err := conn.TransactionWithType(ctx, TransactionExclusive)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if _, err := tx.Execute(ctx, "INSERT INTO rb_t VALUES (1);"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}
	if err := tx.Commit(ctx); err != ErrTxDone {
		t.Fatalf("commit after rollback = %v, want ErrTxDone", err)
	}

	_, ok, err := conn.QueryInt(ctx, "SELECT id FROM rb_t;")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if ok {
		t.Fatal("rolled back insert is visible")
	}
}

func TestExecuteReportsRowCount(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	conn, err := database.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.ExecuteBatch(ctx,
		"CREATE TABLE rc_t (id INTEGER); INSERT INTO rc_t VALUES (1); INSERT INTO rc_t VALUES (2);",
	); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	n, err := conn.Execute(ctx, "DELETE FROM rc_t;")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("row count = %d, want 2", n)
	}
}

func TestQuoteSQLString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "'plain'"},
		{"with'quote", "'with''quote'"},
		{"", "''"},
	}
	for _, tt := range tests {
		if got := quoteSQLString(tt.in); got != tt.want {
			t.Fatalf("quoteSQLString(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
