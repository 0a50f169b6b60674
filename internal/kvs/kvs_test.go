package kvs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sylphie-project/sylphiedb/internal/db"
	"github.com/sylphie-project/sylphiedb/internal/migration"
)

func openTestDB(t *testing.T) (*db.Database, *migration.Manager) {
	t.Helper()
	dir := t.TempDir()
	database, err := db.Open(db.Config{Path: filepath.Join(dir, "sylphie.db")})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database, migration.NewManager(database)
}

func TestStoreSetGetDelete(t *testing.T) {
	database, mgr := openTestDB(t)
	ctx := context.Background()

	store, err := New(ctx, database, mgr, "basic", Persistent, StringKey{}, StringValue{})
	if err != nil {
		t.Fatalf("failed to attach store: %v", err)
	}

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v, want absent", ok, err)
	}

	if err := store.Set(ctx, "greeting", "hello"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok, err := store.Get(ctx, "greeting")
	if err != nil || !ok || v != "hello" {
		t.Fatalf("Get = %q ok=%v err=%v, want hello", v, ok, err)
	}

	// overwrite
	if err := store.Set(ctx, "greeting", "bye"); err != nil {
		t.Fatalf("overwrite Set failed: %v", err)
	}
	if v, _, _ := store.Get(ctx, "greeting"); v != "bye" {
		t.Fatalf("Get after overwrite = %q, want bye", v)
	}

	if err := store.Delete(ctx, "greeting"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "greeting"); ok {
		t.Fatal("key still present after Delete")
	}
	// deleting an absent key is not an error
	if err := store.Delete(ctx, "greeting"); err != nil {
		t.Fatalf("Delete of absent key failed: %v", err)
	}
}

type guildSettings struct {
	Prefix  string `json:"prefix" yaml:"prefix"`
	Volume  int    `json:"volume" yaml:"volume"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

func TestJSONValueAndGetPath(t *testing.T) {
	database, mgr := openTestDB(t)
	ctx := context.Background()

	store, err := New(ctx, database, mgr, "guilds", Persistent,
		StringKey{}, JSONValue[guildSettings]{})
	if err != nil {
		t.Fatalf("failed to attach store: %v", err)
	}

	want := guildSettings{Prefix: "!", Volume: 80, Enabled: true}
	if err := store.Set(ctx, "guild:1", want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := store.Get(ctx, "guild:1")
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("Get = %+v, want %+v", got, want)
	}

	// partial read without decoding the whole document
	res, ok, err := store.GetPath(ctx, "guild:1", "volume")
	if err != nil || !ok {
		t.Fatalf("GetPath = ok=%v err=%v", ok, err)
	}
	if res.Int() != 80 {
		t.Fatalf("GetPath(volume) = %v, want 80", res.Int())
	}
	if _, ok, _ := store.GetPath(ctx, "guild:2", "volume"); ok {
		t.Fatal("GetPath reported a missing key as present")
	}
}

func TestYAMLValue(t *testing.T) {
	database, mgr := openTestDB(t)
	ctx := context.Background()

	store, err := New(ctx, database, mgr, "yamlcfg", Persistent,
		StringKey{}, YAMLValue[guildSettings]{})
	if err != nil {
		t.Fatalf("failed to attach store: %v", err)
	}

	want := guildSettings{Prefix: "~", Volume: 40}
	if err := store.Set(ctx, "cfg", want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok, err := store.Get(ctx, "cfg")
	if err != nil || !ok || got != want {
		t.Fatalf("Get = %+v ok=%v err=%v, want %+v", got, ok, err, want)
	}
}

func TestScopesAreIndependent(t *testing.T) {
	database, mgr := openTestDB(t)
	ctx := context.Background()

	persistent, err := New(ctx, database, mgr, "shared", Persistent, StringKey{}, StringValue{})
	if err != nil {
		t.Fatalf("failed to attach persistent store: %v", err)
	}
	transient, err := New(ctx, database, mgr, "shared", Transient, StringKey{}, StringValue{})
	if err != nil {
		t.Fatalf("failed to attach transient store: %v", err)
	}

	if err := persistent.Set(ctx, "k", "durable"); err != nil {
		t.Fatalf("persistent Set failed: %v", err)
	}
	if err := transient.Set(ctx, "k", "scratch"); err != nil {
		t.Fatalf("transient Set failed: %v", err)
	}

	if v, _, _ := persistent.Get(ctx, "k"); v != "durable" {
		t.Fatalf("persistent Get = %q, want durable", v)
	}
	if v, _, _ := transient.Get(ctx, "k"); v != "scratch" {
		t.Fatalf("transient Get = %q, want scratch", v)
	}
}

func TestReattachReusesMigrationSet(t *testing.T) {
	database, mgr := openTestDB(t)
	ctx := context.Background()

	first, err := New(ctx, database, mgr, "reattach", Persistent, StringKey{}, StringValue{})
	if err != nil {
		t.Fatalf("first attach failed: %v", err)
	}
	if err := first.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// a second attachment of the same store must not disturb its data
	second, err := New(ctx, database, mgr, "reattach", Persistent, StringKey{}, StringValue{})
	if err != nil {
		t.Fatalf("second attach failed: %v", err)
	}
	if v, ok, _ := second.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("Get after reattach = %q ok=%v, want v", v, ok)
	}
}

func TestInvalidStoreName(t *testing.T) {
	database, mgr := openTestDB(t)

	for _, name := range []string{"", "Bad", "has space", "1leading", "semi;colon"} {
		if _, err := New(context.Background(), database, mgr, name, Persistent,
			StringKey{}, StringValue{}); err == nil {
			t.Fatalf("expected error for store name %q", name)
		}
	}
}
