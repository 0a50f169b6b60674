package migration

import (
	"context"
	"fmt"
	"sync"

	"github.com/sylphie-project/sylphiedb/internal/common"
	"github.com/sylphie-project/sylphiedb/internal/db"
)

// Manager applies migration sets one at a time against a single database.
//
// All migration application is serialized process-wide through the manager's
// mutex: at most one ExecuteMigration call is mid-flight at any time, no
// matter which set it targets. Blocked callers merely park their goroutine.
// Inside one call, an EXCLUSIVE transaction additionally locks out writers
// from other connections and processes, so a half-migrated schema is never
// observable.
type Manager struct {
	db *db.Database

	mu            sync.Mutex
	tablesCreated bool
	lastApplied   map[string]*Set
}

// NewManager creates a migration manager for the given database.
func NewManager(database *db.Database) *Manager {
	return &Manager{
		db:          database,
		lastApplied: make(map[string]*Set),
	}
}

// ExecuteMigration brings the schema owned by set up to set.Target.
//
// Scripts run with all-or-nothing semantics per call. Re-running a set that
// already reached its target is a no-op aside from a logged warning. If the
// script chain cannot reach the target from the stored version, nothing is
// committed and a *VersionMismatchError is returned.
func (m *Manager) ExecuteMigration(ctx context.Context, set *Set) error {
	conn, err := m.db.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executeLocked(ctx, conn, set)
}

func (m *Manager) executeLocked(ctx context.Context, conn *db.Conn, set *Set) error {
	logger := common.GetLogger().WithComponent("migration").WithMigrationSet(set.Name)

	if err := m.createTrackingTables(ctx, conn); err != nil {
		return err
	}

	// Registration conflicts are deliberately soft: independently compiled
	// modules may both carry a historical copy of the same set. The stored
	// version still decides what actually runs.
	if prev, ok := m.lastApplied[set.ID]; ok {
		if prev == set {
			logger.Warn("migration set has been executed more than once", "id", set.ID)
		} else {
			logger.Warn("migration set id conflicts",
				"id", set.ID,
				"set", fmt.Sprintf("%s at %p", set.Name, set),
				"previous", fmt.Sprintf("%s at %p", prev.Name, prev),
			)
		}
	}

	logger.Debug("running migration set", "target", set.Target)

	tx, err := conn.TransactionWithType(ctx, db.TransactionExclusive)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stored, _, err := tx.QueryInt(ctx, queryTrackingSQL(set.Transient), set.ID)
	if err != nil {
		return err
	}
	start := int(stored)

	current := start
	for _, script := range set.Scripts {
		if current != script.From {
			continue
		}
		logger.Info("running migration script",
			"script", script.Name, "from", script.From, "to", script.To)
		if err := tx.ExecuteBatch(ctx, script.Source); err != nil {
			return fmt.Errorf("migration script %s failed: %w", script.Name, err)
		}
		if _, err := tx.Execute(ctx, replaceTrackingSQL(set.Transient), set.ID, script.To); err != nil {
			return fmt.Errorf("failed to record version %d for set %s: %w", script.To, set.ID, err)
		}
		current = script.To
	}

	if current != set.Target {
		logger.Error("could not apply migration set",
			"target", set.Target, "started", start, "reached", current)
		return &VersionMismatchError{
			Set:     set.Name,
			Target:  set.Target,
			Started: start,
			Reached: current,
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	m.lastApplied[set.ID] = set
	return nil
}

// createTrackingTables lazily creates both tracking tables once per process.
// Calls arrive under the manager mutex.
func (m *Manager) createTrackingTables(ctx context.Context, conn *db.Conn) error {
	if m.tablesCreated {
		return nil
	}
	if err := conn.ExecuteBatch(ctx, createTrackingTableSQL(false)); err != nil {
		return fmt.Errorf("failed to create migrations tracking table: %w", err)
	}
	if err := conn.ExecuteBatch(ctx, createTrackingTableSQL(true)); err != nil {
		return fmt.Errorf("failed to create transient migrations tracking table: %w", err)
	}
	m.tablesCreated = true
	return nil
}

// ListTracking returns every tracking row for one scope, for inspection
// tooling. It shares the manager mutex so the tables exist before reading.
func (m *Manager) ListTracking(ctx context.Context, transient bool) ([]TrackingRow, error) {
	conn, err := m.db.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.createTrackingTables(ctx, conn); err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, listTrackingSQL(transient))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []TrackingRow
	for rows.Next() {
		var r TrackingRow
		if err := rows.Scan(&r.Name, &r.Version); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
