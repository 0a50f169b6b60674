// Package migration implements the versioned schema migration engine: ordered
// migration scripts grouped into uniquely-identified sets, applied exactly
// once per version gap against a persisted tracking table.
package migration

import (
	"fmt"

	"github.com/google/uuid"
)

// Script is one atomic upgrade step between two exact schema versions.
// Version 0 represents a newly initialized database with no tables at all.
// Source is the raw SQL text, normally embedded with go:embed.
type Script struct {
	From   int
	To     int
	Name   string
	Source string
}

// Set is an ordered collection of migration scripts moving a schema from
// version 0 (or any intermediate version) to Target.
//
// ID is stored in the tracking table and must never change and never
// conflict with any other migration set; use something unique such as an
// UUID. Scripts are checked in declaration order: a script runs when its
// From matches the running version, so keep them sorted in the order they
// should apply.
type Set struct {
	ID        string
	Name      string
	Transient bool
	Target    int
	Scripts   []Script
}

// NewSetID returns a fresh unique id suitable for a new migration set.
func NewSetID() string {
	return uuid.NewString()
}

// TrackingRow is one persisted (migration set id, current version) pair.
type TrackingRow struct {
	Name    string
	Version int
}

const trackingTable = "sylphie_db_migrations_tracking"

func scopePrefix(transient bool) string {
	if transient {
		return "transient."
	}
	return ""
}

// The exact table and column names and the REPLACE-based upsert are load
// bearing: they must stay byte-compatible with databases written by earlier
// releases.

func createTrackingTableSQL(transient bool) string {
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s%s ("+
			" migration_name TEXT NOT NULL PRIMARY KEY,"+
			" current_version INTEGER NOT NULL"+
			") WITHOUT ROWID;",
		scopePrefix(transient), trackingTable,
	)
}

func queryTrackingSQL(transient bool) string {
	return fmt.Sprintf(
		"SELECT current_version FROM %s%s WHERE migration_name = ?;",
		scopePrefix(transient), trackingTable,
	)
}

func replaceTrackingSQL(transient bool) string {
	return fmt.Sprintf(
		"REPLACE INTO %s%s (migration_name, current_version) VALUES (?, ?);",
		scopePrefix(transient), trackingTable,
	)
}

func listTrackingSQL(transient bool) string {
	return fmt.Sprintf(
		"SELECT migration_name, current_version FROM %s%s ORDER BY migration_name;",
		scopePrefix(transient), trackingTable,
	)
}
