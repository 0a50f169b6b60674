package kvs

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/sylphie-project/sylphiedb/internal/db"
	"github.com/sylphie-project/sylphiedb/internal/migration"
)

// schemaVersion is the keyed storage table layout version. Bumping it
// requires appending a script to each store's migration set.
const schemaVersion = 1

//go:embed scripts/kvs_0_to_1.sql
var kvsScript0to1 string

// Migration set descriptors are meant to behave like static configuration:
// one object per (store name, scope) for the process lifetime. The registry
// makes repeat attachment of the same store hit the manager's benign
// repeat-warning path rather than its identity-conflict path.
var (
	setsMu sync.Mutex
	sets   = make(map[string]*migration.Set)
)

func tableName(name string, transient bool) string {
	table := "sylphie_db_kvs_" + name
	if transient {
		return db.TransientSchema + "." + table
	}
	return table
}

func migrationSetFor(name string, transient bool) *migration.Set {
	key := name
	if transient {
		key = db.TransientSchema + ":" + name
	}

	setsMu.Lock()
	defer setsMu.Unlock()
	if set, ok := sets[key]; ok {
		return set
	}

	// The id carries the scope: the manager's conflict watch is keyed by id
	// alone, so a store attached in both scopes must not look like two
	// competing registrations of one lineage.
	id := "sylphie_db.kvs." + name
	if transient {
		id = "sylphie_db.kvs.transient." + name
	}

	set := &migration.Set{
		ID:        id,
		Name:      "kvs " + name,
		Transient: transient,
		Target:    schemaVersion,
		Scripts: []migration.Script{
			{
				From:   0,
				To:     1,
				Name:   "kvs_0_to_1.sql",
				Source: strings.ReplaceAll(kvsScript0to1, "{{table}}", tableName(name, transient)),
			},
		},
	}
	sets[key] = set
	return set
}
