package migration

import "fmt"

// VersionMismatchError reports that walking a set's scripts did not reach
// the set's target version. The transaction is rolled back before this is
// returned, so no script side effects persist.
type VersionMismatchError struct {
	Set     string
	Target  int
	Started int
	Reached int
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf(
		"could not apply migration %s to version %d (got from %d to %d)",
		e.Set, e.Target, e.Started, e.Reached,
	)
}
