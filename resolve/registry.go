package resolve

import (
	"fmt"

	"github.com/camgunz/cdump/cdef"
)

// ConflictPolicy decides what happens when a key is offered a second time
// with a different body.
type ConflictPolicy string

const (
	// PolicyFirst keeps the first definition and logs the rest.
	PolicyFirst ConflictPolicy = "first"
	// PolicyError fails the offering definition.
	PolicyError ConflictPolicy = "error"
)

func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(s) {
	case "", PolicyFirst:
		return PolicyFirst, nil
	case PolicyError:
		return PolicyError, nil
	}
	return "", fmt.Errorf("unknown conflict policy %q (want %q or %q)", s, PolicyFirst, PolicyError)
}

// Stats counts what happened to offered definitions.
type Stats struct {
	Definitions int
	Duplicates  int
	Conflicts   int
	Skipped     int
	Failed      int
}

// registry is the first-seen-wins front of a Table shared by every
// translation unit of a walk.
type registry struct {
	table  *cdef.Table
	policy ConflictPolicy
	stats  *Stats
}

func (r *registry) offer(d cdef.Definition) error {
	existing, added := r.table.Add(d)
	key := cdef.Key(d)
	if added {
		r.stats.Definitions++
		log.Debug("registered definition", "key", key)
		return nil
	}
	if existing == nil {
		return nil
	}

	if existing.String() == d.String() {
		r.stats.Duplicates++
		log.Debug("dropped duplicate definition", "key", key)
		return nil
	}
	if r.policy == PolicyError {
		return &ConflictError{Key: key, Kept: existing, Offered: d}
	}
	r.stats.Conflicts++
	log.Warning("dropped conflicting redefinition", "key", key, "kept", existing.String(), "dropped", d.String())
	return nil
}
