package refine

import (
	"strings"

	"github.com/taskban/taskban/internal/errors"
)

// Relation names the tree relative a move targets.
type Relation string

const (
	// RelationNone walks the tree in pre-order instead of following a
	// single relation.
	RelationNone    Relation = ""
	RelationChild   Relation = "child"
	RelationSibling Relation = "sibling"
	RelationParent  Relation = "parent"
)

// Relations lists the accepted relation names.
func Relations() []string {
	return []string{string(RelationChild), string(RelationSibling), string(RelationParent)}
}

// ParseRelation parses a relation name. The empty string yields RelationNone.
func ParseRelation(s string) (Relation, error) {
	switch r := Relation(strings.ToLower(strings.TrimSpace(s))); r {
	case RelationNone, RelationChild, RelationSibling, RelationParent:
		return r, nil
	default:
		return RelationNone, errors.NewValidationError("relation must be one of: " + strings.Join(Relations(), ", ")).
			WithField("relation").
			WithValue(s)
	}
}

// Direction is +1 (next) or -1 (previous).
type Direction int

const (
	Forward  Direction = 1
	Backward Direction = -1
)

// String returns "next" or "prev".
func (d Direction) String() string {
	if d < 0 {
		return "prev"
	}
	return "next"
}
