package refine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/taskban/taskban/internal/errors"
)

// DefaultMaxDepth is the number of project levels navigated by default.
const DefaultMaxDepth = 3

// Position addresses a node of a Tree. Element 0 is the 0-based index of
// the top-level project; every deeper element is 1-based with 0 meaning
// "not selected". Once an element is 0 all deeper elements are 0.
type Position []int

// String renders the position for error messages.
func (p Position) String() string {
	return fmt.Sprint([]int(p))
}

// Depth returns the number of selected levels.
func (p Position) Depth() int {
	if len(p) == 0 {
		return 0
	}
	d := 1
	for _, v := range p[1:] {
		if v == 0 {
			break
		}
		d++
	}
	return d
}

type node struct {
	name     string
	children []*node
}

func (n *node) child(name string) (int, bool) {
	i := sort.Search(len(n.children), func(i int) bool { return n.children[i].name >= name })
	return i, i < len(n.children) && n.children[i].name == name
}

func (n *node) insert(name string) *node {
	i, ok := n.child(name)
	if ok {
		return n.children[i]
	}
	c := &node{name: name}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
	return c
}

// Tree is the project hierarchy derived from a set of dot-separated project
// names. Every prefix of a project is a node; siblings are kept in byte-wise
// lexicographic order, which is the only source of next/previous.
type Tree struct {
	root     node
	maxDepth int
}

// NewTree builds a Tree from project names, truncating each to maxDepth
// segments. Empty names and empty segments are ignored.
func NewTree(projects []string, maxDepth int) *Tree {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	t := &Tree{maxDepth: maxDepth}
	for _, p := range projects {
		n := &t.root
		for i, seg := range strings.Split(p, ".") {
			if i >= maxDepth || seg == "" {
				break
			}
			n = n.insert(seg)
		}
	}
	return t
}

// MaxDepth returns the number of levels positions address.
func (t *Tree) MaxDepth() int {
	return t.maxDepth
}

// Empty reports whether the tree holds no project.
func (t *Tree) Empty() bool {
	return len(t.root.children) == 0
}

// First returns the position of the first top-level project.
func (t *Tree) First() (Position, error) {
	if t.Empty() {
		return nil, errors.ErrNoProjects
	}
	return make(Position, t.maxDepth), nil
}

// Encode converts a dot path into a Position.
func (t *Tree) Encode(path string) (Position, error) {
	segments := strings.Split(path, ".")
	if path == "" || len(segments) > t.maxDepth {
		return nil, errors.NewNotFoundError("project", path)
	}

	pos := make(Position, t.maxDepth)
	n := &t.root
	for level, seg := range segments {
		i, ok := n.child(seg)
		if !ok {
			return nil, errors.NewNotFoundError("project", path)
		}
		if level == 0 {
			pos[level] = i
		} else {
			pos[level] = i + 1
		}
		n = n.children[i]
	}
	return pos, nil
}

// Decode renders the dot path of a Position.
func (t *Tree) Decode(pos Position) (string, error) {
	idx, err := t.indexes(pos)
	if err != nil {
		return "", err
	}
	segments := make([]string, 0, len(idx))
	n := &t.root
	for _, i := range idx {
		n = n.children[i]
		segments = append(segments, n.name)
	}
	return strings.Join(segments, "."), nil
}

// indexes converts a Position into validated 0-based child indexes, one per
// selected level.
func (t *Tree) indexes(pos Position) ([]int, error) {
	if len(pos) != t.maxDepth {
		return nil, errors.NewNotFoundError("project position", pos.String())
	}
	depth := pos.Depth()
	for _, v := range pos[depth:] {
		if v != 0 {
			return nil, errors.NewNotFoundError("project position", pos.String())
		}
	}

	idx := make([]int, depth)
	n := &t.root
	for level := 0; level < depth; level++ {
		i := pos[level]
		if level > 0 {
			i--
		}
		if i < 0 || i >= len(n.children) {
			return nil, errors.NewNotFoundError("project position", pos.String())
		}
		idx[level] = i
		n = n.children[i]
	}
	return idx, nil
}

func (t *Tree) position(idx []int) Position {
	pos := make(Position, t.maxDepth)
	for level, i := range idx {
		if level == 0 {
			pos[level] = i
		} else {
			pos[level] = i + 1
		}
	}
	return pos
}

// siblings returns the child list the last index of idx selects from.
func (t *Tree) siblings(idx []int) []*node {
	n := &t.root
	for _, i := range idx[:len(idx)-1] {
		n = n.children[i]
	}
	return n.children
}

func (t *Tree) nodeAt(idx []int) *node {
	return t.siblings(idx)[idx[len(idx)-1]]
}

// Move returns the position of the requested relative of pos. An
// OutOfRangeError means the relative does not exist; pos is never modified.
func (t *Tree) Move(pos Position, relation Relation, direction Direction) (Position, error) {
	idx, err := t.indexes(pos)
	if err != nil {
		return nil, err
	}
	outOfRange := t.outOfRange(pos, relation, direction)
	last := len(idx) - 1
	d := int(direction)

	switch relation {
	case RelationSibling:
		next := idx[last] + d
		if next < 0 || next >= len(t.siblings(idx)) {
			return nil, outOfRange
		}
		idx[last] = next

	case RelationChild:
		if len(idx) == t.maxDepth {
			return nil, outOfRange
		}
		if direction == Forward {
			if len(t.nodeAt(idx).children) == 0 {
				return nil, outOfRange
			}
			idx = append(idx, 0)
			break
		}
		// Backward descends into the last child of the previous sibling.
		prev := idx[last] - 1
		if prev < 0 {
			return nil, outOfRange
		}
		idx[last] = prev
		children := t.nodeAt(idx).children
		if len(children) == 0 {
			return nil, outOfRange
		}
		idx = append(idx, len(children)-1)

	case RelationParent:
		if len(idx) == 1 {
			return nil, outOfRange
		}
		idx = idx[:last]
		if direction == Forward {
			next := idx[last-1] + 1
			if next >= len(t.siblings(idx)) {
				return nil, outOfRange
			}
			idx[last-1] = next
		}

	default:
		return nil, errors.NewValidationError("unknown relation").
			WithField("relation").
			WithValue(string(relation))
	}

	return t.position(idx), nil
}

func (t *Tree) outOfRange(pos Position, relation Relation, direction Direction) *errors.OutOfRangeError {
	err := errors.NewOutOfRangeError(string(relation), int(direction), pos.String())
	if path, decodeErr := t.Decode(pos); decodeErr == nil {
		err = err.WithProject(path)
	}
	return err
}

// Walk returns the pre-order successor (Forward) or predecessor (Backward)
// of pos. Running off the end forward yields the forward parent
// OutOfRangeError that IsComplete recognizes.
func (t *Tree) Walk(pos Position, direction Direction) (Position, error) {
	idx, err := t.indexes(pos)
	if err != nil {
		return nil, err
	}

	if direction == Forward {
		if len(idx) < t.maxDepth && len(t.nodeAt(idx).children) > 0 {
			return t.position(append(idx, 0)), nil
		}
		for len(idx) > 0 {
			last := len(idx) - 1
			if idx[last]+1 < len(t.siblings(idx)) {
				idx[last]++
				return t.position(idx), nil
			}
			idx = idx[:last]
		}
		return nil, t.outOfRange(pos, RelationParent, Forward)
	}

	last := len(idx) - 1
	if idx[last] == 0 {
		if last == 0 {
			return nil, t.outOfRange(pos, RelationSibling, Backward)
		}
		return t.position(idx[:last]), nil
	}
	idx[last]--
	// Descend to the deepest last descendant of the previous sibling.
	for len(idx) < t.maxDepth {
		children := t.nodeAt(idx).children
		if len(children) == 0 {
			break
		}
		idx = append(idx, len(children)-1)
	}
	return t.position(idx), nil
}

// Paths returns every project of the tree in pre-order.
func (t *Tree) Paths() []string {
	var paths []string
	var visit func(prefix string, n *node)
	visit = func(prefix string, n *node) {
		for _, c := range n.children {
			path := c.name
			if prefix != "" {
				path = prefix + "." + c.name
			}
			paths = append(paths, path)
			visit(path, c)
		}
	}
	visit("", &t.root)
	return paths
}

// Suggest returns the known project closest to path by edit distance, or ""
// when nothing is reasonably close.
func (t *Tree) Suggest(path string) string {
	best, bestDist := "", -1
	for _, p := range t.Paths() {
		d := levenshtein.ComputeDistance(path, p)
		if bestDist < 0 || d < bestDist {
			best, bestDist = p, d
		}
	}
	if bestDist < 0 || bestDist > max(2, len(path)/2) {
		return ""
	}
	return best
}
