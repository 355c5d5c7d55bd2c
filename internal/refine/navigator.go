// Package refine implements the project navigator behind refinement
// sessions: a persisted "current project" pointer that walks a
// dot-separated project hierarchy one project at a time.
//
// The hierarchy is rebuilt from the task store on every call, so projects
// appear and disappear as tasks are added and completed. Moves are pure
// functions of a Tree and a Position; the Navigator loads the state, applies
// a move and persists the result only when the move succeeds.
package refine

import (
	"context"
	"fmt"
	"time"

	"github.com/taskban/taskban/internal/errors"
	"github.com/taskban/taskban/internal/logging"
	"github.com/taskban/taskban/internal/taskstore"
)

// Navigator moves the refinement pointer.
type Navigator struct {
	projects taskstore.ProjectLister
	states   StateStore
	maxDepth int
	now      func() time.Time
	logger   *logging.Logger
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithMaxDepth sets the number of project levels navigated.
func WithMaxDepth(depth int) Option {
	return func(n *Navigator) {
		if depth > 0 {
			n.maxDepth = depth
		}
	}
}

// WithClock overrides the time source used to stamp new sessions.
func WithClock(now func() time.Time) Option {
	return func(n *Navigator) { n.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(n *Navigator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNavigator creates a Navigator over the given project source and state
// store.
func NewNavigator(projects taskstore.ProjectLister, states StateStore, opts ...Option) *Navigator {
	n := &Navigator{
		projects: projects,
		states:   states,
		maxDepth: DefaultMaxDepth,
		now:      time.Now,
		logger:   logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Tree builds the project tree from the task store.
func (n *Navigator) Tree(ctx context.Context) (*Tree, error) {
	projects, err := n.projects.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	return NewTree(projects, n.maxDepth), nil
}

// Current returns the session state, starting a session at the first
// top-level project when none is in progress.
func (n *Navigator) Current(ctx context.Context) (State, error) {
	state, fresh, err := n.load(ctx)
	if err != nil || !fresh {
		return state, err
	}
	if err := n.states.Save(state); err != nil {
		return State{}, err
	}
	n.logger.WithProject(state.Project).Info("refinement started")
	return state, nil
}

// load returns the stored state or, when no session is in progress, an
// unsaved state positioned at the first top-level project.
func (n *Navigator) load(ctx context.Context) (state State, fresh bool, err error) {
	state, err = n.states.Load()
	if err == nil {
		return state, false, nil
	}
	if !errors.Is(err, errors.ErrStateNotFound) {
		return State{}, false, err
	}

	tree, err := n.Tree(ctx)
	if err != nil {
		return State{}, false, err
	}
	first, err := tree.First()
	if err != nil {
		return State{}, false, err
	}
	project, err := tree.Decode(first)
	if err != nil {
		return State{}, false, err
	}
	return State{Start: n.now().Truncate(time.Minute), Project: project}, true, nil
}

// Jump makes path the current project.
func (n *Navigator) Jump(ctx context.Context, path string) (State, error) {
	tree, err := n.Tree(ctx)
	if err != nil {
		return State{}, err
	}
	if _, err := tree.Encode(path); err != nil {
		if s := tree.Suggest(path); s != "" {
			return State{}, errors.NewNotFoundError("project", path).
				WithCause(fmt.Errorf("did you mean %q?", s))
		}
		return State{}, err
	}

	state, err := n.states.Load()
	if err != nil && !errors.Is(err, errors.ErrStateNotFound) {
		return State{}, err
	}
	if err != nil {
		state = State{Start: n.now().Truncate(time.Minute)}
	}
	return n.save(state, path, "jump")
}

// Next moves forward along relation; RelationNone walks in pre-order.
func (n *Navigator) Next(ctx context.Context, relation Relation) (State, error) {
	return n.Move(ctx, relation, Forward)
}

// Prev moves backward along relation; RelationNone walks in pre-order.
func (n *Navigator) Prev(ctx context.Context, relation Relation) (State, error) {
	return n.Move(ctx, relation, Backward)
}

// Walk moves to the pre-order successor (Forward) or predecessor (Backward)
// of the current project.
func (n *Navigator) Walk(ctx context.Context, direction Direction) (State, error) {
	return n.Move(ctx, RelationNone, direction)
}

// Move applies one navigation step. On any error the stored state is left
// as it was; without a session in progress nothing is stored.
func (n *Navigator) Move(ctx context.Context, relation Relation, direction Direction) (State, error) {
	state, _, err := n.load(ctx)
	if err != nil {
		return State{}, err
	}
	tree, err := n.Tree(ctx)
	if err != nil {
		return State{}, err
	}
	pos, err := tree.Encode(state.Project)
	if err != nil {
		return State{}, err
	}

	var next Position
	if relation == RelationNone {
		next, err = tree.Walk(pos, direction)
	} else {
		next, err = tree.Move(pos, relation, direction)
	}
	if err != nil {
		n.logger.WithProject(state.Project).Debug("move rejected",
			"relation", string(relation), "direction", direction.String(), "error", err.Error())
		return State{}, err
	}

	path, err := tree.Decode(next)
	if err != nil {
		return State{}, err
	}
	return n.save(state, path, direction.String())
}

func (n *Navigator) save(state State, path, action string) (State, error) {
	from := state.Project
	state.Project = path
	if err := n.states.Save(state); err != nil {
		return State{}, err
	}
	n.logger.WithProject(path).Info("project changed", "action", action, "from", from)
	return state, nil
}

// End finishes the session by deleting its state.
func (n *Navigator) End() error {
	if err := n.states.Delete(); err != nil {
		return err
	}
	n.logger.Info("refinement ended")
	return nil
}

// Projects returns every project in navigation order.
func (n *Navigator) Projects(ctx context.Context) ([]string, error) {
	tree, err := n.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Paths(), nil
}

// IsComplete reports whether err is the forward parent OutOfRangeError that
// marks the end of a refinement session: there is no project left to visit.
func IsComplete(err error) bool {
	var oor *errors.OutOfRangeError
	return errors.As(err, &oor) &&
		oor.Relation == string(RelationParent) &&
		oor.Direction == int(Forward)
}
