// Package backlog implements manual backlog ordering on top of an externally
// computed urgency ranking.
//
// Each task carries a rank key whose registered coefficient is added to its
// urgency. Moving a task up or down rewrites only rank keys, choosing values
// that place the task strictly between its new neighbours so the urgency
// order stays total.
package backlog

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/taskban/taskban/internal/errors"
	"github.com/taskban/taskban/internal/logging"
	"github.com/taskban/taskban/internal/taskstore"
)

// DefaultMinimumStep is the default smallest rank key change a move makes.
const DefaultMinimumStep = 0.1

// MinimumStepFloor is the rank key resolution; steps below it would be
// rounded away.
const MinimumStepFloor = 0.01

// Direction is Up (+1, toward higher urgency) or Down (-1).
type Direction int

const (
	Up   Direction = 1
	Down Direction = -1
)

// String returns "up" or "down".
func (d Direction) String() string {
	if d < 0 {
		return "down"
	}
	return "up"
}

// ParseDirection parses "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	default:
		return 0, errors.NewValidationError("direction must be up or down").
			WithField("direction").
			WithValue(s)
	}
}

// Store is the part of the task store the engine needs.
type Store interface {
	taskstore.Lister
	taskstore.Ranker
}

// Engine reorders tasks within a lane.
type Engine struct {
	store       Store
	minimumStep float64
	logger      *logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMinimumStep sets the resolution floor of moves.
func WithMinimumStep(step float64) Option {
	return func(e *Engine) { e.minimumStep = step }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine.
func New(store Store, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:       store,
		minimumStep: DefaultMinimumStep,
		logger:      logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.minimumStep < MinimumStepFloor {
		return nil, errors.NewValidationError(fmt.Sprintf("minimum step must be at least %g", MinimumStepFloor)).
			WithField("minimum_step").
			WithValue(e.minimumStep)
	}
	return e, nil
}

// MinimumStep returns the configured resolution floor.
func (e *Engine) MinimumStep() float64 {
	return e.minimumStep
}

// Result describes the outcome of a move.
type Result struct {
	TaskID int
	// Moved is false when the task was already at the extreme of the list.
	Moved bool
	// From and To are the 0-based positions in the urgency-sorted list.
	From, To int
	// RankKey is the task's rank key after the move.
	RankKey float64
}

// MoveUp moves task id one slot toward higher urgency among the tasks of f.
func (e *Engine) MoveUp(ctx context.Context, f taskstore.Filter, id int) (Result, error) {
	return e.Move(ctx, f, id, Up)
}

// MoveDown moves task id one slot toward lower urgency among the tasks of f.
func (e *Engine) MoveDown(ctx context.Context, f taskstore.Filter, id int) (Result, error) {
	return e.Move(ctx, f, id, Down)
}

// Move swaps task id with its neighbour in direction d by giving it a rank
// key that lands its urgency strictly between that neighbour and the task
// beyond it. When that gap is narrower than the minimum step, the task
// beyond is pushed outward first to make room.
func (e *Engine) Move(ctx context.Context, f taskstore.Filter, id int, d Direction) (Result, error) {
	if d != Up && d != Down {
		return Result{}, errors.NewValidationError("invalid direction").WithField("direction").WithValue(int(d))
	}

	tasks, err := e.store.ListTasks(ctx, f)
	if err != nil {
		return Result{}, err
	}
	i := taskstore.IndexOf(tasks, id)
	if i < 0 {
		cause := fmt.Errorf("not among the pending tasks of lane %q", f.Lane)
		if f.Project != "" {
			cause = fmt.Errorf("not among the pending tasks of lane %q in project %q", f.Lane, f.Project)
		}
		return Result{}, errors.NewNotFoundError("task", strconv.Itoa(id)).WithCause(cause)
	}

	logger := e.logger.WithTask(id).With("direction", d.String())
	step := int(d)
	result := Result{TaskID: id, From: i, To: i, RankKey: tasks[i].RankKeyValue()}

	targetIdx := i - step
	if targetIdx < 0 || targetIdx >= len(tasks) {
		logger.Debug("task already at the edge of the list", "position", i)
		return result, nil
	}

	target := tasks[targetIdx]
	gap := target.Urgency - tasks[i].Urgency
	dir := float64(d)

	var offset float64
	beyondIdx := i - 2*step
	if beyondIdx < 0 || beyondIdx >= len(tasks) {
		offset = gap / 2
		if math.Abs(offset) < e.minimumStep {
			offset = dir * e.minimumStep
		}
	} else {
		offset = (tasks[beyondIdx].Urgency - target.Urgency) / 2
		if math.Abs(offset) < e.minimumStep {
			if err := e.makeRoom(ctx, tasks, beyondIdx, d, 2*e.minimumStep); err != nil {
				return Result{}, err
			}
			offset = dir * e.minimumStep
		}
	}

	key, err := e.IncreaseRankKey(ctx, id, gap+offset)
	if err != nil {
		return Result{}, err
	}
	logger.Info("task moved", "from", i, "to", targetIdx, "rank_key", key)

	result.Moved = true
	result.To = targetIdx
	result.RankKey = key
	return result, nil
}

// makeRoom pushes tasks[j] outward (in direction d) by amount. A neighbour
// further out that the push would come within the minimum step of is pushed
// first, recursively, so no untouched pair changes order.
func (e *Engine) makeRoom(ctx context.Context, tasks []taskstore.Task, j int, d Direction, amount float64) error {
	step := int(d)
	dir := float64(d)

	if outer := j - step; outer >= 0 && outer < len(tasks) {
		distance := dir * (tasks[outer].Urgency - tasks[j].Urgency)
		if distance-amount < e.minimumStep {
			if err := e.makeRoom(ctx, tasks, outer, d, amount); err != nil {
				return err
			}
		}
	}

	before := tasks[j].RankKeyValue()
	key, err := e.IncreaseRankKey(ctx, tasks[j].ID, dir*amount)
	if err != nil {
		return err
	}
	tasks[j].RankKey = &key
	tasks[j].Urgency += key - before

	e.logger.WithTask(tasks[j].ID).Debug("pushed to make room", "rank_key", key)
	return nil
}

// IncreaseRankKey adds delta to the rank key of task id (unset counts as 0),
// rounds the result to two decimals, registers its urgency coefficient and
// stores it. It returns the new key.
func (e *Engine) IncreaseRankKey(ctx context.Context, id int, delta float64) (float64, error) {
	task, err := e.store.GetTask(ctx, id)
	if err != nil {
		return 0, err
	}
	key := taskstore.RoundRankKey(task.RankKeyValue() + delta)

	if err := e.store.RegisterCoefficient(ctx, key); err != nil {
		return 0, err
	}
	if err := e.store.SetRankKey(ctx, id, key); err != nil {
		return 0, err
	}
	return key, nil
}
