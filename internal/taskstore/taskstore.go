// Package taskstore defines the task model shared by the navigation and
// ordering engines and the interfaces their storage backends implement.
//
// Two backends live in sub-packages: warrior drives the Taskwarrior CLI and
// sqlite keeps a standalone board in a local database.
package taskstore

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Task statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusDeleted   = "deleted"
)

// Task is a unit of work as seen by taskban.
type Task struct {
	ID          int
	UUID        string
	Description string
	// Project is a dot-separated path such as "work.infra.dns".
	Project string
	// Lane is the Kanban state the task occupies (backlog, todo, doing...).
	Lane   string
	Status string
	// RankKey is the manually adjusted ordering key; nil means unset.
	RankKey *float64
	// Urgency is computed by the backend; higher means higher priority.
	Urgency  float64
	Estimate *float64
}

// RankKeyValue returns the rank key, treating unset as zero.
func (t Task) RankKeyValue() float64 {
	if t.RankKey == nil {
		return 0
	}
	return *t.RankKey
}

// Filter selects the tasks of one lane, optionally narrowed to a project.
// Only pending tasks are ever listed.
type Filter struct {
	// Lane restricts to one Kanban state; empty matches every lane.
	Lane string
	// Project restricts to a project and its sub-projects; empty matches all.
	Project string
}

// MatchesProject reports whether project equals p or is nested below it.
func (f Filter) MatchesProject(project string) bool {
	if f.Project == "" {
		return true
	}
	return project == f.Project || strings.HasPrefix(project, f.Project+".")
}

// NewTask holds the fields accepted when creating a task.
type NewTask struct {
	Description string
	Project     string
	Lane        string
	// BaseUrgency is only honored by backends that do not compute urgency
	// themselves.
	BaseUrgency float64
	Estimate    *float64
}

// Lister reads tasks.
type Lister interface {
	// ListTasks returns the pending tasks matching f sorted by descending
	// urgency.
	ListTasks(ctx context.Context, f Filter) ([]Task, error)
	// GetTask returns one task; a NotFoundError when the id is unknown.
	GetTask(ctx context.Context, id int) (Task, error)
}

// Ranker persists rank keys and the coefficient table that turns them into
// urgency.
type Ranker interface {
	SetRankKey(ctx context.Context, id int, value float64) error
	// RegisterCoefficient makes rank key value contribute value to urgency.
	RegisterCoefficient(ctx context.Context, value float64) error
}

// ProjectLister enumerates the distinct project names of pending tasks.
type ProjectLister interface {
	ListProjects(ctx context.Context) ([]string, error)
}

// Adder creates tasks.
type Adder interface {
	AddTask(ctx context.Context, t NewTask) (Task, error)
}

// Store is the full backend contract.
type Store interface {
	Lister
	Ranker
	ProjectLister
	Adder
	Close() error
}

// SortByUrgency orders tasks by descending urgency, breaking ties by
// ascending id so listings are deterministic.
func SortByUrgency(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		if c := cmp.Compare(b.Urgency, a.Urgency); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// IndexOf returns the position of task id in tasks, or -1.
func IndexOf(tasks []Task, id int) int {
	return slices.IndexFunc(tasks, func(t Task) bool { return t.ID == id })
}

// RoundRankKey rounds a rank key to the two decimals it is stored with.
func RoundRankKey(v float64) float64 {
	return math.Round(v*100) / 100
}

// CoefficientKeys returns the textual forms under which the coefficient of
// rank key v must be registered: the short decimal ("1.5") and the fixed
// six-decimal form ("1.500000"). Urgency lookups may use either.
func CoefficientKeys(v float64) []string {
	short := strconv.FormatFloat(v, 'f', -1, 64)
	fixed := fmt.Sprintf("%.6f", v)
	if short == fixed {
		return []string{short}
	}
	return []string{short, fixed}
}

// FormatRankKey renders a rank key the way it is written to the backend.
func FormatRankKey(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
