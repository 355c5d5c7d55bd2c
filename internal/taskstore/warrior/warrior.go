// Package warrior implements the task store on top of the Taskwarrior CLI.
//
// Every operation shells out to the task binary with TASKRC and TASKDATA set
// from configuration. Tasks are read with "export" and decoded from JSON; the
// rank key, lane and estimate live in user-defined attributes whose names are
// configurable. Urgency is computed by Taskwarrior itself, so registering a
// rank key coefficient writes an urgency.uda.<attr>.<value>.coefficient entry
// to the taskrc.
package warrior

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/taskban/taskban/internal/errors"
	"github.com/taskban/taskban/internal/taskstore"
)

// BackendName identifies this backend in errors and logs.
const BackendName = "taskwarrior"

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// Run executes name with args and extra environment entries, returning
	// standard output.
	Run(ctx context.Context, env []string, name string, args ...string) ([]byte, error)
}

// CLICommandExecutor executes commands using os/exec.
type CLICommandExecutor struct{}

// Run executes a command and returns its standard output. On failure the
// returned error is an *exec.ExitError carrying standard error.
func (CLICommandExecutor) Run(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	return cmd.Output()
}

// Attributes names the user-defined attributes taskban reads and writes.
type Attributes struct {
	Rank     string
	Lane     string
	Estimate string
}

// Options configures a Store.
type Options struct {
	Binary     string
	DataPath   string
	TaskrcPath string
	Attributes Attributes
	Executor   CommandExecutor
}

// Store drives the task binary.
type Store struct {
	binary   string
	env      []string
	attrs    Attributes
	executor CommandExecutor
}

// New creates a Store. Empty options fall back to the Taskwarrior defaults.
func New(opts Options) *Store {
	if opts.Binary == "" {
		opts.Binary = "task"
	}
	if opts.Attributes.Rank == "" {
		opts.Attributes.Rank = "ord"
	}
	if opts.Attributes.Lane == "" {
		opts.Attributes.Lane = "pm"
	}
	if opts.Attributes.Estimate == "" {
		opts.Attributes.Estimate = "est"
	}
	if opts.Executor == nil {
		opts.Executor = CLICommandExecutor{}
	}

	var env []string
	if opts.TaskrcPath != "" {
		env = append(env, "TASKRC="+opts.TaskrcPath)
	}
	if opts.DataPath != "" {
		env = append(env, "TASKDATA="+opts.DataPath)
	}

	return &Store{
		binary:   opts.Binary,
		env:      env,
		attrs:    opts.Attributes,
		executor: opts.Executor,
	}
}

// baseArgs silence confirmations and chatter so output is machine readable.
var baseArgs = []string{"rc.confirmation=off", "rc.verbose=nothing", "rc.json.array=on"}

func (s *Store) run(ctx context.Context, message string, args ...string) ([]byte, error) {
	full := append(append([]string{}, baseArgs...), args...)
	out, err := s.executor.Run(ctx, s.env, s.binary, full...)
	if err != nil {
		output := string(out)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			output = string(exitErr.Stderr)
		}
		return nil, errors.NewStoreError(message, err).
			WithBackend(BackendName).
			WithOutput(strings.TrimSpace(output))
	}
	return out, nil
}

// ListTasks exports the pending tasks matching f, sorted by urgency.
func (s *Store) ListTasks(ctx context.Context, f taskstore.Filter) ([]taskstore.Task, error) {
	args := []string{"status:pending"}
	if f.Lane != "" {
		args = append(args, s.attrs.Lane+":"+f.Lane)
	}
	if f.Project != "" {
		args = append(args, "project:"+f.Project)
	}
	args = append(args, "export")

	out, err := s.run(ctx, "failed to export tasks", args...)
	if err != nil {
		return nil, err
	}

	all, err := s.decode(out)
	if err != nil {
		return nil, err
	}

	// Taskwarrior attribute filters match prefixes; keep exact matches only.
	tasks := make([]taskstore.Task, 0, len(all))
	for _, t := range all {
		if f.Lane != "" && t.Lane != f.Lane {
			continue
		}
		if !f.MatchesProject(t.Project) {
			continue
		}
		tasks = append(tasks, t)
	}
	taskstore.SortByUrgency(tasks)
	return tasks, nil
}

// GetTask exports a single task by id.
func (s *Store) GetTask(ctx context.Context, id int) (taskstore.Task, error) {
	out, err := s.run(ctx, "failed to export task", strconv.Itoa(id), "export")
	if err != nil {
		return taskstore.Task{}, err
	}
	tasks, err := s.decode(out)
	if err != nil {
		return taskstore.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return taskstore.Task{}, errors.NewNotFoundError("task", strconv.Itoa(id))
}

// SetRankKey writes the rank attribute of task id.
func (s *Store) SetRankKey(ctx context.Context, id int, value float64) error {
	_, err := s.run(ctx, "failed to set rank key",
		strconv.Itoa(id), "modify", s.attrs.Rank+":"+taskstore.FormatRankKey(value))
	return err
}

// RegisterCoefficient writes the urgency coefficient for rank key value under
// each of its textual encodings.
func (s *Store) RegisterCoefficient(ctx context.Context, value float64) error {
	coefficient := taskstore.FormatRankKey(value)
	for _, key := range taskstore.CoefficientKeys(value) {
		name := fmt.Sprintf("urgency.uda.%s.%s.coefficient", s.attrs.Rank, key)
		if _, err := s.run(ctx, "failed to register urgency coefficient", "config", name, coefficient); err != nil {
			return err
		}
	}
	return nil
}

// ListProjects returns the distinct projects of pending tasks.
func (s *Store) ListProjects(ctx context.Context) ([]string, error) {
	out, err := s.run(ctx, "failed to list projects", "status:pending", "_unique", "project")
	if err != nil {
		return nil, err
	}

	var projects []string
	for _, line := range strings.Split(string(out), "\n") {
		if p := strings.TrimSpace(line); p != "" {
			projects = append(projects, p)
		}
	}
	sort.Strings(projects)
	return projects, nil
}

var createdRegex = regexp.MustCompile(`Created task (\d+)`)

// AddTask creates a task and reads it back.
func (s *Store) AddTask(ctx context.Context, nt taskstore.NewTask) (taskstore.Task, error) {
	if strings.TrimSpace(nt.Description) == "" {
		return taskstore.Task{}, errors.NewValidationError("task description must not be empty").
			WithField("description")
	}

	args := []string{"rc.verbose=new-id", "add", nt.Description}
	if nt.Project != "" {
		args = append(args, "project:"+nt.Project)
	}
	if nt.Lane != "" {
		args = append(args, s.attrs.Lane+":"+nt.Lane)
	}
	if nt.Estimate != nil {
		args = append(args, s.attrs.Estimate+":"+strconv.FormatFloat(*nt.Estimate, 'f', -1, 64))
	}

	out, err := s.run(ctx, "failed to add task", args...)
	if err != nil {
		return taskstore.Task{}, err
	}
	m := createdRegex.FindSubmatch(out)
	if m == nil {
		return taskstore.Task{}, errors.NewStoreError("unexpected output from task add", nil).
			WithBackend(BackendName).
			WithOutput(strings.TrimSpace(string(out)))
	}
	id, _ := strconv.Atoi(string(m[1]))
	return s.GetTask(ctx, id)
}

// Close is a no-op; the CLI holds no resources between calls.
func (s *Store) Close() error { return nil }

func (s *Store) decode(out []byte) ([]taskstore.Task, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, nil
	}

	var raw []map[string]any
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, errors.NewStoreError("failed to decode task export", err).
			WithBackend(BackendName)
	}

	tasks := make([]taskstore.Task, 0, len(raw))
	for _, r := range raw {
		t := taskstore.Task{
			ID:          intField(r, "id"),
			UUID:        stringField(r, "uuid"),
			Description: stringField(r, "description"),
			Project:     stringField(r, "project"),
			Status:      stringField(r, "status"),
			Lane:        stringField(r, s.attrs.Lane),
			RankKey:     floatField(r, s.attrs.Rank),
			Estimate:    floatField(r, s.attrs.Estimate),
		}
		if u := floatField(r, "urgency"); u != nil {
			t.Urgency = *u
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func stringField(r map[string]any, key string) string {
	s, _ := r[key].(string)
	return s
}

func intField(r map[string]any, key string) int {
	if f := floatField(r, key); f != nil {
		return int(*f)
	}
	return 0
}

// floatField reads a numeric attribute. Older Taskwarrior versions export
// numeric UDAs as strings.
func floatField(r map[string]any, key string) *float64 {
	switch v := r[key].(type) {
	case float64:
		return &v
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}
