package refine

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/taskban/taskban/internal/errors"
	"github.com/taskban/taskban/internal/filelock"
)

// StateFileName is the refinement state file kept in the data directory.
const StateFileName = "refine.yaml"

const lockFileName = "refine.lock"

// TimeLayout is the minute-resolution timestamp format of the state file.
const TimeLayout = "2006-01-02T15:04"

// State is the progress of a refinement session.
type State struct {
	Start   time.Time
	Project string
}

// StateStore persists the single refinement state record.
type StateStore interface {
	// Load returns a NotFoundError when no session is in progress.
	Load() (State, error)
	Save(State) error
	Delete() error
}

// stateDocument is the on-disk shape: two scalar keys, one per line.
type stateDocument struct {
	Start   string `yaml:"start"`
	Project string `yaml:"project"`
}

// FileStateStore keeps the state as YAML in a directory, guarded by a flock
// sidecar and replaced atomically on every write.
type FileStateStore struct {
	dir string
}

// NewFileStateStore creates a store rooted at dir.
func NewFileStateStore(dir string) *FileStateStore {
	return &FileStateStore{dir: dir}
}

// Path returns the state file path.
func (s *FileStateStore) Path() string {
	return filepath.Join(s.dir, StateFileName)
}

func (s *FileStateStore) lock() (*filelock.FileLock, error) {
	fl := filelock.New(filepath.Join(s.dir, lockFileName))
	if err := fl.Lock(); err != nil {
		return nil, errors.Wrap(err, "acquire refinement state lock")
	}
	return fl, nil
}

// Load reads the state file.
func (s *FileStateStore) Load() (State, error) {
	fl, err := s.lock()
	if err != nil {
		return State{}, err
	}
	defer func() { _ = fl.Unlock() }()

	data, err := os.ReadFile(s.Path())
	if os.IsNotExist(err) {
		return State{}, errors.NewNotFoundError("refinement state", s.Path())
	}
	if err != nil {
		return State{}, errors.Wrap(err, "read refinement state")
	}

	var doc stateDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return State{}, errors.NewConfigError("malformed refinement state", err).WithPath(s.Path())
	}
	if strings.TrimSpace(doc.Project) == "" {
		return State{}, errors.NewConfigError("refinement state has no project", nil).
			WithPath(s.Path()).
			WithKey("project")
	}
	start, err := time.ParseInLocation(TimeLayout, doc.Start, time.Local)
	if err != nil {
		return State{}, errors.NewConfigError("malformed refinement start time", err).
			WithPath(s.Path()).
			WithKey("start")
	}
	return State{Start: start, Project: doc.Project}, nil
}

// Save replaces the state file.
func (s *FileStateStore) Save(state State) error {
	fl, err := s.lock()
	if err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	data, err := yaml.Marshal(stateDocument{
		Start:   state.Start.In(time.Local).Format(TimeLayout),
		Project: state.Project,
	})
	if err != nil {
		return errors.Wrap(err, "marshal refinement state")
	}
	if err := filelock.WriteFileAtomic(s.Path(), data, 0o644); err != nil {
		return errors.Wrap(err, "write refinement state")
	}
	return nil
}

// Delete removes the state file. Deleting a missing state is not an error.
func (s *FileStateStore) Delete() error {
	fl, err := s.lock()
	if err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "delete refinement state")
	}
	return nil
}
