package refine

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/taskban/taskban/internal/errors"
)

// fakeProjects is a test double for taskstore.ProjectLister.
type fakeProjects struct {
	projects []string
	err      error
}

func (f *fakeProjects) ListProjects(context.Context) ([]string, error) {
	return f.projects, f.err
}

var testStart = time.Date(2026, 1, 12, 8, 30, 45, 0, time.Local)

func newTestNavigator(t *testing.T, projects ...string) (*Navigator, *FileStateStore, *fakeProjects) {
	t.Helper()
	source := &fakeProjects{projects: projects}
	states := NewFileStateStore(t.TempDir())
	nav := NewNavigator(source, states, WithClock(func() time.Time { return testStart }))
	return nav, states, source
}

func readStateFile(t *testing.T, states *FileStateStore) string {
	t.Helper()
	data, err := os.ReadFile(states.Path())
	if err != nil {
		t.Fatalf("read state file: %v", err)
	}
	return string(data)
}

func TestNavigator_CurrentStartsAtFirstProject(t *testing.T) {
	nav, states, _ := newTestNavigator(t, "work", "home.garden", "errands")

	state, err := nav.Current(context.Background())
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if state.Project != "errands" {
		t.Errorf("Project = %q, want errands", state.Project)
	}
	if !state.Start.Equal(testStart.Truncate(time.Minute)) {
		t.Errorf("Start = %v", state.Start)
	}

	saved, err := states.Load()
	if err != nil {
		t.Fatalf("state not persisted: %v", err)
	}
	if saved.Project != "errands" {
		t.Errorf("persisted project = %q", saved.Project)
	}
}

func TestNavigator_CurrentWithoutProjects(t *testing.T) {
	nav, _, _ := newTestNavigator(t)

	if _, err := nav.Current(context.Background()); !errors.Is(err, errors.ErrNoProjects) {
		t.Errorf("Current() error = %v, want ErrNoProjects", err)
	}
}

func TestNavigator_CurrentPropagatesStoreErrors(t *testing.T) {
	nav, _, source := newTestNavigator(t, "a")
	source.err = errors.NewStoreError("export failed", nil)

	if _, err := nav.Current(context.Background()); !errors.Is(err, &errors.StoreError{}) {
		t.Errorf("Current() error = %v, want StoreError", err)
	}
}

func TestNavigator_TwoProjectTree(t *testing.T) {
	ctx := context.Background()

	t.Run("next sibling from first yields second", func(t *testing.T) {
		nav, _, _ := newTestNavigator(t, "a.x", "a.y", "b")
		state, err := nav.Next(ctx, RelationSibling)
		if err != nil {
			t.Fatal(err)
		}
		if state.Project != "b" {
			t.Errorf("Project = %q, want b", state.Project)
		}
	})

	t.Run("next child from first yields its first sub-project", func(t *testing.T) {
		nav, _, _ := newTestNavigator(t, "a.x", "a.y", "b")
		state, err := nav.Next(ctx, RelationChild)
		if err != nil {
			t.Fatal(err)
		}
		if state.Project != "a.x" {
			t.Errorf("Project = %q, want a.x", state.Project)
		}
	})

	t.Run("next parent from a sub-project yields the next top level", func(t *testing.T) {
		nav, _, _ := newTestNavigator(t, "a.x", "a.y", "b")
		if _, err := nav.Jump(ctx, "a.y"); err != nil {
			t.Fatal(err)
		}
		state, err := nav.Next(ctx, RelationParent)
		if err != nil {
			t.Fatal(err)
		}
		if state.Project != "b" {
			t.Errorf("Project = %q, want b", state.Project)
		}
	})
}

func TestNavigator_FailedMoveLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	nav, states, _ := newTestNavigator(t, "a.x", "b")
	if _, err := nav.Jump(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	before := readStateFile(t, states)

	_, err := nav.Next(ctx, RelationChild)
	var oor *errors.OutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("Next(child) error = %v, want OutOfRangeError", err)
	}
	if IsComplete(err) {
		t.Error("child OutOfRange must not count as completion")
	}
	if after := readStateFile(t, states); after != before {
		t.Errorf("state changed on failure:\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestNavigator_FailedMoveWithoutSessionCreatesNoState(t *testing.T) {
	ctx := context.Background()
	nav, states, _ := newTestNavigator(t, "a", "b")

	_, err := nav.Next(ctx, RelationChild)
	var oor *errors.OutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("Next(child) error = %v, want OutOfRangeError", err)
	}
	if got, want := err.Error(), `no next child of project "a"`; got != want {
		t.Errorf("Next(child) error = %q, want %q", got, want)
	}
	if _, err := os.Stat(states.Path()); !os.IsNotExist(err) {
		t.Error("failed move must not create state")
	}

	state, err := nav.Next(ctx, RelationSibling)
	if err != nil {
		t.Fatal(err)
	}
	if state.Project != "b" {
		t.Errorf("Project = %q, want b", state.Project)
	}
	if saved, err := states.Load(); err != nil || saved.Project != "b" {
		t.Errorf("persisted state = %+v, %v; want project b", saved, err)
	}
}

func TestNavigator_WalkToCompletion(t *testing.T) {
	ctx := context.Background()
	nav, states, _ := newTestNavigator(t, "a.x", "a.y", "b")

	var visited []string
	state, err := nav.Current(ctx)
	if err != nil {
		t.Fatal(err)
	}
	visited = append(visited, state.Project)
	for {
		state, err = nav.Walk(ctx, Forward)
		if IsComplete(err) {
			break
		}
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		visited = append(visited, state.Project)
	}

	if got := strings.Join(visited, " "); got != "a a.x a.y b" {
		t.Errorf("visited = %q", got)
	}

	// The last project stays current until the caller ends the session.
	if saved, _ := states.Load(); saved.Project != "b" {
		t.Errorf("persisted project = %q, want b", saved.Project)
	}
	if err := nav.End(); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if _, err := states.Load(); !errors.Is(err, errors.ErrStateNotFound) {
		t.Errorf("state after End() = %v, want ErrStateNotFound", err)
	}
}

func TestNavigator_Prev(t *testing.T) {
	ctx := context.Background()
	nav, _, _ := newTestNavigator(t, "a.x", "a.y", "b")
	if _, err := nav.Jump(ctx, "b"); err != nil {
		t.Fatal(err)
	}

	state, err := nav.Prev(ctx, RelationChild)
	if err != nil {
		t.Fatal(err)
	}
	if state.Project != "a.y" {
		t.Errorf("Prev(child) = %q, want a.y", state.Project)
	}

	state, err = nav.Prev(ctx, RelationNone)
	if err != nil {
		t.Fatal(err)
	}
	if state.Project != "a.x" {
		t.Errorf("Prev() = %q, want a.x", state.Project)
	}
}

func TestNavigator_Jump(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps the session start", func(t *testing.T) {
		nav, _, _ := newTestNavigator(t, "a", "b.c")
		first, err := nav.Current(ctx)
		if err != nil {
			t.Fatal(err)
		}
		nav.now = func() time.Time { return testStart.Add(time.Hour) }

		state, err := nav.Jump(ctx, "b.c")
		if err != nil {
			t.Fatal(err)
		}
		if state.Project != "b.c" || !state.Start.Equal(first.Start) {
			t.Errorf("Jump() = %+v, want project b.c and start %v", state, first.Start)
		}
	})

	t.Run("unknown project suggests the closest", func(t *testing.T) {
		nav, states, _ := newTestNavigator(t, "work.infra", "home")

		_, err := nav.Jump(ctx, "work.infr")
		if !errors.Is(err, errors.ErrProjectNotFound) {
			t.Fatalf("Jump() error = %v, want ErrProjectNotFound", err)
		}
		if !strings.Contains(err.Error(), `did you mean "work.infra"?`) {
			t.Errorf("Jump() error = %q, want suggestion", err.Error())
		}
		if _, err := os.Stat(states.Path()); !os.IsNotExist(err) {
			t.Error("failed jump must not create state")
		}
	})
}

func TestNavigator_CurrentProjectVanished(t *testing.T) {
	ctx := context.Background()
	nav, _, source := newTestNavigator(t, "a", "b")
	if _, err := nav.Jump(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	source.projects = []string{"a"}

	if _, err := nav.Next(ctx, RelationSibling); !errors.Is(err, errors.ErrProjectNotFound) {
		t.Errorf("Next() error = %v, want ErrProjectNotFound", err)
	}
}

func TestNavigator_MaxDepth(t *testing.T) {
	source := &fakeProjects{projects: []string{"a.b.c"}}
	nav := NewNavigator(source, NewFileStateStore(t.TempDir()), WithMaxDepth(2))

	projects, err := nav.Projects(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(projects, ","); got != "a,a.b" {
		t.Errorf("Projects() = %q, want a,a.b", got)
	}
}

func TestParseRelation(t *testing.T) {
	tests := []struct {
		in      string
		want    Relation
		wantErr bool
	}{
		{"", RelationNone, false},
		{"child", RelationChild, false},
		{"Sibling", RelationSibling, false},
		{" parent ", RelationParent, false},
		{"cousin", RelationNone, true},
	}

	for _, tt := range tests {
		got, err := ParseRelation(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRelation(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseRelation(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
