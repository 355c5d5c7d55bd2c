package refine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/taskban/taskban/internal/errors"
)

func TestFileStateStore_SaveLoad(t *testing.T) {
	store := NewFileStateStore(filepath.Join(t.TempDir(), "data"))
	start := time.Date(2026, 5, 4, 9, 41, 37, 0, time.Local)

	if err := store.Save(State{Start: start, Project: "work.infra"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Project != "work.infra" {
		t.Errorf("Project = %q, want work.infra", got.Project)
	}
	// Timestamps are kept at minute resolution.
	if !got.Start.Equal(start.Truncate(time.Minute)) {
		t.Errorf("Start = %v, want %v", got.Start, start.Truncate(time.Minute))
	}
}

func TestFileStateStore_FileFormat(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStateStore(dir)
	start := time.Date(2026, 5, 4, 9, 41, 0, 0, time.Local)

	if err := store.Save(State{Start: start, Project: "home"}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, StateFileName))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("state file has %d lines, want 2:\n%s", len(lines), data)
	}
	if v := strings.Trim(strings.TrimPrefix(lines[0], "start: "), `"'`); v != "2026-05-04T09:41" {
		t.Errorf("line 1 = %q", lines[0])
	}
	if lines[1] != "project: home" {
		t.Errorf("line 2 = %q", lines[1])
	}
}

func TestFileStateStore_LoadMissing(t *testing.T) {
	store := NewFileStateStore(t.TempDir())

	_, err := store.Load()
	if !errors.Is(err, errors.ErrStateNotFound) {
		t.Errorf("Load() error = %v, want ErrStateNotFound", err)
	}
}

func TestFileStateStore_LoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not yaml", "start: [unterminated"},
		{"missing project", "start: 2026-05-04T09:41\n"},
		{"bad start", "start: yesterday\nproject: home\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, StateFileName), []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := NewFileStateStore(dir).Load()
			if !errors.Is(err, errors.ErrConfigInvalid) {
				t.Errorf("Load() error = %v, want ErrConfigInvalid", err)
			}
		})
	}
}

func TestFileStateStore_Delete(t *testing.T) {
	store := NewFileStateStore(t.TempDir())

	if err := store.Delete(); err != nil {
		t.Errorf("Delete() without state error = %v", err)
	}

	if err := store.Save(State{Start: time.Now(), Project: "home"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Errorf("state file still exists after Delete(): %v", err)
	}
}
