// Package testutil provides testing utilities for taskban tests.
package testutil

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// Taskwarrior is a throwaway Taskwarrior database.
type Taskwarrior struct {
	// DataPath is the TASKDATA directory.
	DataPath string
	// TaskrcPath is the TASKRC file defining the taskban attributes.
	TaskrcPath string
}

// SetupTaskwarrior creates an empty Taskwarrior database with the ord, pm
// and est attributes declared. It is removed when the test completes.
func SetupTaskwarrior(t *testing.T) Taskwarrior {
	t.Helper()

	dir := t.TempDir()
	tw := Taskwarrior{
		DataPath:   filepath.Join(dir, "data"),
		TaskrcPath: filepath.Join(dir, "taskrc"),
	}
	if err := os.MkdirAll(tw.DataPath, 0755); err != nil {
		t.Fatalf("failed to create task data dir: %v", err)
	}

	rc := []string{
		"data.location=" + tw.DataPath,
		"confirmation=off",
		"verbose=nothing",
		"uda.ord.type=numeric",
		"uda.ord.label=Ord",
		"uda.pm.type=string",
		"uda.pm.label=Lane",
		"uda.est.type=numeric",
		"uda.est.label=Est",
	}
	if err := os.WriteFile(tw.TaskrcPath, []byte(strings.Join(rc, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("failed to write taskrc: %v", err)
	}
	return tw
}

// Run runs the task binary against tw and fails the test on error.
func (tw Taskwarrior) Run(t *testing.T, args ...string) string {
	t.Helper()

	cmd := exec.Command("task", args...)
	cmd.Env = append(os.Environ(), "TASKRC="+tw.TaskrcPath, "TASKDATA="+tw.DataPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("%v", &taskError{args: args, output: output, err: err})
	}
	return string(output)
}

// SkipIfNoTaskwarrior skips the test if the task binary is not installed.
func SkipIfNoTaskwarrior(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("task"); err != nil {
		t.Skip("task not found in PATH, skipping test")
	}
}

type taskError struct {
	args   []string
	output []byte
	err    error
}

func (e *taskError) Error() string {
	return fmt.Sprintf("task %s: %v\n%s", strings.Join(e.args, " "), e.err, e.output)
}

func (e *taskError) Unwrap() error {
	return e.err
}
