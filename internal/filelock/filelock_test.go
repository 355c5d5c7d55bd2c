package filelock

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileLock_LockUnlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.lock")
	fl := New(path)

	if err := fl.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("lock file not created: %v", err)
	}
	if err := fl.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if err := fl.Unlock(); err != nil {
		t.Errorf("second Unlock() error = %v", err)
	}
}

func TestFileLock_Contended(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.lock")
	holder := New(path)
	if err := holder.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	// flock locks belong to the open file description, so a second open
	// contends even within one process.
	other := New(path)
	acquired := make(chan error, 1)
	go func() { acquired <- other.Lock() }()

	select {
	case err := <-acquired:
		t.Fatalf("Lock() returned while lock was held: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	if err := holder.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	select {
	case err := <-acquired:
		if err != nil {
			t.Fatalf("Lock() after release error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Lock() did not return after release")
	}
	_ = other.Unlock()
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dir", "state.yaml")

	if err := WriteFileAtomic(path, []byte("one"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}
	if err := WriteFileAtomic(path, []byte("two"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "two" {
		t.Errorf("content = %q, want %q", data, "two")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}
