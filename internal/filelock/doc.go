// Package filelock provides cross-process mutual exclusion for taskban's
// data files using advisory flock(2) locks.
//
// A lock is a sidecar file next to the data it protects. Holders take an
// exclusive lock for the whole read-modify-write of a state file, so two
// taskban processes started from different terminals never interleave their
// writes.
//
//	lock := filelock.New(filepath.Join(dir, "refine.lock"))
//	if err := lock.Lock(); err != nil {
//	    return err
//	}
//	defer func() { _ = lock.Unlock() }()
package filelock
