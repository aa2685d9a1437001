package lock

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/mcbuilder/pkg/errors"
)

func TestAcquireRelease(t *testing.T) {
	dir := t.TempDir()

	l, err := Acquire(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if l.Path() != filepath.Join(dir, FileName) {
		t.Errorf("Path() = %q", l.Path())
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}

	again, err := Acquire(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Acquire() after Release() error: %v", err)
	}
	again.Release()
}

func TestAcquire_Contended(t *testing.T) {
	dir := t.TempDir()

	held, err := Acquire(context.Background(), dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer held.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var waited atomic.Bool
	_, err = Acquire(ctx, dir, func() { waited.Store(true) })
	if !errors.Is(err, errors.ErrCodeLockTimeout) {
		t.Errorf("Acquire() error = %v, want LOCK_TIMEOUT", err)
	}
	if !waited.Load() {
		t.Error("onWait was not called")
	}
}

func TestAcquire_WaitsForRelease(t *testing.T) {
	dir := t.TempDir()

	held, err := Acquire(context.Background(), dir, nil)
	if err != nil {
		t.Fatal(err)
	}

	go func() {
		time.Sleep(300 * time.Millisecond)
		held.Release()
	}()

	start := time.Now()
	l, err := Acquire(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	defer l.Release()

	if time.Since(start) < 200*time.Millisecond {
		t.Error("Acquire() returned before the holder released")
	}
}
