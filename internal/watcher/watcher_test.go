package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpCreate, "CREATE"},
		{OpCreate | OpWrite, "CREATE|WRITE"},
		{OpRemove, "REMOVE"},
		{0, "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestWatchErrors(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	dir := t.TempDir()
	if err := w.Watch(filepath.Join(dir, "missing")); !errors.Is(err, ErrPathNotExist) {
		t.Errorf("Watch(missing) = %v, want ErrPathNotExist", err)
	}
	if err := w.Watch(dir); err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(dir); !errors.Is(err, ErrAlreadyWatching) {
		t.Errorf("second Watch = %v, want ErrAlreadyWatching", err)
	}
	if !w.IsWatching(dir) {
		t.Error("IsWatching = false")
	}
}

func TestWatchCoalescesPluginChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := New(WithDebounce(100 * time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(dir); err != nil {
		t.Fatal(err)
	}

	// Ignored extension.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "a.plugin")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("<Plugin/>"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	ev := waitEvent(t, w)
	if filepath.Base(ev.Path) != "a.plugin" {
		t.Errorf("event path = %s", ev.Path)
	}
	if !ev.Op.Has(OpCreate) {
		t.Errorf("event op = %s, want CREATE", ev.Op)
	}
	if !ev.Exists() {
		t.Error("Exists = false")
	}

	select {
	case extra := <-w.Events():
		t.Errorf("unexpected event %s %s", extra.Path, extra.Op)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchRecursiveNewDirectory(t *testing.T) {
	dir := t.TempDir()
	w, err := New(WithDebounce(50 * time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.WatchRecursive(dir); err != nil {
		t.Fatal(err)
	}

	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for !w.IsWatching(sub) {
		if time.Now().After(deadline) {
			t.Fatal("new subdirectory not watched")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := os.WriteFile(filepath.Join(sub, "b.plugin"), []byte("<Plugin/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	ev := waitEvent(t, w)
	if filepath.Base(ev.Path) != "b.plugin" {
		t.Errorf("event path = %s", ev.Path)
	}
}

func TestClose(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := w.Watch(t.TempDir()); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Watch after Close = %v, want ErrWatcherClosed", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("Events channel still open")
	}
}
