package backend

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case evt := <-w.Events():
		return evt
	case <-time.After(3 * time.Second):
		t.Fatalf("expected a watcher event")
		return Event{}
	}
}

func TestWatcherReportsDirectoryRoot(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "pkg")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher([]string{dir}, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() {
		w.Stop()
		w.Wait()
	}()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(sub, "a.go"), []byte("package pkg\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	evt := waitEvent(t, w)
	if evt.Kind != KindChanged {
		t.Fatalf("expected KindChanged, got %v (%v)", evt.Kind, evt.Err)
	}
	want, _ := filepath.Abs(dir)
	if evt.Path != want {
		t.Fatalf("expected root %s, got %s", want, evt.Path)
	}
}

func TestWatcherFiltersSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "shop.db")
	if err := os.WriteFile(db, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher([]string{db, "example.com/not/a/path"}, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() {
		w.Stop()
		w.Wait()
	}()
	if len(w.Roots()) != 1 {
		t.Fatalf("expected only the file root, got %v", w.Roots())
	}

	if err := os.WriteFile(filepath.Join(dir, "shop.db-journal"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(db, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	evt := waitEvent(t, w)
	if evt.Path != w.Roots()[0] {
		t.Fatalf("expected %s, got %s", w.Roots()[0], evt.Path)
	}
	select {
	case extra := <-w.Events():
		t.Fatalf("expected a single coalesced event, got %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcherStopClosesEvents(t *testing.T) {
	w, err := NewWatcher([]string{t.TempDir()}, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.Stop()
	w.Wait()
	select {
	case _, ok := <-w.Events():
		if ok {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatalf("expected events channel to close")
	}
}

func TestWatcherAddWhileRunning(t *testing.T) {
	w, err := NewWatcher(nil, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() {
		w.Stop()
		w.Wait()
	}()

	dir := t.TempDir()
	if err := w.Add(dir); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if err := w.Add(dir); err != nil {
		t.Fatalf("unexpected error re-adding: %v", err)
	}
	if got := len(w.Roots()); got != 1 {
		t.Fatalf("expected one root after duplicate add, got %d", got)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	evt := waitEvent(t, w)
	want, _ := filepath.Abs(dir)
	if evt.Kind != KindChanged || evt.Path != want {
		t.Fatalf("expected change for %s, got %#v", want, evt)
	}
}

func TestWatcherTreatsWALAsDatabase(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "shop.db")
	if err := os.WriteFile(db, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher([]string{db}, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() {
		w.Stop()
		w.Wait()
	}()

	if err := os.WriteFile(db+"-wal", []byte("frame"), 0o644); err != nil {
		t.Fatal(err)
	}
	evt := waitEvent(t, w)
	if evt.Kind != KindChanged || evt.Path != w.Roots()[0] {
		t.Fatalf("expected a change for %s, got %#v", w.Roots()[0], evt)
	}
}

func TestWatcherFollowsNewSubdirectories(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher([]string{dir}, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() {
		w.Stop()
		w.Wait()
	}()

	sub := filepath.Join(dir, "newpkg")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// the mkdir itself is a change to the root
	if evt := waitEvent(t, w); evt.Kind != KindChanged {
		t.Fatalf("expected KindChanged for the new directory, got %#v", evt)
	}

	if err := os.WriteFile(filepath.Join(sub, "a.go"), []byte("package newpkg\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	evt := waitEvent(t, w)
	want, _ := filepath.Abs(dir)
	if evt.Kind != KindChanged || evt.Path != want {
		t.Fatalf("expected a change inside the new directory to reach %s, got %#v", want, evt)
	}
}
