package autosave

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// recorder is a SaveFunc that records calls and can be made to fail or
// block.
type recorder struct {
	mu      sync.Mutex
	calls   []Snapshot
	fail    atomic.Bool
	release chan struct{}
}

func (r *recorder) save(_ context.Context, _ int64, title, content string) error {
	if r.release != nil {
		<-r.release
	}
	if r.fail.Load() {
		return errors.New("disk full")
	}
	r.mu.Lock()
	r.calls = append(r.calls, Snapshot{Title: title, Content: content})
	r.mu.Unlock()
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recorder) last() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Snapshot{}
	}
	return r.calls[len(r.calls)-1]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition never met")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStartsClean(t *testing.T) {
	rec := &recorder{}
	c := New(1, Snapshot{Title: "a", Content: "b"}, rec.save)
	defer c.Close()

	if c.State() != StateClean {
		t.Errorf("state = %v, want clean", c.State())
	}
	if c.Dirty() {
		t.Error("fresh controller reports dirty")
	}
}

func TestEditMakesDirtyThenDebounceSaves(t *testing.T) {
	rec := &recorder{}
	c := New(1, Snapshot{Title: "a", Content: "old"}, rec.save, WithDelay(30*time.Millisecond))
	defer c.Close()

	c.SetContent("new")
	if c.State() != StateDirty {
		t.Fatalf("state after edit = %v, want dirty", c.State())
	}

	waitFor(t, func() bool { return c.State() == StateClean })
	if rec.count() != 1 {
		t.Errorf("saves = %d, want 1", rec.count())
	}
	if got := rec.last(); got.Content != "new" {
		t.Errorf("saved content = %q, want new", got.Content)
	}
}

func TestRevertingEditReturnsClean(t *testing.T) {
	rec := &recorder{}
	c := New(1, Snapshot{Title: "a", Content: "old"}, rec.save, WithDelay(30*time.Millisecond))
	defer c.Close()

	c.SetContent("new")
	c.SetContent("old") // back to the snapshot by value

	if c.State() != StateClean {
		t.Errorf("state = %v, want clean after revert", c.State())
	}
	time.Sleep(80 * time.Millisecond)
	if rec.count() != 0 {
		t.Errorf("saves = %d, want 0 (nothing actually changed)", rec.count())
	}
}

func TestDebounceRestartsOnEveryEdit(t *testing.T) {
	rec := &recorder{}
	c := New(1, Snapshot{}, rec.save, WithDelay(60*time.Millisecond))
	defer c.Close()

	// Keep typing faster than the delay; no save may fire mid-burst.
	for i := 0; i < 5; i++ {
		c.SetContent(string(rune('a' + i)))
		time.Sleep(20 * time.Millisecond)
	}
	if rec.count() != 0 {
		t.Fatalf("saves during burst = %d, want 0", rec.count())
	}

	waitFor(t, func() bool { return rec.count() == 1 })
	if got := rec.last(); got.Content != "e" {
		t.Errorf("saved content = %q, want final edit", got.Content)
	}
}

func TestSaveNow(t *testing.T) {
	rec := &recorder{}
	c := New(1, Snapshot{}, rec.save, WithDelay(time.Hour))
	defer c.Close()

	c.Update("t", "c")
	c.SaveNow()

	waitFor(t, func() bool { return rec.count() == 1 })
	if got := rec.last(); got.Title != "t" || got.Content != "c" {
		t.Errorf("saved = %+v", got)
	}
}

func TestSaveNowCleanIsNoop(t *testing.T) {
	rec := &recorder{}
	c := New(1, Snapshot{Title: "t"}, rec.save, WithDelay(time.Hour))
	defer c.Close()

	c.SaveNow()
	time.Sleep(50 * time.Millisecond)
	if rec.count() != 0 {
		t.Errorf("saves = %d, want 0 for a clean controller", rec.count())
	}
}

func TestSingleSaveInFlight(t *testing.T) {
	rec := &recorder{release: make(chan struct{})}
	c := New(1, Snapshot{}, rec.save, WithDelay(10*time.Millisecond))
	defer c.Close()

	c.SetContent("v1")
	waitFor(t, func() bool { return c.State() == StateSaving })

	// Requests while a save is in flight are dropped, not queued.
	c.SaveNow()
	c.SaveNow()

	close(rec.release)
	waitFor(t, func() bool { return rec.count() >= 1 })
	time.Sleep(50 * time.Millisecond)
	if rec.count() != 1 {
		t.Errorf("saves = %d, want 1", rec.count())
	}
}

func TestEditsDuringFlightStayDirty(t *testing.T) {
	rec := &recorder{release: make(chan struct{})}
	c := New(1, Snapshot{}, rec.save, WithDelay(10*time.Millisecond))
	defer c.Close()

	c.SetContent("v1")
	waitFor(t, func() bool { return c.State() == StateSaving })

	c.SetContent("v2") // arrives mid-flight

	close(rec.release)
	// The flight lands with v1; the controller must notice v2 is unsaved
	// and debounce a second save.
	waitFor(t, func() bool { return rec.count() == 2 })
	if got := rec.last(); got.Content != "v2" {
		t.Errorf("final saved content = %q, want v2", got.Content)
	}
	waitFor(t, func() bool { return c.State() == StateClean })
}

func TestSaveFailureKeepsSnapshotAndRetries(t *testing.T) {
	rec := &recorder{}
	rec.fail.Store(true)

	var errCount atomic.Int64
	c := New(1, Snapshot{Content: "persisted"}, rec.save,
		WithDelay(20*time.Millisecond),
		WithOnError(func(error) { errCount.Add(1) }))
	defer c.Close()

	c.SetContent("unsaved")
	waitFor(t, func() bool { return errCount.Load() >= 1 })

	if got := c.Saved(); got.Content != "persisted" {
		t.Errorf("snapshot = %q, want untouched after failure", got.Content)
	}
	if !c.Dirty() {
		t.Error("controller must stay dirty after a failed save")
	}

	// Heal the backend; the restarted debounce retries on its own.
	rec.fail.Store(false)
	waitFor(t, func() bool { return rec.count() == 1 })
	waitFor(t, func() bool { return c.State() == StateClean })
}

func TestOnSavedCallback(t *testing.T) {
	rec := &recorder{}
	var saved atomic.Value
	c := New(1, Snapshot{}, rec.save,
		WithDelay(10*time.Millisecond),
		WithOnSaved(func(s Snapshot) { saved.Store(s) }))
	defer c.Close()

	c.Update("t", "c")
	waitFor(t, func() bool { return saved.Load() != nil })
	if got := saved.Load().(Snapshot); got.Title != "t" || got.Content != "c" {
		t.Errorf("onSaved snapshot = %+v", got)
	}
}

func TestCloseIsIdempotentAndStopsMethods(t *testing.T) {
	rec := &recorder{}
	c := New(1, Snapshot{}, rec.save)
	c.Close()
	c.Close()

	// All methods are safe no-ops after close.
	c.SetContent("x")
	c.SaveNow()
	if c.State() != StateClean {
		t.Errorf("closed controller state = %v", c.State())
	}
}
