// Package autosave implements the dirty-tracking save controller for a
// single open note.
//
// Concurrency model: a single internal event loop (goroutine) owns all
// mutable state (live title/content, saved snapshot, machine state,
// debounce timer). Public methods communicate with the loop through
// channels, so no mutexes are required.
package autosave

import (
	"context"
	"sync/atomic"
	"time"
)

// State is the controller's position in the save machine.
type State int

const (
	// StateClean means the live (title, content) matches the snapshot.
	StateClean State = iota
	// StateDirty means the live pair diverges from the snapshot.
	StateDirty
	// StateSaving means a persistence call is in flight.
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateSaving:
		return "saving"
	}
	return "unknown"
}

// DefaultDelay is the debounce quiescence window.
const DefaultDelay = 800 * time.Millisecond

// Snapshot is the last successfully persisted (title, content) pair.
// It is replaced atomically on save success and never partially.
type Snapshot struct {
	Title   string
	Content string
}

// SaveFunc persists a note. The note id is captured at save start, so
// a save always applies to the note it was issued for regardless of
// what is displayed when it completes.
type SaveFunc func(ctx context.Context, noteID int64, title, content string) error

// Option configures a Controller.
type Option func(*Controller)

// WithDelay overrides the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithOnSaved registers a callback invoked from the event loop after a
// successful save, with the new snapshot.
func WithOnSaved(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onSaved = fn }
}

// WithOnError registers a callback invoked from the event loop when a
// save fails.
func WithOnError(fn func(error)) Option {
	return func(c *Controller) { c.onError = fn }
}

type edit struct {
	title   *string
	content *string
}

type saveResult struct {
	saved Snapshot
	err   error
}

type status struct {
	state    State
	snapshot Snapshot
	dirty    bool
}

// Controller tracks edits against the saved snapshot, debounces
// persistence, and guarantees at most one save in flight.
type Controller struct {
	noteID  int64
	delay   time.Duration
	save    SaveFunc
	onSaved func(Snapshot)
	onError func(error)

	initial Snapshot

	editCh    chan edit
	saveNowCh chan struct{}
	resultCh  chan saveResult
	statusCh  chan chan status

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// New creates a controller for the note, seeded Clean with the given
// persisted snapshot, and starts its event loop.
func New(noteID int64, initial Snapshot, save SaveFunc, opts ...Option) *Controller {
	c := &Controller{
		noteID:    noteID,
		delay:     DefaultDelay,
		save:      save,
		initial:   initial,
		editCh:    make(chan edit),
		saveNowCh: make(chan struct{}),
		resultCh:  make(chan saveResult),
		statusCh:  make(chan chan status),
		stopCh:    make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.run()
	return c
}

// NoteID returns the note this controller is bound to.
func (c *Controller) NoteID() int64 { return c.noteID }

// SetTitle records a title edit.
func (c *Controller) SetTitle(title string) {
	c.sendEdit(edit{title: &title})
}

// SetContent records a content edit.
func (c *Controller) SetContent(content string) {
	c.sendEdit(edit{content: &content})
}

// Update records a combined title and content edit.
func (c *Controller) Update(title, content string) {
	c.sendEdit(edit{title: &title, content: &content})
}

func (c *Controller) sendEdit(e edit) {
	if c.closed.Load() {
		return
	}
	select {
	case c.editCh <- e:
	case <-c.stopped:
	}
}

// SaveNow requests an immediate save (manual save shortcut). A no-op
// while a save is already in flight or when there is nothing to save.
func (c *Controller) SaveNow() {
	if c.closed.Load() {
		return
	}
	select {
	case c.saveNowCh <- struct{}{}:
	case <-c.stopped:
	}
}

// State returns the current machine state.
func (c *Controller) State() State {
	return c.queryStatus().state
}

// Dirty reports whether the live pair diverges from the snapshot.
// Detection is by value: an edit that restores the snapshot exactly
// returns the controller to Clean.
func (c *Controller) Dirty() bool {
	return c.queryStatus().dirty
}

// Saved returns the last persisted snapshot.
func (c *Controller) Saved() Snapshot {
	return c.queryStatus().snapshot
}

func (c *Controller) queryStatus() status {
	if c.closed.Load() {
		return status{state: StateClean, snapshot: c.initial}
	}
	resp := make(chan status, 1)
	select {
	case c.statusCh <- resp:
	case <-c.stopped:
		return status{state: StateClean, snapshot: c.initial}
	}
	select {
	case st := <-resp:
		return st
	case <-c.stopped:
		return status{state: StateClean, snapshot: c.initial}
	}
}

// Close stops the event loop and clears the debounce timer. Unsaved
// edits are discarded; callers that care flush with SaveNow first.
func (c *Controller) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	<-c.stopped
}

func (c *Controller) run() {
	defer close(c.stopped)

	title := c.initial.Title
	content := c.initial.Content
	snapshot := c.initial
	state := StateClean

	var timer *time.Timer
	var timerCh <-chan time.Time

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timerCh = nil
	}
	restartTimer := func() {
		if timer == nil {
			timer = time.NewTimer(c.delay)
		} else {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(c.delay)
		}
		timerCh = timer.C
	}

	beginSave := func() {
		if state == StateSaving {
			// One save in flight per note; a request arriving mid-flight
			// is dropped, the next debounce cycle picks up the residue.
			return
		}
		if title == snapshot.Title && content == snapshot.Content {
			state = StateClean
			stopTimer()
			return
		}
		state = StateSaving
		stopTimer()
		captured := Snapshot{Title: title, Content: content}
		go func() {
			err := c.save(context.Background(), c.noteID, captured.Title, captured.Content)
			select {
			case c.resultCh <- saveResult{saved: captured, err: err}:
			case <-c.stopCh:
			}
		}()
	}

	for {
		select {
		case <-c.stopCh:
			stopTimer()
			return

		case e := <-c.editCh:
			if e.title != nil {
				title = *e.title
			}
			if e.content != nil {
				content = *e.content
			}
			if state == StateSaving {
				// Re-evaluated when the in-flight save resolves.
				continue
			}
			if title == snapshot.Title && content == snapshot.Content {
				state = StateClean
				stopTimer()
			} else {
				state = StateDirty
				restartTimer()
			}

		case <-timerCh:
			timerCh = nil
			beginSave()

		case <-c.saveNowCh:
			beginSave()

		case res := <-c.resultCh:
			if res.err != nil {
				// Snapshot preserved unchanged; edits are not lost and the
				// restarted debounce retries.
				state = StateDirty
				if c.onError != nil {
					c.onError(res.err)
				}
				restartTimer()
				continue
			}
			snapshot = res.saved
			if c.onSaved != nil {
				c.onSaved(snapshot)
			}
			if title == snapshot.Title && content == snapshot.Content {
				state = StateClean
			} else {
				// Edits arrived during the flight.
				state = StateDirty
				restartTimer()
			}

		case resp := <-c.statusCh:
			resp <- status{
				state:    state,
				snapshot: snapshot,
				dirty:    title != snapshot.Title || content != snapshot.Content,
			}
		}
	}
}
