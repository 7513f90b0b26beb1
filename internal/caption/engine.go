// Package caption compiles caption scripts and plays them against a host display.
package caption

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jeeftor/captionctl/internal/clock"
	"github.com/jeeftor/captionctl/internal/logging"
)

// Session is the per-run execution state owned by the engine
type Session struct {
	PC            int
	Index         int
	StartedAt     time.Time
	LastTimestamp int64
	NextThreshold int64 // noThreshold once the table is exhausted

	sequentialActive bool
	timedActive      bool
	jump             *int
	scene            func()
}

// SessionState is a read-only snapshot of the running session
type SessionState struct {
	Running         bool
	SequentialLoop  bool
	TimestampLoop   bool
	PC              int
	Index           int
	LastTimestamp   int64
	NextThreshold   int64
	ScenePending    bool
	SequentialCount int
	TimedCount      int
}

// Engine compiles caption scripts and plays them against a host display
type Engine struct {
	mu sync.Mutex

	host    Host
	opts    Options
	clock   clock.Clock
	rng     Rand
	display Display
	styles  map[Category]Style
	logger  *logging.ContextualLogger

	params  Params
	phrases *PhraseStore
	subst   *substituter

	prog    *Program
	session *Session

	gen         uint64 // bumped on Stop; stale callbacks compare against it
	timers      map[uint64]clock.Timer
	nextTimerID uint64
	cancelFetch context.CancelFunc
	outbound    []func()
}

type globalRand struct{}

func (globalRand) IntN(n int) int {
	return rand.Intn(n)
}

// New creates an engine bound to a host. A nil clock uses wall time and a nil
// rng uses the global math/rand source.
func New(host Host, opts Options, clk clock.Clock, rng Rand) *Engine {
	if clk == nil {
		clk = clock.Real()
	}
	if rng == nil {
		rng = globalRand{}
	}

	e := &Engine{
		host:    host,
		opts:    opts,
		clock:   clk,
		rng:     rng,
		display: host.Display,
		styles:  make(map[Category]Style, len(Categories)),
		logger:  logging.NewContextualLogger("caption", "engine"),
		params:  DefaultParams(),
		phrases: NewPhraseStore(),
		timers:  make(map[uint64]clock.Timer),
	}
	if e.display == nil {
		e.display = nopDisplay{}
	}
	for _, cat := range Categories {
		e.styles[cat] = BuildStyle(cat, opts.Styles[cat])
	}
	e.subst = &substituter{phrases: e.phrases, host: &e.host, rng: rng, logger: e.logger}
	return e
}

type nopDisplay struct{}

func (nopDisplay) SetVisible(bool)  {}
func (nopDisplay) SetText(string)   {}
func (nopDisplay) ApplyStyle(Style) {}

// locked runs fn under the engine lock, then fires any host hooks fn queued
func (e *Engine) locked(fn func()) {
	e.mu.Lock()
	fn()
	hooks := e.outbound
	e.outbound = nil
	e.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

// queueHook defers a host callback until the engine lock is released
func (e *Engine) queueHook(hook func()) {
	if hook != nil {
		e.outbound = append(e.outbound, hook)
	}
}

// after schedules fn on the engine clock. The callback is dropped if the engine
// was stopped in the meantime.
func (e *Engine) after(d time.Duration, fn func()) {
	gen := e.gen
	id := e.nextTimerID
	e.nextTimerID++

	e.timers[id] = e.clock.AfterFunc(d, func() {
		e.locked(func() {
			delete(e.timers, id)
			if gen == e.gen {
				fn()
			}
		})
	})
}

// Start stops any running script, resets parameters and phrases, compiles text
// and starts playback. A compile error leaves the engine stopped.
func (e *Engine) Start(text string) error {
	var err error
	e.locked(func() {
		e.stopLocked()
		e.resetLocked()
		err = e.startLocked(text)
		if err != nil {
			e.reportLocked(err)
		}
	})
	return err
}

// Load fetches a script from src and starts it. The returned channel receives
// exactly one value: nil once playback started, or the fetch/compile error.
// A Stop or another Load while fetching cancels the fetch.
func (e *Engine) Load(ctx context.Context, src Source) <-chan error {
	result := make(chan error, 1)

	var (
		fetchCtx context.Context
		gen      uint64
	)
	e.locked(func() {
		e.stopLocked()
		e.resetLocked()
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithCancel(ctx)
		e.cancelFetch = cancel
		gen = e.gen
	})

	logging.FetchScript(DescribeSource(src))
	go func() {
		text, fetchErr := src.Fetch(fetchCtx)

		var err error
		e.locked(func() {
			if gen != e.gen {
				err = fmt.Errorf("script load cancelled: %w", context.Canceled)
				return
			}
			e.cancelFetch = nil

			switch {
			case errors.Is(fetchErr, ErrSourceUnavailable):
				e.logger.Warn("Script source unavailable", "error", fetchErr)
				err = fetchErr
			case fetchErr != nil:
				err = fmt.Errorf("fetching script: %w", fetchErr)
			default:
				err = e.startLocked(text)
			}
			if err != nil {
				e.reportLocked(err)
			}
		})
		result <- err
	}()

	return result
}

// reportLocked hands an error to the host error hook, or logs it when there is none
func (e *Engine) reportLocked(err error) {
	if e.host.Hooks.OnError != nil {
		onError := e.host.Hooks.OnError
		e.queueHook(func() { onError(err) })
		return
	}
	e.logger.Warn("Caption script not started", "error", err)
}

func (e *Engine) startLocked(text string) error {
	prog, err := Compile(text, e.phrases)
	if err != nil {
		return err
	}

	e.prog = prog
	e.session = &Session{
		NextThreshold:    noThreshold,
		sequentialActive: prog.HasSequential(),
		timedActive:      prog.HasTimed(),
	}
	e.logger.Debug("Script compiled",
		"sequential", len(prog.Sequential), "timed", len(prog.Order), "external_clock", e.host.Clock != nil)

	if prog.HasTimed() {
		e.startTimestampLoop()
	}
	if prog.HasSequential() {
		e.runSequential()
	}
	return nil
}

// Stop halts playback. It cancels a pending fetch, every timer and the pending
// scene closure, clears the session and hides the display. Safe to call repeatedly.
func (e *Engine) Stop() {
	e.locked(e.stopLocked)
}

func (e *Engine) stopLocked() {
	if e.cancelFetch != nil {
		e.cancelFetch()
		e.cancelFetch = nil
	}

	e.gen++
	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}

	e.session = nil
	e.prog = nil
	e.display.SetVisible(false)
}

// Reset restores the default timing parameters and empties the phrase store
func (e *Engine) Reset() {
	e.locked(e.resetLocked)
}

func (e *Engine) resetLocked() {
	e.params = DefaultParams()
	e.phrases.Reset()
}

// SceneChanged signals that the host content changed, firing the pending
// scene-deferred closure if there is one
func (e *Engine) SceneChanged() {
	e.locked(func() {
		if e.session == nil || e.session.scene == nil {
			return
		}
		pending := e.session.scene
		e.session.scene = nil
		pending()
	})
}

// JumpTo makes pc the next sequential action to run once the current one completes
func (e *Engine) JumpTo(pc int) error {
	var err error
	e.locked(func() {
		if e.prog == nil || e.session == nil {
			err = errors.New("no script running")
			return
		}
		if pc < 0 || pc >= len(e.prog.Sequential) {
			err = fmt.Errorf("program counter %d out of range [0, %d)", pc, len(e.prog.Sequential))
			return
		}
		e.session.jump = &pc
	})
	return err
}

// Params returns a copy of the current timing parameters
func (e *Engine) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// Phrases returns the phrases currently stored in register n
func (e *Engine) Phrases(n int) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phrases.Phrases(n)
}

// State returns a snapshot of the session
func (e *Engine) State() SessionState {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	if s == nil || e.prog == nil {
		return SessionState{NextThreshold: noThreshold}
	}
	return SessionState{
		Running:         s.sequentialActive || s.timedActive,
		SequentialLoop:  s.sequentialActive,
		TimestampLoop:   s.timedActive,
		PC:              s.PC,
		Index:           s.Index,
		LastTimestamp:   s.LastTimestamp,
		NextThreshold:   s.NextThreshold,
		ScenePending:    s.scene != nil,
		SequentialCount: len(e.prog.Sequential),
		TimedCount:      len(e.prog.Order),
	}
}
