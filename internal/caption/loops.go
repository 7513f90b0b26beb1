package caption

import (
	"math"
	"sort"
	"time"

	"github.com/jeeftor/captionctl/internal/constants"
	"github.com/jeeftor/captionctl/internal/logging"
)

// noThreshold marks an exhausted timestamp table
const noThreshold = int64(math.MaxInt64)

// runSequential executes sequential actions from the current program counter.
// Actions that complete inline are iterated; the first one that suspends ends
// the call, and its continuation re-enters the loop later.
func (e *Engine) runSequential() {
	s := e.session
	inline := 0
	for s != nil && s.sequentialActive && e.session == s {
		if inline >= len(e.prog.Sequential) {
			// A whole pass ran without suspending; yield instead of spinning
			e.after(constants.IdleYield, func() {
				if e.session == s {
					e.runSequential()
				}
			})
			return
		}

		action := e.prog.Sequential[s.PC]
		completed := e.execute(action, func() {
			if e.session == s && e.advanceSequential(s) {
				e.runSequential()
			}
		})
		if !completed {
			return
		}

		inline++
		if !e.advanceSequential(s) {
			return
		}
	}
}

// advanceSequential moves the program counter past the completed action. It
// reports false when the end-of-script policy halted the sequential loop.
func (e *Engine) advanceSequential(s *Session) bool {
	if s.jump != nil {
		s.PC = *s.jump
		s.jump = nil
		return true
	}

	s.PC++
	if s.PC < len(e.prog.Sequential) {
		return true
	}
	if e.endOfScript() {
		s.sequentialActive = false
		return false
	}
	s.PC = 0
	return true
}

// endOfScript applies the configured end-of-script policy. It reports whether
// the policy halts the loop that reached the end.
func (e *Engine) endOfScript() bool {
	if e.opts.EndStop {
		e.logger.Debug("End of script, going back")
		e.queueHook(e.host.Hooks.GoBack)
		return true
	}
	if e.opts.NextScene && e.host.Hooks.PlayNextScene != nil {
		e.logger.Debug("End of script, playing next scene")
		e.queueHook(e.host.Hooks.PlayNextScene)
		return true
	}
	return false
}

func (e *Engine) startTimestampLoop() {
	s := e.session
	s.StartedAt = e.clock.Now()
	s.LastTimestamp = 0
	s.Index = 0
	s.NextThreshold = e.prog.Order[0]
	e.schedulePoll(s)
}

func (e *Engine) schedulePoll(s *Session) {
	e.after(constants.TimestampPollInterval, func() { e.poll(s) })
}

// poll is one tick of the timestamp loop
func (e *Engine) poll(s *Session) {
	if e.session != s || !s.timedActive {
		return
	}

	var position int64
	if e.host.Clock != nil {
		position = e.host.Clock.CurrentTimestamp()
		// LastTimestamp starts at 0, so a clock already playing near the start
		// fires what it passed while one that starts far in is resynchronised
		jump := position - s.LastTimestamp
		if jump > seekThresholdMillis || jump < -seekThresholdMillis {
			s.LastTimestamp = position
			e.resync(s, position)
			e.schedulePoll(s)
			return
		}
		s.LastTimestamp = position
	} else {
		position = e.elapsed(s).Milliseconds()
	}

	e.fireDue(s, position)

	if e.session != s || !s.timedActive {
		return
	}
	if e.host.Clock == nil && s.Index >= len(e.prog.Order) {
		// Internal clock mode ends with the table
		s.timedActive = false
		return
	}
	e.schedulePoll(s)
}

var seekThresholdMillis = constants.SeekThreshold.Milliseconds()

// resync points the table index at the first entry at or after position without firing anything
func (e *Engine) resync(s *Session, position int64) {
	order := e.prog.Order
	s.Index = sort.Search(len(order), func(i int) bool { return order[i] >= position })
	s.NextThreshold = e.threshold(s.Index)
	logging.Resync(position, s.Index)
}

func (e *Engine) threshold(index int) int64 {
	if index < len(e.prog.Order) {
		return e.prog.Order[index]
	}
	return noThreshold
}

// fireDue fires, in ascending order, every entry whose timestamp the position has passed
func (e *Engine) fireDue(s *Session, position int64) {
	order := e.prog.Order
	for e.session == s && s.timedActive && s.Index < len(order) && order[s.Index] < position {
		ts := order[s.Index]
		s.Index++
		s.NextThreshold = e.threshold(s.Index)

		last := s.Index == len(order)
		done := func() {
			if last && e.session == s {
				e.finishTimed(s)
			}
		}

		e.logger.Debug("Timestamp reached", "timestamp", ts, "position", position)
		if e.execute(e.prog.Timed[ts], done) {
			done()
		}
	}
}

// finishTimed applies the end-of-script policy once the last timed entry completed
func (e *Engine) finishTimed(s *Session) {
	if e.endOfScript() {
		s.timedActive = false
	}
}

// elapsed reports how long the current session has been running
func (e *Engine) elapsed(s *Session) time.Duration {
	return e.clock.Now().Sub(s.StartedAt)
}
