package display

import (
	"sync"
	"time"

	"github.com/jeeftor/captionctl/internal/clock"
)

// PlaybackClock is a media clock the user can pause and seek. It implements
// caption.MediaClock.
type PlaybackClock struct {
	mu     sync.Mutex
	clk    clock.Clock
	base   time.Duration // position at anchor
	anchor time.Time
	paused bool
}

// NewPlaybackClock creates a running clock at position zero
func NewPlaybackClock(clk clock.Clock) *PlaybackClock {
	if clk == nil {
		clk = clock.Real()
	}
	return &PlaybackClock{clk: clk, anchor: clk.Now()}
}

// positionLocked returns the current position (caller holds lock)
func (p *PlaybackClock) positionLocked() time.Duration {
	if p.paused {
		return p.base
	}
	return p.base + p.clk.Now().Sub(p.anchor)
}

// Position returns the current media position
func (p *PlaybackClock) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

// CurrentTimestamp returns the media position in milliseconds
func (p *PlaybackClock) CurrentTimestamp() int64 {
	return p.Position().Milliseconds()
}

// Seek moves the position by delta, never before zero
func (p *PlaybackClock) Seek(delta time.Duration) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	pos := p.positionLocked() + delta
	if pos < 0 {
		pos = 0
	}
	p.base = pos
	p.anchor = p.clk.Now()
	return pos
}

// TogglePause pauses a running clock or resumes a paused one. It reports
// whether the clock is now paused.
func (p *PlaybackClock) TogglePause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.base = p.positionLocked()
	p.anchor = p.clk.Now()
	p.paused = !p.paused
	return p.paused
}

// Paused reports whether the clock is paused
func (p *PlaybackClock) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Reset rewinds to zero and resumes
func (p *PlaybackClock) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base = 0
	p.anchor = p.clk.Now()
	p.paused = false
}
