// Package display adapts the caption engine to a terminal: a thread-safe caption
// surface, a seekable playback clock and the bubbletea player built on them.
package display

import (
	"html"
	"sync"

	"github.com/jeeftor/captionctl/internal/caption"
)

// Frame is what the surface shows at one instant
type Frame struct {
	Visible bool
	Text    string // unescaped
	Style   caption.Style
	Shown   int // number of texts written so far
}

// Surface is a caption.Display that stores its state for a renderer to poll
type Surface struct {
	mu    sync.Mutex
	frame Frame
}

// NewSurface creates a hidden surface
func NewSurface() *Surface {
	return &Surface{}
}

func (s *Surface) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame.Visible = visible
}

func (s *Surface) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame.Text = html.UnescapeString(text)
	s.frame.Shown++
}

func (s *Surface) ApplyStyle(style caption.Style) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame.Style = style
}

// Frame returns a copy of the current state
func (s *Surface) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}
