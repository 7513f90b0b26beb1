package display

import (
	"html"
	"strconv"
	"sync"

	"github.com/jeeftor/captionctl/internal/caption"
	"github.com/jeeftor/captionctl/internal/logging"
)

// LogDisplay is a caption.Display for non-interactive output. Every text shown
// becomes one log line.
type LogDisplay struct {
	mu       sync.Mutex
	category caption.Category
	visible  bool
}

// NewLogDisplay creates a log-backed display
func NewLogDisplay() *LogDisplay {
	return &LogDisplay{}
}

func (d *LogDisplay) SetVisible(visible bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.visible = visible
}

func (d *LogDisplay) ApplyStyle(style caption.Style) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.category = style.Category
}

func (d *LogDisplay) SetText(text string) {
	d.mu.Lock()
	category, visible := d.category, d.visible
	d.mu.Unlock()

	if !visible {
		return
	}
	text = html.UnescapeString(text)
	switch category {
	case caption.CategoryBlink:
		logging.BlinkWord(text)
	case caption.CategoryCount:
		if n, err := strconv.Atoi(text); err == nil {
			logging.CountValue(n)
			return
		}
		logging.ShowText(category.String(), text)
	default:
		logging.ShowText(category.String(), text)
	}
}
