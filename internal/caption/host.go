package caption

import (
	"context"
	"fmt"
	"time"
)

// Category is the display category an action writes with
type Category int

const (
	CategoryBlink Category = iota
	CategoryCaption
	CategoryBigCaption
	CategoryCount
)

// String returns the configuration name of the category
func (c Category) String() string {
	switch c {
	case CategoryBlink:
		return "blink"
	case CategoryCaption:
		return "caption"
	case CategoryBigCaption:
		return "bigcap"
	case CategoryCount:
		return "count"
	default:
		return "unknown"
	}
}

// Categories lists every display category
var Categories = []Category{CategoryBlink, CategoryCaption, CategoryBigCaption, CategoryCount}

// StyleConfig is the user-configurable look of one category
type StyleConfig struct {
	Color       string  `mapstructure:"color" yaml:"color"`
	FontSize    float64 `mapstructure:"font_size" yaml:"font_size"` // vmin
	FontFamily  string  `mapstructure:"font_family" yaml:"font_family"`
	Border      bool    `mapstructure:"border" yaml:"border"`
	BorderPx    int     `mapstructure:"border_px" yaml:"border_px"`
	BorderColor string  `mapstructure:"border_color" yaml:"border_color"`
}

// Style is what the engine hands the display before showing text
type Style struct {
	Category      Category
	Color         string
	FontSize      string
	FontFamily    string
	TextStroke    string // empty when the category has no border
	TextAlign     string
	VerticalAlign string
	PaddingBottom string
	Transition    string
}

// BuildStyle combines a category's configuration with its fixed layout
func BuildStyle(cat Category, cfg StyleConfig) Style {
	s := Style{
		Category:      cat,
		Color:         cfg.Color,
		FontSize:      fmt.Sprintf("%gvmin", cfg.FontSize),
		FontFamily:    cfg.FontFamily,
		TextAlign:     "center",
		VerticalAlign: "middle",
		PaddingBottom: "unset",
		Transition:    "opacity 0.1s ease-out",
	}
	if cat == CategoryCaption {
		s.VerticalAlign = "bottom"
		s.PaddingBottom = "20vmin"
		s.Transition = "opacity 0.5s ease-in-out"
	}
	if cfg.Border {
		s.TextStroke = fmt.Sprintf("%dpx %s", cfg.BorderPx, cfg.BorderColor)
	}
	return s
}

// Display is the surface captions are written to. Calls arrive with the engine lock
// held, so implementations must not call back into the engine.
type Display interface {
	SetVisible(visible bool)
	SetText(html string)
	ApplyStyle(style Style)
}

// Source supplies raw script text
type Source interface {
	Fetch(ctx context.Context) (string, error)
}

// MediaClock reports the host's playback position in milliseconds
type MediaClock interface {
	CurrentTimestamp() int64
}

// Tag is a host tag record; PhraseString holds newline-separated phrases
type Tag struct {
	Name         string `yaml:"name"`
	PhraseString string `yaml:"phrases"`
}

// TagLookup returns the tags attached to a content source
type TagLookup interface {
	Tags(source, clipID string) ([]Tag, error)
}

// Content identifies what the host is currently displaying
type Content struct {
	Source string
	ClipID string
}

// Hooks are the host's end-of-script and error callbacks. Each may be nil.
type Hooks struct {
	GoBack        func()
	PlayNextScene func()
	OnError       func(err error)
}

// Host bundles the collaborators the engine talks to
type Host struct {
	Display   Display
	Clock     MediaClock // nil selects internal clock mode
	Tags      TagLookup
	Content   func() (Content, bool)
	BPM       func() float64       // audio tempo, 0 when unknown
	NextFrame func() time.Duration // time until the host's next frame, used by the scene timing function
	Hooks     Hooks
}

// Options configure end-of-script behaviour and category styles
type Options struct {
	EndStop   bool
	NextScene bool
	Styles    map[Category]StyleConfig
}
