package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/jeeftor/captionctl/internal/caption"
)

func TestCaptionStyle(t *testing.T) {
	big := caption.BuildStyle(caption.CategoryBigCaption, caption.StyleConfig{
		Color: "#ffd700", FontSize: 14, Border: true, BorderPx: 3, BorderColor: "#000000",
	})
	style := CaptionStyle(big)
	assert.True(t, style.GetBold())
	assert.Equal(t, lipgloss.Color("#ffd700"), style.GetForeground())
	assert.Equal(t, lipgloss.Color("#000000"), style.GetBorderTopForeground())

	small := CaptionStyle(caption.BuildStyle(caption.CategoryCaption, caption.StyleConfig{FontSize: 6}))
	assert.False(t, small.GetBold())
	assert.False(t, small.GetBorderTop())
}

func TestVerticalPosition(t *testing.T) {
	assert.Equal(t, lipgloss.Bottom, VerticalPosition(caption.BuildStyle(caption.CategoryCaption, caption.StyleConfig{})))
	assert.Equal(t, lipgloss.Center, VerticalPosition(caption.BuildStyle(caption.CategoryCount, caption.StyleConfig{})))
}

func TestStrokeHelpers(t *testing.T) {
	assert.Equal(t, 12.5, fontVmin("12.5vmin"))
	assert.Equal(t, 0.0, fontVmin("large"))
	assert.Equal(t, "#123456", strokeColor("2px #123456"))
	assert.Equal(t, "", strokeColor("2px"))
}
