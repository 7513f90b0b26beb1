package display

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeeftor/captionctl/internal/caption"
	"github.com/jeeftor/captionctl/internal/clock"
	"github.com/jeeftor/captionctl/internal/tui"
)

func TestSurface(t *testing.T) {
	s := NewSurface()
	assert.False(t, s.Frame().Visible)

	s.ApplyStyle(caption.Style{Category: caption.CategoryCount})
	s.SetVisible(true)
	s.SetText("a &amp; b")

	frame := s.Frame()
	assert.True(t, frame.Visible)
	assert.Equal(t, "a & b", frame.Text)
	assert.Equal(t, caption.CategoryCount, frame.Style.Category)
	assert.Equal(t, 1, frame.Shown)
}

func TestPlaybackClock(t *testing.T) {
	clk := clock.NewManual(time.UnixMilli(0))
	p := NewPlaybackClock(clk)

	clk.Advance(1500 * time.Millisecond)
	assert.Equal(t, int64(1500), p.CurrentTimestamp())

	assert.True(t, p.TogglePause())
	clk.Advance(time.Second)
	assert.Equal(t, int64(1500), p.CurrentTimestamp())

	assert.False(t, p.TogglePause())
	clk.Advance(500 * time.Millisecond)
	assert.Equal(t, int64(2000), p.CurrentTimestamp())

	assert.Equal(t, 7*time.Second, p.Seek(5*time.Second))
	assert.Equal(t, time.Duration(0), p.Seek(-time.Minute))

	clk.Advance(time.Second)
	p.Reset()
	assert.Equal(t, int64(0), p.CurrentTimestamp())
	assert.False(t, p.Paused())
}

func newTestPlayer(t *testing.T, script string, opts caption.Options) (*Player, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.UnixMilli(0))
	p := NewPlayer(PlayerConfig{
		Name:       "test.cap",
		Source:     caption.InlineSource(script),
		Options:    opts,
		MediaClock: true,
		Clock:      clk,
	})
	t.Cleanup(p.engine.Stop)
	return p, clk
}

func load(t *testing.T, p *Player) {
	t.Helper()
	msg := p.loadCmd()()
	loaded, ok := msg.(loadedMsg)
	require.True(t, ok)
	require.NoError(t, loaded.err)
	p.Update(loaded)
}

func nextEvent(t *testing.T, p *Player) tea.Msg {
	t.Helper()
	select {
	case msg := <-p.events:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no player event")
		return nil
	}
}

func TestPlayerShowsCaption(t *testing.T) {
	p, _ := newTestPlayer(t, "setCaptionDuration 1000\ncap hello <world>", caption.Options{})
	p.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	load(t, p)

	frame := p.surface.Frame()
	assert.True(t, frame.Visible)
	assert.Equal(t, "hello <world>", frame.Text)
	assert.Equal(t, "playing", p.status)
	view := p.View()
	assert.Contains(t, view, "hello <world>")
	assert.Contains(t, view, "n/enter next scene", "footer lists the short key help")
}

func TestPlayerEndStopQuits(t *testing.T) {
	p, clk := newTestPlayer(t, "setCaptionDuration 100\nsetCaptionDelay 0\ncap bye", caption.Options{EndStop: true})
	load(t, p)

	clk.Advance(200 * time.Millisecond)
	msg := nextEvent(t, p)
	require.IsType(t, goBackMsg{}, msg)

	_, cmd := p.Update(msg)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, p.IsQuitting())
	assert.Empty(t, p.View())
}

func TestPlayerReportsCompileErrors(t *testing.T) {
	clk := clock.NewManual(time.UnixMilli(0))
	p := NewPlayer(PlayerConfig{Name: "bad.cap", Source: caption.InlineSource("bogus"), Clock: clk})

	msg := p.loadCmd()()
	loaded := msg.(loadedMsg)
	require.Error(t, loaded.err)
	p.Update(loaded)
	assert.Equal(t, "stopped", p.status)

	errMsg := nextEvent(t, p)
	require.IsType(t, errorMsg{}, errMsg)
	p.Update(errMsg)

	entries := p.log.GetEntries()
	require.NotEmpty(t, entries)
	assert.Equal(t, tui.LogLevelError, entries[len(entries)-1].Level)
	assert.Contains(t, entries[len(entries)-1].Content, "unknown command")
}

func TestPlayerKeys(t *testing.T) {
	p, clk := newTestPlayer(t, "5000 cap later", caption.Options{})
	load(t, p)

	p.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, int64(5000), p.playback.CurrentTimestamp())

	p.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	assert.Equal(t, "paused", p.status)
	clk.Advance(time.Second)
	assert.Equal(t, int64(5000), p.playback.CurrentTimestamp())

	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	assert.True(t, p.showHelp)
	assert.Contains(t, p.View(), "Keyboard Shortcuts")

	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})

	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestPlayerSeekNeedsMediaClock(t *testing.T) {
	p := NewPlayer(PlayerConfig{Name: "x", Source: caption.InlineSource("cap x"), Clock: clock.NewManual(time.UnixMilli(0))})
	p.Update(tea.KeyMsg{Type: tea.KeyLeft})

	entries := p.log.GetEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, tui.LogLevelWarn, entries[0].Level)
}

func TestLogDisplayIgnoresHiddenText(t *testing.T) {
	d := NewLogDisplay()
	d.ApplyStyle(caption.Style{Category: caption.CategoryCount})
	d.SetText("3")
	d.SetVisible(true)
	d.SetText("3")
	d.SetVisible(false)
}
