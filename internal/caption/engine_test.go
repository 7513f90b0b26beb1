package caption

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jeeftor/captionctl/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDisplay records everything the engine writes
type recordingDisplay struct {
	mu      sync.Mutex
	shown   []string
	styles  []Style
	visible bool
}

func (d *recordingDisplay) SetVisible(visible bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.visible = visible
}

func (d *recordingDisplay) SetText(html string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shown = append(d.shown, html)
}

func (d *recordingDisplay) ApplyStyle(style Style) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.styles = append(d.styles, style)
}

func (d *recordingDisplay) Shown() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string{}, d.shown...)
}

func (d *recordingDisplay) Visible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.visible
}

func (d *recordingDisplay) LastStyle() Style {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.styles) == 0 {
		return Style{}
	}
	return d.styles[len(d.styles)-1]
}

// mediaClock is a host playback position the test moves by hand
type mediaClock struct {
	mu  sync.Mutex
	pos int64
}

func (m *mediaClock) Set(pos int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pos = pos
}

func (m *mediaClock) CurrentTimestamp() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

func newTestEngine(host Host, opts Options) (*Engine, *recordingDisplay, *clock.Manual) {
	display := &recordingDisplay{}
	host.Display = display
	clk := clock.NewManual(time.UnixMilli(0))
	return New(host, opts, clk, &fixedRand{}), display, clk
}

func TestEngineSequentialWraps(t *testing.T) {
	e, display, clk := newTestEngine(Host{}, Options{})
	require.NoError(t, e.Start("cap A\ncap B"))

	assert.Equal(t, []string{"A"}, display.Shown())
	assert.True(t, display.Visible())

	clk.Advance(2000 * time.Millisecond)
	assert.False(t, display.Visible(), "caption hides after its duration")

	clk.Advance(1200 * time.Millisecond)
	assert.Equal(t, []string{"A", "B"}, display.Shown())
	assert.Equal(t, 1, e.State().PC)

	clk.Advance(3200 * time.Millisecond)
	assert.Equal(t, []string{"A", "B", "A"}, display.Shown())

	state := e.State()
	assert.Equal(t, 0, state.PC)
	assert.True(t, state.Running)
	assert.True(t, state.SequentialLoop)
}

func TestEngineCountSequence(t *testing.T) {
	e, display, clk := newTestEngine(Host{}, Options{})
	require.NoError(t, e.Start("count 1 3"))

	assert.Equal(t, []string{"1"}, display.Shown())
	assert.Equal(t, CategoryCount, display.LastStyle().Category)

	clk.Advance(999 * time.Millisecond)
	assert.Equal(t, []string{"1"}, display.Shown())
	clk.Advance(1 * time.Millisecond)
	assert.Equal(t, []string{"1", "2"}, display.Shown())

	// Third item at 2000ms, hidden at 2600ms, group delay until 3800ms
	clk.Advance(2799 * time.Millisecond)
	assert.Equal(t, []string{"1", "2", "3"}, display.Shown())
	clk.Advance(1 * time.Millisecond)
	assert.Equal(t, []string{"1", "2", "3", "1"}, display.Shown())
}

func TestEngineTimedInternalClock(t *testing.T) {
	e, display, clk := newTestEngine(Host{}, Options{})
	require.NoError(t, e.Start("0 cap A\n1000 cap B\n2000 cap C"))

	assert.Empty(t, display.Shown(), "timed entries wait for the first poll")
	assert.True(t, e.State().TimestampLoop)

	clk.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"A"}, display.Shown())

	clk.Advance(900 * time.Millisecond)
	assert.Equal(t, []string{"A"}, display.Shown(), "an entry fires once elapsed time has passed it")

	clk.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"A", "B"}, display.Shown())

	clk.Advance(1000 * time.Millisecond)
	assert.Equal(t, []string{"A", "B", "C"}, display.Shown())

	state := e.State()
	assert.False(t, state.TimestampLoop, "internal clock loop halts after the last entry")
	assert.Equal(t, 3, state.Index)
	assert.Equal(t, noThreshold, state.NextThreshold)

	clk.Advance(10 * time.Second)
	assert.Equal(t, []string{"A", "B", "C"}, display.Shown())
	assert.Equal(t, 0, clk.Pending())
}

func TestEngineExternalClockBackwardJump(t *testing.T) {
	media := &mediaClock{}
	e, display, clk := newTestEngine(Host{Clock: media}, Options{})
	require.NoError(t, e.Start("1000 cap A\n2000 cap B\n3000 cap C"))

	tick := func(pos int64) {
		media.Set(pos)
		clk.Advance(100 * time.Millisecond)
	}

	tick(0)
	assert.Equal(t, 0, e.State().Index)
	tick(500)
	tick(1200)
	assert.Equal(t, []string{"A"}, display.Shown())
	tick(2100)
	tick(2500)
	assert.Equal(t, []string{"A", "B"}, display.Shown())
	assert.Equal(t, 2, e.State().Index)

	tick(1000)
	state := e.State()
	assert.Equal(t, []string{"A", "B"}, display.Shown(), "a seek resynchronizes without firing")
	assert.Equal(t, 0, state.Index)
	assert.Equal(t, int64(1000), state.LastTimestamp)
	assert.Equal(t, int64(1000), state.NextThreshold)

	tick(1100)
	assert.Equal(t, []string{"A", "B", "A"}, display.Shown(), "playback resumes from the new position")

	tick(5000)
	state = e.State()
	assert.Equal(t, []string{"A", "B", "A"}, display.Shown(), "a forward seek skips entries")
	assert.Equal(t, 3, state.Index)
	assert.True(t, state.TimestampLoop, "external clock mode keeps polling")
}

func TestEngineExternalClockFirstObservation(t *testing.T) {
	t.Run("clock already playing fires passed entries", func(t *testing.T) {
		media := &mediaClock{}
		e, display, clk := newTestEngine(Host{Clock: media}, Options{})
		require.NoError(t, e.Start("0 cap A\n3000 cap B"))

		for pos := int64(100); pos <= 2000; pos += 100 {
			media.Set(pos)
			clk.Advance(100 * time.Millisecond)
		}
		assert.Equal(t, []string{"A"}, display.Shown())
		assert.Equal(t, 1, e.State().Index)

		for pos := int64(2100); pos <= 3100; pos += 100 {
			media.Set(pos)
			clk.Advance(100 * time.Millisecond)
		}
		assert.Equal(t, []string{"A", "B"}, display.Shown())
	})

	t.Run("clock starting far in resynchronizes", func(t *testing.T) {
		media := &mediaClock{}
		e, display, clk := newTestEngine(Host{Clock: media}, Options{})
		require.NoError(t, e.Start("1000 cap A\n6000 cap B"))

		media.Set(5000)
		clk.Advance(100 * time.Millisecond)
		assert.Empty(t, display.Shown())
		assert.Equal(t, 1, e.State().Index)

		for pos := int64(5100); pos <= 6100; pos += 100 {
			media.Set(pos)
			clk.Advance(100 * time.Millisecond)
		}
		assert.Equal(t, []string{"B"}, display.Shown())
	})
}

func TestEngineHugeCount(t *testing.T) {
	e, display, clk := newTestEngine(Host{}, Options{})
	require.NoError(t, e.Start("count 0 9000000000000000000"))
	assert.Equal(t, []string{"0"}, display.Shown())

	clk.Advance(1000 * time.Millisecond)
	assert.Equal(t, []string{"0", "1"}, display.Shown())
	assert.Equal(t, 1, clk.Pending())
}

func TestEngineCaptionSceneDeferral(t *testing.T) {
	e, display, clk := newTestEngine(Host{}, Options{})
	require.NoError(t, e.Start("setCaptionDelayTF scene\ncap A"))

	assert.Empty(t, display.Shown())
	assert.True(t, e.State().ScenePending)

	clk.Advance(time.Minute)
	assert.Empty(t, display.Shown(), "scene-deferred actions never fire on their own")

	e.SceneChanged()
	assert.Equal(t, []string{"A"}, display.Shown())
	assert.False(t, e.State().ScenePending)

	e.SceneChanged()
	assert.Equal(t, []string{"A"}, display.Shown(), "a pending closure fires once")

	clk.Advance(2000 * time.Millisecond)
	assert.True(t, e.State().ScenePending, "the next pass waits for the next scene")

	e.SceneChanged()
	assert.Equal(t, []string{"A", "A"}, display.Shown())
}

func TestEngineBlinkSceneDelay(t *testing.T) {
	e, display, clk := newTestEngine(Host{}, Options{})
	require.NoError(t, e.Start("setBlinkDelayTF scene\nblink a/b"))
	assert.True(t, e.State().ScenePending)

	e.SceneChanged()
	assert.Equal(t, []string{"a"}, display.Shown())

	clk.Advance(200 * time.Millisecond)
	assert.False(t, display.Visible())
	assert.True(t, e.State().ScenePending, "each word waits for a scene")

	e.SceneChanged()
	assert.Equal(t, []string{"a", "b"}, display.Shown())

	clk.Advance(200 * time.Millisecond)
	assert.True(t, e.State().ScenePending)
	assert.Equal(t, []string{"a", "b"}, display.Shown())
}

func TestEngineBlinkGroupSceneOnly(t *testing.T) {
	e, display, clk := newTestEngine(Host{}, Options{})
	require.NoError(t, e.Start("setBlinkGroupDelayTF scene\nblink a/b"))
	assert.True(t, e.State().ScenePending)
	assert.Empty(t, display.Shown())

	e.SceneChanged()
	assert.Equal(t, []string{"a"}, display.Shown())

	// the delay between words still runs on its timer
	clk.Advance(279 * time.Millisecond)
	assert.Equal(t, []string{"a"}, display.Shown())
	assert.False(t, e.State().ScenePending)
	clk.Advance(1 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, display.Shown())

	clk.Advance(200 * time.Millisecond)
	assert.False(t, display.Visible())
	assert.True(t, e.State().ScenePending, "the group waits for the next scene")

	clk.Advance(time.Minute)
	assert.Equal(t, []string{"a", "b"}, display.Shown())
}

func TestEngineCountSceneTiming(t *testing.T) {
	t.Run("delay", func(t *testing.T) {
		e, display, clk := newTestEngine(Host{}, Options{})
		require.NoError(t, e.Start("setCountDelayTF scene\ncount 1 3"))
		assert.True(t, e.State().ScenePending)

		e.SceneChanged()
		assert.Equal(t, []string{"1"}, display.Shown())

		clk.Advance(600 * time.Millisecond)
		assert.False(t, display.Visible())
		assert.True(t, e.State().ScenePending, "each value waits for a scene")

		clk.Advance(time.Minute)
		assert.Equal(t, []string{"1"}, display.Shown())

		e.SceneChanged()
		clk.Advance(600 * time.Millisecond)
		e.SceneChanged()
		assert.Equal(t, []string{"1", "2", "3"}, display.Shown())

		clk.Advance(600 * time.Millisecond)
		assert.True(t, e.State().ScenePending, "the next pass starts on a scene")
		assert.Equal(t, []string{"1", "2", "3"}, display.Shown())
	})

	t.Run("group delay", func(t *testing.T) {
		e, display, clk := newTestEngine(Host{}, Options{})
		require.NoError(t, e.Start("setCountGroupDelayTF scene\ncount 1 2"))
		assert.True(t, e.State().ScenePending)

		e.SceneChanged()
		assert.Equal(t, []string{"1"}, display.Shown())

		clk.Advance(1000 * time.Millisecond)
		assert.Equal(t, []string{"1", "2"}, display.Shown())
		assert.False(t, e.State().ScenePending)

		clk.Advance(600 * time.Millisecond)
		assert.True(t, e.State().ScenePending)

		e.SceneChanged()
		assert.Equal(t, []string{"1", "2", "1"}, display.Shown())
	})

	t.Run("timestamped count still parks between values", func(t *testing.T) {
		e, display, clk := newTestEngine(Host{}, Options{})
		require.NoError(t, e.Start("setCountDelayTF scene\n0 count 1 2"))

		clk.Advance(100 * time.Millisecond)
		assert.Equal(t, []string{"1"}, display.Shown())

		clk.Advance(600 * time.Millisecond)
		assert.True(t, e.State().ScenePending)

		e.SceneChanged()
		assert.Equal(t, []string{"1", "2"}, display.Shown())
	})
}

func TestEngineTimedBlinkSkipsDelays(t *testing.T) {
	e, display, clk := newTestEngine(Host{}, Options{})
	require.NoError(t, e.Start("0 blink a/b"))

	clk.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"a"}, display.Shown())

	clk.Advance(200 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, display.Shown())
}

func TestEngineEndStop(t *testing.T) {
	var (
		e      *Engine
		goBack int
	)
	host := Host{Hooks: Hooks{GoBack: func() {
		goBack++
		e.Stop()
	}}}
	e, display, clk := newTestEngine(host, Options{EndStop: true, NextScene: true})
	require.NoError(t, e.Start("cap A"))

	clk.Advance(3200 * time.Millisecond)
	assert.Equal(t, 1, goBack)
	assert.False(t, e.State().Running)

	clk.Advance(10 * time.Second)
	assert.Equal(t, []string{"A"}, display.Shown())
}

func TestEngineNextScene(t *testing.T) {
	t.Run("plays the next scene", func(t *testing.T) {
		nextScene := 0
		host := Host{Hooks: Hooks{PlayNextScene: func() { nextScene++ }}}
		e, display, clk := newTestEngine(host, Options{NextScene: true})
		require.NoError(t, e.Start("cap A"))

		clk.Advance(3200 * time.Millisecond)
		assert.Equal(t, 1, nextScene)
		assert.False(t, e.State().SequentialLoop)

		clk.Advance(10 * time.Second)
		assert.Equal(t, []string{"A"}, display.Shown())
	})

	t.Run("wraps without a next scene hook", func(t *testing.T) {
		e, display, clk := newTestEngine(Host{}, Options{NextScene: true})
		require.NoError(t, e.Start("cap A"))

		clk.Advance(3200 * time.Millisecond)
		assert.Equal(t, []string{"A", "A"}, display.Shown())
		assert.True(t, e.State().SequentialLoop)
	})
}

func TestEngineTimedEndPolicy(t *testing.T) {
	goBack := 0
	host := Host{Hooks: Hooks{GoBack: func() { goBack++ }}}
	e, display, clk := newTestEngine(host, Options{EndStop: true})
	require.NoError(t, e.Start("0 cap A"))

	clk.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"A"}, display.Shown())
	assert.Equal(t, 0, goBack, "the policy applies once the last entry completes")

	clk.Advance(2000 * time.Millisecond)
	assert.Equal(t, 1, goBack)
}

func TestEngineStopResetsState(t *testing.T) {
	e, display, clk := newTestEngine(Host{}, Options{})
	require.NoError(t, e.Start("setBlinkDuration 1000 2000\nstorephrase $1 hi\nblink $1"))

	assert.Equal(t, 1000, e.Params().Get(BlinkDuration).Min)
	assert.Equal(t, []string{"hi"}, e.Phrases(1))
	assert.Equal(t, []string{"hi"}, display.Shown())

	e.Stop()
	e.Stop()
	assert.False(t, display.Visible())
	assert.False(t, e.State().Running)
	assert.Equal(t, 0, clk.Pending(), "stop cancels every timer")

	require.NoError(t, e.Start("wait 100"))
	assert.Equal(t, DefaultParams(), e.Params())
	assert.Empty(t, e.Phrases(1))
	assert.Empty(t, e.Phrases(0))
}

func TestEngineReset(t *testing.T) {
	e, _, _ := newTestEngine(Host{}, Options{})
	require.NoError(t, e.Start("setCountTF random\nstorephrase x\nwait 10"))
	assert.Equal(t, Random, e.Params().Get(CountDuration).Func)

	e.Reset()
	assert.Equal(t, DefaultParams(), e.Params())
	assert.Empty(t, e.Phrases(0))
}

func TestEngineStartParseError(t *testing.T) {
	var reported []error
	host := Host{Hooks: Hooks{OnError: func(err error) { reported = append(reported, err) }}}
	e, display, _ := newTestEngine(host, Options{})

	err := e.Start("cap hello\ncap")
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 2, parseErr.Line)
	assert.Equal(t, []error{err}, reported)
	assert.False(t, e.State().Running)
	assert.Empty(t, display.Shown(), "nothing runs when a script fails to compile")
}

func TestEngineIdleYield(t *testing.T) {
	e, _, clk := newTestEngine(Host{}, Options{})
	require.NoError(t, e.Start("setBlinkDuration 300\nwait 0"))

	assert.Equal(t, 300, e.Params().Get(BlinkDuration).Min)
	assert.Equal(t, 1, clk.Pending(), "a pass without suspension yields to the clock")

	clk.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, clk.Pending())
	assert.True(t, e.State().SequentialLoop)
}

func TestEngineJumpTo(t *testing.T) {
	e, display, clk := newTestEngine(Host{}, Options{})
	require.NoError(t, e.Start("cap A\ncap B\ncap C"))

	require.NoError(t, e.JumpTo(2))
	clk.Advance(3200 * time.Millisecond)
	assert.Equal(t, []string{"A", "C"}, display.Shown())
	assert.Equal(t, 2, e.State().PC)

	assert.Error(t, e.JumpTo(3))
	assert.Error(t, e.JumpTo(-1))

	e.Stop()
	assert.Error(t, e.JumpTo(0))
}

func TestEngineEscapesText(t *testing.T) {
	e, display, _ := newTestEngine(Host{}, Options{})
	require.NoError(t, e.Start(`cap <b>"Tom" & 'Jerry'</b>`))

	assert.Equal(t, []string{"&lt;b&gt;&#34;Tom&#34; &amp; &#39;Jerry&#39;&lt;/b&gt;"}, display.Shown())
}

func TestEngineAppliesCategoryStyle(t *testing.T) {
	opts := Options{Styles: map[Category]StyleConfig{
		CategoryCaption: {Color: "red", FontSize: 5, FontFamily: "serif", Border: true, BorderPx: 2, BorderColor: "black"},
		CategoryBlink:   {Color: "white", FontSize: 12},
	}}
	e, display, clk := newTestEngine(Host{}, opts)
	require.NoError(t, e.Start("cap A\nblink b"))

	style := display.LastStyle()
	assert.Equal(t, CategoryCaption, style.Category)
	assert.Equal(t, "red", style.Color)
	assert.Equal(t, "5vmin", style.FontSize)
	assert.Equal(t, "2px black", style.TextStroke)
	assert.Equal(t, "bottom", style.VerticalAlign)
	assert.Equal(t, "20vmin", style.PaddingBottom)

	clk.Advance(3200 * time.Millisecond)
	style = display.LastStyle()
	assert.Equal(t, CategoryBlink, style.Category)
	assert.Equal(t, "white", style.Color)
	assert.Equal(t, "", style.TextStroke)
	assert.Equal(t, "middle", style.VerticalAlign)
}

func TestEngineBPMTiming(t *testing.T) {
	host := Host{BPM: func() float64 { return 120 }}
	e, display, clk := newTestEngine(host, Options{})
	require.NoError(t, e.Start("setCaptionTF bpm\ncap A"))

	assert.True(t, display.Visible())
	clk.Advance(499 * time.Millisecond)
	assert.True(t, display.Visible())
	clk.Advance(1 * time.Millisecond)
	assert.False(t, display.Visible())
}

func TestEngineLoad(t *testing.T) {
	t.Run("fetches and starts", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("cap hello"))
		}))
		defer srv.Close()

		e, display, _ := newTestEngine(Host{}, Options{})
		err := <-e.Load(context.Background(), NewHTTPSource(srv.URL))
		require.NoError(t, err)
		assert.Equal(t, []string{"hello"}, display.Shown())
		assert.True(t, e.State().Running)
	})

	t.Run("service unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		var reported error
		host := Host{Hooks: Hooks{OnError: func(err error) { reported = err }}}
		e, display, _ := newTestEngine(host, Options{})
		err := <-e.Load(context.Background(), NewHTTPSource(srv.URL))
		assert.ErrorIs(t, err, ErrSourceUnavailable)
		assert.ErrorIs(t, reported, ErrSourceUnavailable)
		assert.False(t, e.State().Running)
		assert.Empty(t, display.Shown())
	})

	t.Run("reload replaces the running script", func(t *testing.T) {
		e, display, _ := newTestEngine(Host{}, Options{})
		require.NoError(t, e.Start("setCaptionDuration 10\ncap A"))

		err := <-e.Load(context.Background(), InlineSource("cap B"))
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, display.Shown())
		assert.Equal(t, DefaultParams(), e.Params())
	})

	t.Run("stop cancels the fetch", func(t *testing.T) {
		src := &blockingSource{started: make(chan struct{})}
		e, display, _ := newTestEngine(Host{}, Options{})

		result := e.Load(context.Background(), src)
		<-src.started
		e.Stop()

		err := <-result
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, e.State().Running)
		assert.Empty(t, display.Shown())
	})
}

// blockingSource blocks until its context is cancelled
type blockingSource struct {
	started chan struct{}
}

func (s *blockingSource) Fetch(ctx context.Context) (string, error) {
	close(s.started)
	<-ctx.Done()
	return "", ctx.Err()
}
