package display

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeeftor/captionctl/internal/caption"
	"github.com/jeeftor/captionctl/internal/clock"
	"github.com/jeeftor/captionctl/internal/constants"
	"github.com/jeeftor/captionctl/internal/logging"
	"github.com/jeeftor/captionctl/internal/styles"
	"github.com/jeeftor/captionctl/internal/tui"
)

const (
	logLines    = 6
	eventBuffer = 16
)

// PlayerConfig configures a terminal player
type PlayerConfig struct {
	Name       string
	Source     caption.Source
	Options    caption.Options
	MediaClock bool // drive timestamps from a seekable playback clock instead of elapsed time
	Tags       caption.TagLookup
	Content    caption.Content
	BPM        float64
	NextFrame  time.Duration
	Clock      clock.Clock // nil uses wall time
}

// engine events delivered to the bubbletea loop
type (
	loadedMsg    struct{ err error }
	goBackMsg    struct{}
	nextSceneMsg struct{}
	errorMsg     struct{ err error }
)

// Player is the bubbletea model that plays a caption script in the terminal
type Player struct {
	*tui.BaseTUIModel

	name     string
	source   caption.Source
	engine   *caption.Engine
	surface  *Surface
	playback *PlaybackClock // nil in internal clock mode
	events   chan tea.Msg

	ctx    context.Context
	cancel context.CancelFunc

	keys     *tui.KeyHandler
	renderer *tui.TUIRenderer
	log      *tui.LogManager
	status   string
	showHelp bool
	logger   *logging.ContextualLogger
}

// NewPlayer builds a player and the engine it drives
func NewPlayer(cfg PlayerConfig) *Player {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{
		BaseTUIModel: tui.NewBaseTUIModel("captionctl"),
		name:         cfg.Name,
		source:       cfg.Source,
		surface:      NewSurface(),
		events:       make(chan tea.Msg, eventBuffer),
		ctx:          ctx,
		cancel:       cancel,
		keys:         tui.NewKeyHandler(),
		renderer:     tui.NewTUIRenderer(80, 24),
		log:          tui.NewLogManager(50),
		status:       "loading",
		logger:       logging.NewContextualLogger("display", "player"),
	}

	host := caption.Host{
		Display: p.surface,
		Tags:    cfg.Tags,
		Hooks: caption.Hooks{
			GoBack:        func() { p.send(goBackMsg{}) },
			PlayNextScene: func() { p.send(nextSceneMsg{}) },
			OnError:       func(err error) { p.send(errorMsg{err: err}) },
		},
	}
	if cfg.MediaClock {
		p.playback = NewPlaybackClock(cfg.Clock)
		host.Clock = p.playback
	}
	if cfg.Content.Source != "" {
		content := cfg.Content
		host.Content = func() (caption.Content, bool) { return content, true }
	}
	if cfg.BPM > 0 {
		bpm := cfg.BPM
		host.BPM = func() float64 { return bpm }
	}
	if cfg.NextFrame > 0 {
		next := cfg.NextFrame
		host.NextFrame = func() time.Duration { return next }
	}

	p.engine = caption.New(host, cfg.Options, cfg.Clock, nil)
	return p
}

// send delivers an engine event without blocking the engine
func (p *Player) send(msg tea.Msg) {
	select {
	case p.events <- msg:
	default:
		p.logger.Warn("Dropping player event, queue full", "event", fmt.Sprintf("%T", msg))
	}
}

// Engine returns the engine the player drives
func (p *Player) Engine() *caption.Engine {
	return p.engine
}

// Init starts loading the script and listening for engine events
func (p *Player) Init() tea.Cmd {
	return tea.Batch(p.CommonInit(), p.loadCmd(), p.waitForEvent())
}

func (p *Player) loadCmd() tea.Cmd {
	done := p.engine.Load(p.ctx, p.source)
	return func() tea.Msg {
		return loadedMsg{err: <-done}
	}
}

func (p *Player) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-p.events
	}
}

// Update handles key presses, ticks and engine events
func (p *Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.HandleWindowResize(msg)
		p.renderer.UpdateDimensions(msg.Width, msg.Height)
		return p, nil

	case tui.TickMsg:
		if p.IsQuitting() {
			return p, nil
		}
		return p, p.TickCmd()

	case tea.KeyMsg:
		return p.handleKey(msg)

	case loadedMsg:
		switch {
		case msg.err == nil:
			p.status = "playing"
			p.log.Add(fmt.Sprintf("Started %s", p.name), tui.LogLevelSuccess)
		case errors.Is(msg.err, context.Canceled):
			// superseded by a restart or quit
		default:
			p.status = "stopped"
		}
		return p, nil

	case errorMsg:
		p.log.Add(msg.err.Error(), tui.LogLevelError)
		return p, p.waitForEvent()

	case goBackMsg:
		p.log.Add("Script finished", tui.LogLevelInfo)
		return p.quit()

	case nextSceneMsg:
		p.log.Add("Next scene requested, replaying script", tui.LogLevelInfo)
		return p, tea.Batch(p.restart(), p.waitForEvent())
	}

	return p, nil
}

func (p *Player) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, ok := p.keys.HandleKey(msg)
	if !ok {
		return p, nil
	}

	switch action {
	case tui.KeyActionQuit:
		return p.quit()
	case tui.KeyActionHelp:
		p.showHelp = !p.showHelp
	case tui.KeyActionNextScene:
		p.engine.SceneChanged()
		p.log.Add("Scene changed", tui.LogLevelDebug)
	case tui.KeyActionSeekBack, tui.KeyActionSeekForward:
		if p.playback == nil {
			p.log.Add("Seeking needs the media clock (--media-clock)", tui.LogLevelWarn)
			break
		}
		step := constants.SeekStep
		if action == tui.KeyActionSeekBack {
			step = -step
		}
		pos := p.playback.Seek(step)
		p.log.Add(fmt.Sprintf("Seek to %.1fs", pos.Seconds()), tui.LogLevelDebug)
	case tui.KeyActionTogglePause:
		if p.playback == nil {
			p.log.Add("Pausing needs the media clock (--media-clock)", tui.LogLevelWarn)
			break
		}
		if p.playback.TogglePause() {
			p.status = "paused"
		} else {
			p.status = "playing"
		}
	case tui.KeyActionRestart:
		p.log.Add("Restarting script", tui.LogLevelInfo)
		return p, p.restart()
	case tui.KeyActionClear:
		p.log.Clear()
	}
	return p, nil
}

// restart rewinds the media clock and reloads the script
func (p *Player) restart() tea.Cmd {
	if p.playback != nil {
		p.playback.Reset()
	}
	p.status = "loading"
	return p.loadCmd()
}

func (p *Player) quit() (tea.Model, tea.Cmd) {
	p.State.Quitting = true
	p.cancel()
	p.engine.Stop()
	return p, tea.Quit
}

// View renders the title, status line, caption stage and event log
func (p *Player) View() string {
	if p.IsQuitting() {
		return ""
	}

	state := p.engine.State()
	frame := p.surface.Frame()

	status := tui.StatusInfo{
		Script: p.name,
		Status: p.status,
		PC:     state.PC,
		Index:  state.Index,
		Scene:  state.ScenePending,
		Uptime: p.GetUptime(),
	}
	if p.playback != nil {
		status.Position = p.playback.Position()
		status.Paused = p.playback.Paused()
	}

	var b strings.Builder
	b.WriteString(p.renderer.RenderTitle(p.State.Title))
	b.WriteString("\n")
	b.WriteString(p.renderer.RenderStatus(status))
	b.WriteString("\n")

	stageHeight := p.StageHeight(logLines)
	b.WriteString(p.renderer.RenderStage(frame.Text, styles.CaptionStyle(frame.Style),
		styles.VerticalPosition(frame.Style), frame.Visible, stageHeight))
	b.WriteString("\n")

	if p.showHelp {
		b.WriteString(p.renderer.RenderKeyHelp(p.keys.Bindings()))
	} else {
		lines := p.renderer.RenderLogEntries(p.log.GetRecentEntries(logLines), logLines)
		for len(lines) < logLines {
			lines = append(lines, "")
		}
		b.WriteString(strings.Join(lines, "\n"))
	}
	b.WriteString("\n")

	b.WriteString(p.renderer.RenderFooter(p.renderer.RenderShortHelp(p.keys.ShortBindings()), fmt.Sprintf("shown %d", frame.Shown)))
	return b.String()
}
