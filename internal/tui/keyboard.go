package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// PlayerKeyMap defines the keyboard shortcuts of the caption player
type PlayerKeyMap struct {
	Quit        key.Binding
	Help        key.Binding
	NextScene   key.Binding
	SeekBack    key.Binding
	SeekForward key.Binding
	TogglePause key.Binding
	Restart     key.Binding
	Clear       key.Binding
}

// DefaultKeyMap returns the default key mappings
func DefaultKeyMap() PlayerKeyMap {
	return PlayerKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q", "esc"),
			key.WithHelp("ctrl+c/q/esc", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "help"),
		),
		NextScene: key.NewBinding(
			key.WithKeys("n", "enter"),
			key.WithHelp("n/enter", "next scene"),
		),
		SeekBack: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "seek back"),
		),
		SeekForward: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "seek forward"),
		),
		TogglePause: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space/p", "pause/resume"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart script"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear log"),
		),
	}
}

// KeyHandler provides common keyboard event handling
type KeyHandler struct {
	keyMap PlayerKeyMap
}

// NewKeyHandler creates a new keyboard handler with default key mappings
func NewKeyHandler() *KeyHandler {
	return &KeyHandler{
		keyMap: DefaultKeyMap(),
	}
}

// HandleKey maps a key message to a player action
func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (KeyAction, bool) {
	switch {
	case key.Matches(msg, kh.keyMap.Quit):
		return KeyActionQuit, true
	case key.Matches(msg, kh.keyMap.Help):
		return KeyActionHelp, true
	case key.Matches(msg, kh.keyMap.NextScene):
		return KeyActionNextScene, true
	case key.Matches(msg, kh.keyMap.SeekBack):
		return KeyActionSeekBack, true
	case key.Matches(msg, kh.keyMap.SeekForward):
		return KeyActionSeekForward, true
	case key.Matches(msg, kh.keyMap.TogglePause):
		return KeyActionTogglePause, true
	case key.Matches(msg, kh.keyMap.Restart):
		return KeyActionRestart, true
	case key.Matches(msg, kh.keyMap.Clear):
		return KeyActionClear, true
	}

	return KeyActionNone, false
}

// KeyAction represents a player keyboard action
type KeyAction int

const (
	KeyActionNone KeyAction = iota
	KeyActionQuit
	KeyActionHelp
	KeyActionNextScene
	KeyActionSeekBack
	KeyActionSeekForward
	KeyActionTogglePause
	KeyActionRestart
	KeyActionClear
)

// String returns a string representation of the key action
func (ka KeyAction) String() string {
	switch ka {
	case KeyActionQuit:
		return "quit"
	case KeyActionHelp:
		return "help"
	case KeyActionNextScene:
		return "next_scene"
	case KeyActionSeekBack:
		return "seek_back"
	case KeyActionSeekForward:
		return "seek_forward"
	case KeyActionTogglePause:
		return "toggle_pause"
	case KeyActionRestart:
		return "restart"
	case KeyActionClear:
		return "clear"
	default:
		return "none"
	}
}

// ShortBindings returns the bindings shown in the footer
func (kh *KeyHandler) ShortBindings() []key.Binding {
	return []key.Binding{kh.keyMap.NextScene, kh.keyMap.Help, kh.keyMap.Quit}
}

// Bindings returns every binding in display order
func (kh *KeyHandler) Bindings() []key.Binding {
	km := kh.keyMap
	return []key.Binding{km.NextScene, km.SeekBack, km.SeekForward, km.TogglePause, km.Restart, km.Clear, km.Help, km.Quit}
}
