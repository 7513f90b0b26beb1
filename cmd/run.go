package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jeeftor/captionctl/internal/caption"
	"github.com/jeeftor/captionctl/internal/display"
	"github.com/jeeftor/captionctl/internal/logging"
	"github.com/jeeftor/captionctl/internal/params"
	"github.com/jeeftor/captionctl/internal/tags"
	"github.com/jeeftor/captionctl/internal/ui"
	"github.com/jeeftor/captionctl/internal/utils"
)

var (
	runScript        string
	runMediaClock    bool
	runNoTUI         bool
	runDuration      time.Duration
	runContentSource string
	runClip          string
	runTagFile       string
	runTagDB         string
)

// runCmd plays a caption script
var runCmd = &cobra.Command{
	Use:   "run [script-file-or-url]",
	Short: "Play a caption script in the terminal",
	Long: `Play a caption script from a file, an http(s) URL or inline text.

In a terminal the script plays in a full-screen player:
  n / enter   signal a scene change
  ← / →       seek the media clock by 5 seconds
  space / p   pause or resume the media clock
  r           restart the script
  q           quit

When stdout is not a terminal, or with --no-tui, every caption is written to
the log instead.

Examples:
  captionctl run intro.cap
  captionctl run https://example.com/scripts/intro.cap
  captionctl run --script "cap hello/count 3 1"
  captionctl run intro.cap --no-tui --duration 30s`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		info, err := resolver.ResolveScriptWithInfo(args, 0, runScript)
		if err != nil {
			utils.ValidationError(err)
		}
		src, err := resolver.ResolveSource(args, 0, runScript)
		if err != nil {
			utils.ValidationError(err)
		}

		opts, err := resolver.ResolveOptions()
		utils.CheckError(err, "Invalid configuration")

		lookup, closeTags, err := tags.Open(
			resolver.ResolveTagFileWithInfo(runTagFile).Value,
			resolver.ResolveTagDBWithInfo(runTagDB).Value,
		)
		utils.CheckError(err, "Failed to open tags")
		defer func() { utils.WarnOnError(closeTags(), "Failed to close tags") }()

		name := info.Value
		if info.Source == params.SourceFlag {
			name = "inline script"
		}

		cfg := display.PlayerConfig{
			Name:       name,
			Source:     src,
			Options:    opts,
			MediaClock: runMediaClock,
			Tags:       lookup,
			Content:    caption.Content{Source: runContentSource, ClipID: runClip},
			BPM:        resolver.ResolveBPM(),
			NextFrame:  resolver.ResolveTimeToNextFrame(),
		}

		if runNoTUI || !term.IsTerminal(int(os.Stdout.Fd())) {
			if !runNoTUI {
				logging.Debug("stdout is not a terminal, playing to the log")
			}
			ui.ScriptMessage(name, info.Source)
			err = playToLog(cfg, runDuration)
		} else {
			err = playInTerminal(cfg)
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			utils.FatalError(err, "Playback failed")
		}
	},
}

func init() {
	runCmd.Flags().StringVar(&runScript, "script", "", "inline script text instead of a file or URL")
	runCmd.Flags().BoolVar(&runMediaClock, "media-clock", true, "drive timestamps from a seekable media clock")
	runCmd.Flags().BoolVar(&runNoTUI, "no-tui", false, "write captions to the log instead of the terminal player")
	runCmd.Flags().DurationVar(&runDuration, "duration", 0, "stop log playback after this long (0 plays until the script ends)")
	runCmd.Flags().StringVar(&runContentSource, "content-source", "", "content source used for $TAG_PHRASE lookups")
	runCmd.Flags().StringVar(&runClip, "clip", "", "clip id used for $TAG_PHRASE lookups")
	runCmd.Flags().StringVar(&runTagFile, "tags", "", "YAML tag file (overrides tags.file)")
	runCmd.Flags().StringVar(&runTagDB, "tags-db", "", "SQLite tag database (overrides tags.db)")
	rootCmd.AddCommand(runCmd)
}

// playInTerminal runs the full-screen player
func playInTerminal(cfg display.PlayerConfig) error {
	logging.Start(cfg.Name)
	player := display.NewPlayer(cfg)
	defer player.Engine().Stop()

	// console logs would tear the alternate screen; the file sink keeps recording
	logging.SetOutput(io.Discard)
	defer logging.SetOutput(os.Stderr)

	_, err := tea.NewProgram(player, tea.WithAltScreen()).Run()
	return err
}

// playToLog plays through a log display until the script ends, the duration
// elapses or the process is interrupted
func playToLog(cfg display.PlayerConfig, duration time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	finished := make(chan struct{})
	var once sync.Once
	var engine *caption.Engine

	host := caption.Host{
		Display: display.NewLogDisplay(),
		Tags:    cfg.Tags,
		Hooks: caption.Hooks{
			GoBack: func() { once.Do(func() { close(finished) }) },
			PlayNextScene: func() {
				logging.Info("Next scene requested, replaying script")
				go func() {
					if err := <-engine.Load(ctx, cfg.Source); err != nil && !errors.Is(err, context.Canceled) {
						logging.Fail("replay "+cfg.Name, err.Error())
					}
				}()
			},
			// load failures are returned by Load as well
			OnError: func(err error) { logging.Debug("Engine reported error", "error", err) },
		},
	}
	if cfg.MediaClock {
		host.Clock = display.NewPlaybackClock(nil)
	}
	if cfg.Content.Source != "" {
		content := cfg.Content
		host.Content = func() (caption.Content, bool) { return content, true }
	}
	if cfg.BPM > 0 {
		host.BPM = func() float64 { return cfg.BPM }
	}
	host.NextFrame = func() time.Duration { return cfg.NextFrame }

	engine = caption.New(host, cfg.Options, nil, nil)
	defer engine.Stop()

	logging.Start(cfg.Name)
	if err := <-engine.Load(ctx, cfg.Source); err != nil {
		return err
	}

	select {
	case <-finished:
		logging.Complete(cfg.Name)
	case <-ctx.Done():
		logging.Stop(cfg.Name)
	}
	return nil
}
