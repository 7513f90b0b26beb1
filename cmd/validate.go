package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeeftor/captionctl/internal/caption"
	"github.com/jeeftor/captionctl/internal/logging"
	"github.com/jeeftor/captionctl/internal/ui"
	"github.com/jeeftor/captionctl/internal/utils"
)

var validateQuiet bool

// validateCmd compiles scripts without playing them
var validateCmd = &cobra.Command{
	Use:   "validate <script-file-or-url>...",
	Short: "Check caption scripts for errors",
	Long: `Compile each script and report the first error it contains.

Every script is compiled with a fresh phrase store, exactly as playback would
compile it. The command exits non-zero when any script fails.

Examples:
  captionctl validate intro.cap
  captionctl validate scripts/*.cap
  captionctl validate https://example.com/scripts/intro.cap`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		multiErr := utils.NewMultiError("Validation failed")

		for _, location := range args {
			result, err := validateLocation(cmd.Context(), location)
			if err != nil {
				multiErr.Add(fmt.Errorf("%s: %w", location, err))
				var parseErr *caption.ParseError
				if errors.As(err, &parseErr) {
					ui.ValidationFailed(location, err)
				} else {
					logging.InvalidScript(location, err)
				}
				continue
			}
			if !validateQuiet {
				ui.ValidationPassed(result)
			}
		}

		if multiErr.HasErrors() {
			logging.UserErrorf("%d of %d scripts invalid", len(multiErr.Errors), len(args))
		} else if !validateQuiet {
			logging.Successf("%d scripts valid", len(args))
		}
		multiErr.Check()
	},
}

func init() {
	validateCmd.Flags().BoolVarP(&validateQuiet, "quiet", "q", false, "only report invalid scripts")
	rootCmd.AddCommand(validateCmd)
}

// validateLocation fetches and compiles one script
func validateLocation(ctx context.Context, location string) (ui.ScriptSummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	src, err := resolver.ResolveSource([]string{location}, 0, "")
	if err != nil {
		return ui.ScriptSummary{}, err
	}

	text, err := src.Fetch(ctx)
	if err != nil {
		return ui.ScriptSummary{}, err
	}

	phrases := caption.NewPhraseStore()
	prog, err := caption.Compile(text, phrases)
	if err != nil {
		return ui.ScriptSummary{}, err
	}

	logging.Compiled(location, len(prog.Sequential), len(prog.Order))
	return ui.ScriptSummary{
		Name:       location,
		Sequential: len(prog.Sequential),
		Timed:      len(prog.Order),
		Registers:  phrases.Counts(),
	}, nil
}
