package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeeftor/captionctl/internal/embedded"
	"github.com/jeeftor/captionctl/internal/logging"
	"github.com/jeeftor/captionctl/internal/ui"
	"github.com/jeeftor/captionctl/internal/utils"
)

var (
	sampleOutputDir string
	sampleList      bool
	sampleForce     bool
)

// sampleCmd prints or extracts the sample scripts embedded in the binary
var sampleCmd = &cobra.Command{
	Use:   "sample [name]",
	Short: "Print or extract the bundled sample scripts",
	Long: `Print one of the sample caption scripts bundled with captionctl, list
them, or write them all to a directory.

Examples:
  # Print the basics sample
  captionctl sample

  # Print a specific sample and play it
  captionctl sample timed > timed.cap && captionctl run timed.cap

  # List available samples
  captionctl sample --list

  # Write every sample to ./samples
  captionctl sample --output samples`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if sampleList {
			names, err := embedded.ListSamples()
			utils.CheckError(err, "Failed to list samples")

			ui.SectionHeader("Bundled samples")
			for _, name := range names {
				ui.BulletPoint(name)
			}
			fmt.Printf("\nTotal: %d samples\n", len(names))
			return
		}

		if sampleOutputDir != "" {
			var written []string
			err := logging.LogOperation("extract samples", sampleOutputDir, func() error {
				var err error
				written, err = embedded.ExtractSamples(sampleOutputDir, sampleForce)
				return err
			})
			for _, path := range written {
				logging.SaveFile(path, "")
			}
			if err != nil {
				utils.FileSystemError("extract samples to", sampleOutputDir, err)
			}
			logging.Successf("Extracted %d samples to %s", len(written), sampleOutputDir)
			return
		}

		name := "basics"
		if len(args) > 0 {
			name = args[0]
		}
		text, err := embedded.GetSample(name)
		if err != nil {
			utils.ValidationError(err)
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
	},
}

func init() {
	sampleCmd.Flags().StringVarP(&sampleOutputDir, "output", "o", "", "write every sample into this directory")
	sampleCmd.Flags().BoolVarP(&sampleList, "list", "l", false, "list bundled samples")
	sampleCmd.Flags().BoolVar(&sampleForce, "force", false, "overwrite existing files when extracting")
	rootCmd.AddCommand(sampleCmd)
}
