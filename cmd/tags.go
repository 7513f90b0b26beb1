package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeeftor/captionctl/internal/caption"
	"github.com/jeeftor/captionctl/internal/logging"
	"github.com/jeeftor/captionctl/internal/tags"
	"github.com/jeeftor/captionctl/internal/ui"
	"github.com/jeeftor/captionctl/internal/utils"
)

var (
	tagsDB   string
	tagsFile string
	tagsClip string
)

// tagsCmd groups the tag store commands
var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Manage the tags used by $TAG_PHRASE",
	Long: `$TAG_PHRASE picks a phrase from the tags attached to the content being
played. Tags come from a YAML tag file (tags.file) or a SQLite tag database
(tags.db). A tag file looks like:

  sources:
    my-video:
      - name: chorus
        phrases: |-
          la la la
          na na na
      - name: intro
        clips: ["1", "2"]
        phrases: hello there`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// tagsImportCmd loads a tag file into the database
var tagsImportCmd = &cobra.Command{
	Use:   "import <tag-file>",
	Short: "Import a YAML tag file into the SQLite tag database",
	Long: `Import every source of a YAML tag file into the tag database, replacing
the tags those sources had before. Sources not in the file are left alone.

Examples:
  captionctl tags import tags.yaml --db ~/.captionctl/tags.sqlite
  CAPTION_TAGS_DB=tags.sqlite captionctl tags import tags.yaml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dbPath := resolver.ResolveTagDBWithInfo(tagsDB).Value
		if dbPath == "" {
			utils.ValidationError(fmt.Errorf("tag database is required: use --db or set tags.db"))
		}

		executor := utils.NewCommandExecutor("tags", "import")
		var (
			file  *tags.File
			store *tags.SQLiteStore
			rows  int
		)

		err := executor.ExecuteCommand([]utils.CommandStage{
			utils.NewCommandStage("read", func() error {
				logging.LoadFile(args[0])
				var err error
				file, err = tags.ReadFile(args[0])
				return err
			}),
			utils.NewCommandStage("open", func() error {
				var err error
				store, err = tags.OpenSQLite(dbPath)
				return err
			}),
			utils.NewCommandStage("import", func() error {
				defer store.Close()
				var err error
				rows, err = store.Import(context.Background(), file)
				return err
			}),
		})
		utils.CheckError(err, "Tag import failed")

		logging.Successf("Imported %d tag rows from %d sources into %s in %s",
			rows, len(file.Sources), dbPath, executor.Elapsed().Round(time.Millisecond))
	},
}

// tagsListCmd prints the tags that apply to a source
var tagsListCmd = &cobra.Command{
	Use:   "list <source>",
	Short: "List the tags of a content source",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		lookup, closeTags, err := tags.Open(
			resolver.ResolveTagFileWithInfo(tagsFile).Value,
			resolver.ResolveTagDBWithInfo(tagsDB).Value,
		)
		utils.CheckError(err, "Failed to open tags")
		defer func() { utils.WarnOnError(closeTags(), "Failed to close tags") }()

		if lookup == nil {
			utils.ValidationError(fmt.Errorf("no tag source configured: use --file, --db, tags.file or tags.db"))
		}

		found, err := lookup.Tags(args[0], tagsClip)
		utils.CheckError(err, "Tag lookup failed")
		printTags(args[0], found)
	},
}

func printTags(source string, found []caption.Tag) {
	ui.SectionHeader(fmt.Sprintf("Tags for %s", source))
	if len(found) == 0 {
		ui.BulletPoint(ui.Muted("none"))
		return
	}
	for _, tag := range found {
		phrases := len(caption.SplitPhrases(tag.PhraseString))
		ui.KeyValue(tag.Name, fmt.Sprintf("%d phrases", phrases), "")
	}
}

func init() {
	tagsCmd.PersistentFlags().StringVar(&tagsDB, "db", "", "SQLite tag database (overrides tags.db)")
	tagsListCmd.Flags().StringVar(&tagsFile, "file", "", "YAML tag file (overrides tags.file)")
	tagsListCmd.Flags().StringVar(&tagsClip, "clip", "", "only tags that apply to this clip")

	tagsCmd.AddCommand(tagsImportCmd)
	tagsCmd.AddCommand(tagsListCmd)
	rootCmd.AddCommand(tagsCmd)
}
