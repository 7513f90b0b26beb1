package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jeeftor/captionctl/internal/caption"
	"github.com/jeeftor/captionctl/internal/constants"
	"github.com/jeeftor/captionctl/internal/params"
	"github.com/jeeftor/captionctl/internal/styles"
	"github.com/jeeftor/captionctl/internal/ui"
)

// EnvVar represents an environment variable with its metadata
type EnvVar struct {
	Name         string
	Description  string
	DefaultValue string
	Category     string
	CurrentValue string
	IsSet        bool
}

// envCmd represents the env command
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Display environment variable configuration",
	Long: `Display every CAPTION_* environment variable with its current value and default.

Environment variables override config file values but are overridden by command-line flags.`,
	Run: func(cmd *cobra.Command, args []string) {
		displayEnvironmentVariables()
	},
}

func init() {
	rootCmd.AddCommand(envCmd)
}

// getAllEnvVars returns all supported environment variables with metadata
func getAllEnvVars() []EnvVar {
	envVars := []EnvVar{
		{Name: params.EnvName("log_level"), Description: "Logging level (debug, info, warn, error)", DefaultValue: "info", Category: "Core"},
		{Name: params.EnvName("log.file"), Description: "Also write logs to this file (rotated)", DefaultValue: "(none)", Category: "Core"},
		{Name: params.EnvName("script"), Description: "Script file or URL used when none is given", DefaultValue: "(none)", Category: "Core"},

		{Name: params.EnvName("end_stop"), Description: "Stop and return when a script ends", DefaultValue: "false", Category: "Playback"},
		{Name: params.EnvName("next_scene"), Description: "Request the next scene when a script ends", DefaultValue: "false", Category: "Playback"},
		{Name: params.EnvName("bpm"), Description: "Tempo for the bpm timing function", DefaultValue: "0", Category: "Playback"},
		{Name: params.EnvName("time_to_next_frame"), Description: "Fallback duration for the scene timing function", DefaultValue: constants.DefaultTimeToNextFrame.String(), Category: "Playback"},
		{Name: params.EnvName("fetch.timeout"), Description: "Timeout for fetching scripts over HTTP", DefaultValue: constants.DefaultFetchTimeout.String(), Category: "Playback"},

		{Name: params.EnvName("tags.file"), Description: "YAML tag file for $TAG_PHRASE", DefaultValue: "(none)", Category: "Tags"},
		{Name: params.EnvName("tags.db"), Description: "SQLite tag database for $TAG_PHRASE", DefaultValue: "(none)", Category: "Tags"},
	}

	for _, cat := range caption.Categories {
		def := params.DefaultStyles[cat]
		name := cat.String()
		envVars = append(envVars,
			EnvVar{Name: params.EnvName("styles." + name + ".color"), Description: name + " text colour", DefaultValue: def.Color, Category: "Styles"},
			EnvVar{Name: params.EnvName("styles." + name + ".font_size"), Description: name + " font size in vmin", DefaultValue: fmt.Sprintf("%g", def.FontSize), Category: "Styles"},
		)
	}

	for i := range envVars {
		envVar := &envVars[i]
		envVar.CurrentValue, envVar.IsSet = os.LookupEnv(envVar.Name)
	}

	return envVars
}

// displayEnvironmentVariables shows all environment variables organized by category
func displayEnvironmentVariables() {
	envVars := getAllEnvVars()

	categories := make(map[string][]EnvVar)
	for _, envVar := range envVars {
		categories[envVar.Category] = append(categories[envVar.Category], envVar)
	}

	categoryNames := make([]string, 0, len(categories))
	for category := range categories {
		categoryNames = append(categoryNames, category)
	}
	sort.Strings(categoryNames)

	fmt.Println(styles.HeaderStyle.Render("🌍 Caption Environment Variables"))
	fmt.Println()

	setCount := 0
	for _, envVar := range envVars {
		if envVar.IsSet {
			setCount++
		}
	}

	fmt.Printf("%s %d/%d environment variables are currently set\n\n",
		styles.SuccessStyle.Render("ℹ️"), setCount, len(envVars))

	for _, categoryName := range categoryNames {
		categoryVars := categories[categoryName]

		sort.Slice(categoryVars, func(i, j int) bool {
			return categoryVars[i].Name < categoryVars[j].Name
		})

		fmt.Println(styles.SectionStyle.Render(fmt.Sprintf("📂 %s", categoryName)))
		fmt.Println()

		for _, envVar := range categoryVars {
			displayEnvVar(envVar)
		}
		fmt.Println()
	}

	fmt.Println(styles.SectionStyle.Render("💡 Usage Examples"))
	fmt.Println()
	ui.EnvironmentVariableExample(params.EnvName("end_stop"), "true")
	ui.EnvironmentVariableExample(params.EnvName("script"), "~/scripts/intro.cap")
	ui.EnvironmentVariableExample(params.EnvName("log_level"), "debug")
	fmt.Println()
	ui.CommandExample("captionctl run", "plays the script from "+params.EnvName("script"))
	ui.CommandExample("captionctl config show", "shows where every value comes from")
	fmt.Println()
}

// displayEnvVar formats and displays a single environment variable
func displayEnvVar(envVar EnvVar) {
	nameStyle := styles.KeyStyle
	statusIndicator := "○"
	if envVar.IsSet {
		nameStyle = styles.SuccessStyle
		statusIndicator = "●"
	}

	fmt.Printf("  %s %s\n", nameStyle.Render(statusIndicator), nameStyle.Render(envVar.Name))
	fmt.Printf("    %s\n", styles.MutedStyle.Render(envVar.Description))

	if envVar.IsSet {
		fmt.Printf("    %s %s\n", styles.BoldStyle.Render("Current:"), styles.ValueStyle.Render(envVar.CurrentValue))
	} else {
		fmt.Printf("    %s %s\n", styles.BoldStyle.Render("Current:"), styles.MutedStyle.Render("(not set)"))
	}
	fmt.Printf("    %s %s\n", styles.BoldStyle.Render("Default:"), styles.DefaultStyle.Render(envVar.DefaultValue))
	fmt.Println()
}
