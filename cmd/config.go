package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jeeftor/captionctl/internal/caption"
	"github.com/jeeftor/captionctl/internal/logging"
	"github.com/jeeftor/captionctl/internal/params"
	"github.com/jeeftor/captionctl/internal/styles"
	"github.com/jeeftor/captionctl/internal/ui"
	"github.com/jeeftor/captionctl/internal/utils"
)

const configFileName = ".captionctl.yaml"

var configForce bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage captionctl configuration files and settings",
	Long: `Manage the captionctl configuration file and inspect effective settings.

Configuration files are searched in this order:
1. ./.captionctl.yaml (project config)
2. ~/.captionctl.yaml (user config)
3. /etc/captionctl/.captionctl.yaml (system config)

Environment variables (CAPTION_*) override config file values.
Command-line flags override both config files and environment variables.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// configInitCmd creates a sample configuration file
var configInitCmd = &cobra.Command{
	Use:   "init [config-file]",
	Short: "Create a sample configuration file",
	Long: `Generate a configuration file holding every setting at its default.

If no file is specified, creates ~/.captionctl.yaml.

Examples:
  captionctl config init                     # Create ~/.captionctl.yaml
  captionctl config init .captionctl.yaml    # Create a project config`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var configPath string
		if len(args) > 0 {
			configPath = args[0]
		} else {
			home, err := os.UserHomeDir()
			utils.CheckError(err, "Could not determine home directory")
			configPath = filepath.Join(home, configFileName)
		}

		absPath, err := filepath.Abs(configPath)
		utils.CheckError(err, "Could not resolve config path")

		if _, err := os.Stat(absPath); err == nil && !configForce {
			logging.UserErrorf("Configuration file already exists: %s", absPath)
			logging.UserInfof("Use --force to overwrite it")
			os.Exit(int(utils.ExitCodeFileSystem))
		}

		content, err := generateSampleConfig()
		utils.CheckError(err, "Failed to generate configuration")

		if err := os.WriteFile(absPath, content, 0o644); err != nil {
			utils.FileSystemError("write", absPath, err)
		}

		logging.Successf("Created configuration file: %s", absPath)
		logging.UserInfo("Edit the file to customize your settings")
	},
}

// configShowCmd displays current configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration values and sources",
	Run: func(cmd *cobra.Command, args []string) {
		displayCurrentConfiguration()
	},
}

// configPathCmd shows configuration file search paths
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Display configuration file search paths",
	Run: func(cmd *cobra.Command, args []string) {
		displayConfigPaths()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

// sampleConfig mirrors the configuration file layout
type sampleConfig struct {
	LogLevel        string                         `yaml:"log_level"`
	Log             map[string]string              `yaml:"log"`
	EndStop         bool                           `yaml:"end_stop"`
	NextScene       bool                           `yaml:"next_scene"`
	BPM             float64                        `yaml:"bpm"`
	TimeToNextFrame string                         `yaml:"time_to_next_frame"`
	Fetch           map[string]string              `yaml:"fetch"`
	Tags            map[string]string              `yaml:"tags"`
	Styles          map[string]caption.StyleConfig `yaml:"styles"`
}

// generateSampleConfig renders every setting at its default as commented YAML
func generateSampleConfig() ([]byte, error) {
	cfg := sampleConfig{
		LogLevel:        "info",
		Log:             map[string]string{"file": ""},
		TimeToNextFrame: resolver.ResolveTimeToNextFrame().String(),
		Fetch:           map[string]string{"timeout": resolver.ResolveFetchTimeout().String()},
		Tags:            map[string]string{"file": "", "db": ""},
		Styles:          make(map[string]caption.StyleConfig),
	}
	for _, cat := range caption.Categories {
		cfg.Styles[cat.String()] = params.DefaultStyles[cat]
	}

	body, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	header := `# captionctl configuration
#
# Priority (highest to lowest): flags, CAPTION_* environment variables,
# this file, built-in defaults. Nested keys map to variables with
# underscores, e.g. tags.db -> CAPTION_TAGS_DB.
#
# end_stop:   stop and return when a script ends
# next_scene: ask the host for the next scene when a script ends
# bpm:        tempo used by the bpm timing function (0 = unknown)

`
	return append([]byte(header), body...), nil
}

// displayCurrentConfiguration shows all current config values and sources
func displayCurrentConfiguration() {
	fmt.Printf("%s\n\n", styles.HeaderStyle.Render("⚙️  Current Configuration"))

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Printf("📁 Active config file: %s\n", styles.SuccessStyle.Render(configFile))
	} else {
		fmt.Printf("📁 Active config file: %s\n", styles.MutedStyle.Render("none"))
	}

	ui.SectionHeader("Playback")
	endStop, nextScene := resolver.ResolveEndPolicy()
	ui.KeyValue("end_stop", endStop, getConfigSource("end_stop"))
	ui.KeyValue("next_scene", nextScene, getConfigSource("next_scene"))
	ui.KeyValue("bpm", resolver.ResolveBPM(), getConfigSource("bpm"))
	ui.KeyValue("time_to_next_frame", resolver.ResolveTimeToNextFrame(), getConfigSource("time_to_next_frame"))
	ui.KeyValue("fetch.timeout", resolver.ResolveFetchTimeout(), getConfigSource("fetch.timeout"))

	ui.SectionHeader("Tags")
	tagFile := resolver.ResolveTagFileWithInfo("")
	tagDB := resolver.ResolveTagDBWithInfo("")
	ui.KeyValue("tags.file", tagFile.Value, tagFile.Source)
	ui.KeyValue("tags.db", tagDB.Value, tagDB.Source)

	ui.SectionHeader("Logging")
	ui.KeyValue("log_level", viper.GetString("log_level"), getConfigSource("log_level"))
	ui.KeyValue("log.file", resolver.ResolveLogFile(), getConfigSource("log.file"))

	ui.SectionHeader("Styles")
	resolved, err := resolver.ResolveStyles()
	if err != nil {
		logging.UserErrorf("%v", err)
		return
	}
	for _, cat := range caption.Categories {
		cfg := resolved[cat]
		preview := styles.CaptionStyle(caption.BuildStyle(cat, cfg)).UnsetBorderStyle().UnsetPadding().Render(cat.String())
		ui.KeyValue(cat.String(), fmt.Sprintf("%s %s %gvmin border=%v", preview, cfg.Color, cfg.FontSize, cfg.Border),
			getConfigSource("styles."+cat.String()))
	}

	// keys present in the file that captionctl does not read
	known := map[string]bool{}
	for _, key := range knownConfigKeys() {
		known[key] = true
	}
	var unknown []string
	for _, key := range viper.AllKeys() {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		ui.SectionHeader("Unrecognised keys")
		for _, key := range unknown {
			ui.BulletPoint(styles.WarningStyle.Render(key))
		}
	}
	fmt.Println()
}

// knownConfigKeys lists every leaf key captionctl reads
func knownConfigKeys() []string {
	keys := []string{
		"log_level", "log.file", "end_stop", "next_scene", "bpm", "time_to_next_frame",
		"fetch.timeout", "tags.file", "tags.db", "script",
	}
	for _, cat := range caption.Categories {
		for _, field := range []string{"color", "font_size", "font_family", "border", "border_px", "border_color"} {
			keys = append(keys, "styles."+cat.String()+"."+field)
		}
	}
	return keys
}

// getConfigSource determines where a configuration value came from
func getConfigSource(key string) string {
	if _, ok := os.LookupEnv(params.EnvName(key)); ok {
		return params.SourceEnvironment
	}
	if viper.InConfig(key) {
		return params.SourceConfig
	}
	return params.SourceDefault
}

// displayConfigPaths shows configuration file search paths
func displayConfigPaths() {
	fmt.Printf("%s\n\n", styles.HeaderStyle.Render("📍 Configuration File Paths"))

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Printf("🟢 Active: %s\n", styles.SuccessStyle.Render(configFile))
	} else {
		fmt.Printf("🔴 Active: %s\n", styles.MutedStyle.Render("none"))
	}

	ui.SectionHeader("Search paths (in priority order)")
	home, _ := os.UserHomeDir()
	searchPaths := []struct {
		path        string
		description string
	}{
		{filepath.Join(".", configFileName), "Project configuration"},
		{filepath.Join(home, configFileName), "User configuration"},
		{filepath.Join("/etc/captionctl", configFileName), "System configuration"},
	}

	for i, sp := range searchPaths {
		exists := styles.MutedStyle.Render("✗ not found")
		if _, err := os.Stat(sp.path); err == nil {
			exists = styles.SuccessStyle.Render("✓ exists")
		}
		fmt.Printf("  %d. %s\n", i+1, sp.path)
		fmt.Printf("     %s - %s\n", exists, sp.description)
	}

	ui.SectionHeader("Tips")
	ui.BulletPoint("Use 'captionctl config init' to create a user configuration")
	ui.BulletPoint("Use '--config path/to/config.yaml' to specify a custom config file")
	ui.BulletPoint("Environment variables (CAPTION_*) override config file values")
}
