package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jeeftor/captionctl/internal/logging"
	"github.com/jeeftor/captionctl/internal/params"
)

var (
	cfgFile  string
	logLevel string
	logFile  string

	resolver = params.NewParameterResolver()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "captionctl",
	Short: "captionctl compiles and plays caption scripts",
	Long: `captionctl works with caption scripts: line-oriented programs that show
captions, blink words and count numbers over a video or scene, either in order
or at media timestamps.

Scripts can be validated, inspected and played back in the terminal.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Default to info level if not specified
		if logLevel == "" {
			logLevel = "info"
		}

		// Initialize logging with the specified level
		logging.InitWithLevel(logLevel)

		if path := resolveLogFile(); path != "" {
			logging.EnableFileOutput(path)
			logging.Debug("File logging enabled", "path", path)
		}

		logging.Debug("Logging initialized", "level", logLevel)
		if used := viper.ConfigFileUsed(); used != "" {
			logging.Debug("Using config file", "path", used)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Close()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .captionctl.yaml in ., $HOME or /etc/captionctl)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this rotating file")

	// Bind flags to Viper
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// CAPTION_LOG_LEVEL, CAPTION_TAGS_DB, ...
	params.BindEnvironment()

	// Set default values
	viper.SetDefault("log_level", "info")
	viper.SetDefault("end_stop", false)
	viper.SetDefault("next_scene", false)

	// Config file setup
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath("/etc/captionctl")

		viper.SetConfigType("yaml")
		viper.SetConfigName(".captionctl")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error occurred
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}

	if logLevel == "" {
		logLevel = viper.GetString("log_level")
	}
}

// resolveLogFile returns the log file path with a leading ~ expanded
func resolveLogFile() string {
	path := resolver.ResolveLogFile()
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return path
}
