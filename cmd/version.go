package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X github.com/jeeftor/captionctl/cmd.buildVersion=..."
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildTime    = "unknown"
)

var shortOutput bool

// formattedBuildTime accepts RFC3339 or unix seconds
func formattedBuildTime() string {
	if t, err := time.Parse(time.RFC3339, buildTime); err == nil {
		return t.Format("2006-01-02 15:04:05 MST")
	}
	if unix, err := strconv.ParseInt(buildTime, 10, 64); err == nil {
		return time.Unix(unix, 0).Format("2006-01-02 15:04:05 MST")
	}
	return buildTime
}

// displayVersion falls back to the module version recorded by `go install`
func displayVersion() string {
	if buildVersion != "dev" {
		return buildVersion
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return fmt.Sprintf("dev (%s)", info.Main.Version)
	}
	return "dev"
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if shortOutput {
			fmt.Println(buildVersion)
			return
		}

		label := color.New(color.FgWhite)
		rows := []struct {
			name  string
			value string
			color *color.Color
		}{
			{"Version: ", displayVersion(), color.New(color.FgCyan, color.Bold)},
			{"Built:   ", formattedBuildTime(), color.New(color.FgYellow)},
			{"Commit:  ", buildCommit, color.New(color.FgGreen)},
			{"OS/Arch: ", runtime.GOOS + "/" + runtime.GOARCH, color.New(color.FgMagenta)},
			{"Go:      ", runtime.Version(), color.New(color.FgRed)},
			{"Binary:  ", executablePath(), color.New(color.FgBlue)},
		}
		for _, row := range rows {
			label.Print(row.name)
			row.color.Println(row.value)
		}
	},
}

func executablePath() string {
	exe, err := os.Executable()
	if err != nil {
		return "unknown"
	}
	if abs, err := filepath.Abs(exe); err == nil {
		return abs
	}
	return exe
}

func init() {
	versionCmd.Flags().BoolVarP(&shortOutput, "short", "n", false, "Print only version number")
	rootCmd.AddCommand(versionCmd)
}
