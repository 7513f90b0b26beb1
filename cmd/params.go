package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jeeftor/captionctl/internal/caption"
	"github.com/jeeftor/captionctl/internal/logging"
	"github.com/jeeftor/captionctl/internal/params"
	"github.com/jeeftor/captionctl/internal/utils"
)

var (
	paramsScript  string
	paramsOutput  string
	paramsSources bool
)

// paramsReport is the YAML document printed by the params command
type paramsReport struct {
	Script  string                          `yaml:"script"`
	Timing  map[string]caption.Timing       `yaml:"timing"`
	Phrases map[int]int                     `yaml:"phrases,omitempty"`
	Config  map[string]params.ParameterInfo `yaml:"config,omitempty"`
}

// paramsCmd prints the timing parameters a script ends up with
var paramsCmd = &cobra.Command{
	Use:   "params [script-file-or-url]",
	Short: "Print the effective timing parameters of a script",
	Long: `Apply every timing setter of a script, in line order, to the default
parameters and print the result as YAML. Timestamped setters count too.

With --sources the resolved configuration (script location, tag sources and
end-of-script policy) is included along with where each value came from.

Examples:
  captionctl params intro.cap
  captionctl params --script "setBlinkDuration 100 300"
  captionctl params intro.cap --sources -o intro-params.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		info, err := resolver.ResolveScriptWithInfo(args, 0, paramsScript)
		if err != nil {
			utils.ValidationError(err)
		}
		src, err := resolver.ResolveSource(args, 0, paramsScript)
		if err != nil {
			utils.ValidationError(err)
		}

		text, err := src.Fetch(cmd.Context())
		if err != nil {
			utils.SourceError(info.Value, err)
		}

		report, err := buildParamsReport(info, text, paramsSources)
		utils.CheckError(err, "Invalid script")

		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		utils.CheckError(enc.Encode(report), "Failed to encode parameters")
		utils.CheckError(enc.Close(), "Failed to encode parameters")

		if paramsOutput == "" {
			fmt.Fprint(cmd.OutOrStdout(), buf.String())
			return
		}
		if err := os.WriteFile(paramsOutput, buf.Bytes(), 0o644); err != nil {
			utils.FileSystemError("write", paramsOutput, err)
		}
		logging.SaveFile(paramsOutput, fmt.Sprintf("%d bytes", buf.Len()))
	},
}

func init() {
	paramsCmd.Flags().StringVar(&paramsScript, "script", "", "inline script text instead of a file or URL")
	paramsCmd.Flags().StringVarP(&paramsOutput, "output", "o", "", "write the YAML to a file")
	paramsCmd.Flags().BoolVar(&paramsSources, "sources", false, "include resolved configuration and its sources")
	rootCmd.AddCommand(paramsCmd)
}

// buildParamsReport compiles text and collects its effective parameters
func buildParamsReport(info params.ParameterInfo, text string, withSources bool) (*paramsReport, error) {
	p, err := caption.EffectiveParams(text)
	if err != nil {
		return nil, err
	}

	phrases := caption.NewPhraseStore()
	if _, err := caption.Compile(text, phrases); err != nil {
		return nil, err
	}

	name := info.Value
	if info.Source == params.SourceFlag {
		name = "inline"
	}
	report := &paramsReport{Script: name, Timing: p.Snapshot(), Phrases: phrases.Counts()}
	if !withSources {
		return report, nil
	}

	endStop, nextScene := resolver.ResolveEndPolicy()
	report.Config = map[string]params.ParameterInfo{
		"script":     info,
		"tags.file":  resolver.ResolveTagFileWithInfo(""),
		"tags.db":    resolver.ResolveTagDBWithInfo(""),
		"end_stop":   {Value: fmt.Sprint(endStop), Source: params.SourceConfig},
		"next_scene": {Value: fmt.Sprint(nextScene), Source: params.SourceConfig},
	}
	if info.Source == params.SourceFlag {
		report.Config["script"] = params.ParameterInfo{Value: "inline", Source: info.Source}
	}
	return report, nil
}
