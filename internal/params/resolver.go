package params

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jeeftor/captionctl/internal/caption"
	"github.com/jeeftor/captionctl/internal/constants"
)

// Sources reported by the *WithInfo resolvers
const (
	SourceArgument    = "argument"
	SourceFlag        = "flag"
	SourceEnvironment = "environment"
	SourceConfig      = "config"
	SourceDefault     = "default"
	SourceNone        = "none"
)

// EnvPrefix is prepended to every environment variable viper reads
const EnvPrefix = "CAPTION"

// DefaultStyles is the look of each category when nothing is configured
var DefaultStyles = map[caption.Category]caption.StyleConfig{
	caption.CategoryBlink:      {Color: "#ffffff", FontSize: 12, FontFamily: "sans-serif", Border: true, BorderPx: 2, BorderColor: "#000000"},
	caption.CategoryCaption:    {Color: "#ffffff", FontSize: 6, FontFamily: "sans-serif", Border: true, BorderPx: 1, BorderColor: "#000000"},
	caption.CategoryBigCaption: {Color: "#ffd700", FontSize: 14, FontFamily: "sans-serif", Border: true, BorderPx: 3, BorderColor: "#000000"},
	caption.CategoryCount:      {Color: "#ff4040", FontSize: 20, FontFamily: "monospace"},
}

// ParameterResolver handles resolution of common parameters from multiple sources
type ParameterResolver struct {
	// Sources in priority order: CLI args > flags > env vars > config > defaults
}

// NewParameterResolver creates a new parameter resolver
func NewParameterResolver() *ParameterResolver {
	return &ParameterResolver{}
}

// ParameterInfo provides information about where a parameter came from
type ParameterInfo struct {
	Value  string `yaml:"value"`
	Source string `yaml:"source"` // "argument", "flag", "environment", "config", "default", "none"
}

// BindEnvironment makes every key readable from CAPTION_* variables, with dots
// and dashes in key names mapped to underscores
func BindEnvironment() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// EnvName returns the environment variable viper binds key to
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// lookup reports a non-empty viper value and whether it came from the environment
func lookup(key string) (ParameterInfo, bool) {
	if !viper.IsSet(key) {
		return ParameterInfo{}, false
	}
	value := viper.GetString(key)
	if value == "" {
		return ParameterInfo{}, false
	}
	if env, ok := os.LookupEnv(EnvName(key)); ok && env != "" {
		return ParameterInfo{Value: value, Source: SourceEnvironment}, true
	}
	return ParameterInfo{Value: value, Source: SourceConfig}, true
}

// ResolveScriptWithInfo resolves where the script comes from
// Priority: explicit argument > --script literal > CAPTION_SCRIPT env var / config > error
func (r *ParameterResolver) ResolveScriptWithInfo(args []string, argIndex int, literal string) (ParameterInfo, error) {
	// 1. Explicit argument (highest priority)
	if argIndex >= 0 && argIndex < len(args) && args[argIndex] != "" {
		return ParameterInfo{Value: args[argIndex], Source: SourceArgument}, nil
	}

	// 2. Literal script text
	if literal != "" {
		return ParameterInfo{Value: literal, Source: SourceFlag}, nil
	}

	// 3. Environment variable or config
	if info, ok := lookup("script"); ok {
		return info, nil
	}

	return ParameterInfo{}, fmt.Errorf("script is required: provide a file or URL, use --script, or set %s", EnvName("script"))
}

// ResolveSource turns the resolved script location into a caption source
func (r *ParameterResolver) ResolveSource(args []string, argIndex int, literal string) (caption.Source, error) {
	info, err := r.ResolveScriptWithInfo(args, argIndex, literal)
	if err != nil {
		return nil, err
	}
	if info.Source == SourceFlag {
		return caption.InlineSource(info.Value), nil
	}
	src := caption.SourceFor(info.Value)
	if httpSrc, ok := src.(*caption.HTTPSource); ok {
		httpSrc.Timeout = r.ResolveFetchTimeout()
	}
	return src, nil
}

// ResolveEndPolicy resolves end-of-script behaviour from config
// Priority: CAPTION_END_STOP / CAPTION_NEXT_SCENE env vars > config > false
func (r *ParameterResolver) ResolveEndPolicy() (endStop, nextScene bool) {
	return viper.GetBool("end_stop"), viper.GetBool("next_scene")
}

// ResolveStyles resolves every category style, layering configured fields over the defaults
func (r *ParameterResolver) ResolveStyles() (map[caption.Category]caption.StyleConfig, error) {
	styles := make(map[caption.Category]caption.StyleConfig, len(caption.Categories))
	for _, cat := range caption.Categories {
		cfg := DefaultStyles[cat]
		key := "styles." + cat.String()
		if viper.IsSet(key) {
			if err := viper.UnmarshalKey(key, &cfg); err != nil {
				return nil, fmt.Errorf("invalid %s style: %w", cat, err)
			}
		}
		if cfg.FontSize <= 0 {
			return nil, fmt.Errorf("invalid %s style: font_size must be positive", cat)
		}
		styles[cat] = cfg
	}
	return styles, nil
}

// ResolveOptions builds the engine options from configuration
func (r *ParameterResolver) ResolveOptions() (caption.Options, error) {
	styles, err := r.ResolveStyles()
	if err != nil {
		return caption.Options{}, err
	}
	endStop, nextScene := r.ResolveEndPolicy()
	return caption.Options{EndStop: endStop, NextScene: nextScene, Styles: styles}, nil
}

// ResolveBPM resolves the audio tempo used by the bpm timing function
// Priority: CAPTION_BPM env var > config > 0 (unknown)
func (r *ParameterResolver) ResolveBPM() float64 {
	if bpm := viper.GetFloat64("bpm"); bpm > 0 {
		return bpm
	}
	return 0
}

// ResolveTimeToNextFrame resolves the duration the scene timing function waits for
// Priority: CAPTION_TIME_TO_NEXT_FRAME env var > config > default (5s)
func (r *ParameterResolver) ResolveTimeToNextFrame() time.Duration {
	return durationOr("time_to_next_frame", constants.DefaultTimeToNextFrame)
}

// ResolveFetchTimeout resolves the HTTP script fetch timeout
// Priority: CAPTION_FETCH_TIMEOUT env var > config > default (10s)
func (r *ParameterResolver) ResolveFetchTimeout() time.Duration {
	return durationOr("fetch.timeout", constants.DefaultFetchTimeout)
}

func durationOr(key string, def time.Duration) time.Duration {
	if viper.IsSet(key) {
		if value := viper.GetString(key); value != "" {
			if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
				return duration
			}
		}
	}
	return def
}

// ResolveTagFileWithInfo resolves the YAML tag file path
// Priority: --tags flag > CAPTION_TAGS_FILE env var > config > none
func (r *ParameterResolver) ResolveTagFileWithInfo(flagValue string) ParameterInfo {
	if flagValue != "" {
		return ParameterInfo{Value: flagValue, Source: SourceFlag}
	}
	if info, ok := lookup("tags.file"); ok {
		return info
	}
	return ParameterInfo{Value: "", Source: SourceNone}
}

// ResolveTagDBWithInfo resolves the SQLite tag database path
// Priority: --tags-db flag > CAPTION_TAGS_DB env var > config > none
func (r *ParameterResolver) ResolveTagDBWithInfo(flagValue string) ParameterInfo {
	if flagValue != "" {
		return ParameterInfo{Value: flagValue, Source: SourceFlag}
	}
	if info, ok := lookup("tags.db"); ok {
		return info
	}
	return ParameterInfo{Value: "", Source: SourceNone}
}

// ResolveLogFile resolves the rotating log file path, empty when file logging is off
func (r *ParameterResolver) ResolveLogFile() string {
	if info, ok := lookup("log.file"); ok {
		return info.Value
	}
	return ""
}
