package caption

import (
	"math"
	"strings"
	"time"
)

// TimingFunction selects how a concrete duration is chosen from a timing range
type TimingFunction int

const (
	Constant TimingFunction = iota // always the range minimum
	Random                         // uniform within [min, max]
	Wave                           // sine oscillation within [min, max]
	BPM                            // beat length derived from the audio tempo
	Scene                          // wait for the host's scene-advance signal
)

// String returns the script keyword for the timing function
func (tf TimingFunction) String() string {
	switch tf {
	case Constant:
		return "constant"
	case Random:
		return "random"
	case Wave:
		return "wave"
	case BPM:
		return "bpm"
	case Scene:
		return "scene"
	default:
		return "unknown"
	}
}

// MarshalText lets parameter snapshots serialise timing functions by keyword
func (tf TimingFunction) MarshalText() ([]byte, error) {
	return []byte(tf.String()), nil
}

var timingKeywords = map[string]TimingFunction{
	"constant": Constant,
	"fixed":    Constant,
	"random":   Random,
	"wave":     Wave,
	"sin":      Wave,
	"bpm":      BPM,
	"scene":    Scene,
}

// ParseTimingFunction maps a script keyword to a TimingFunction
func ParseTimingFunction(s string) (TimingFunction, bool) {
	tf, ok := timingKeywords[strings.ToLower(strings.TrimSpace(s))]
	return tf, ok
}

// Rand is the randomness source used by the resolver and phrase lookups
type Rand interface {
	IntN(n int) int
}

// TimingInput carries everything Resolve needs. Min, Max and Fallback are milliseconds.
type TimingInput struct {
	Func     TimingFunction
	Min      int
	Max      int
	WaveRate int
	BPMMulti int
	BPM      float64 // audio tempo, 0 when unknown
	Fallback int     // time to next frame, used by Scene
	Now      time.Time
	Rand     Rand
}

// Resolve computes a concrete duration for the given timing input
func Resolve(in TimingInput) time.Duration {
	return time.Duration(resolveMillis(in)) * time.Millisecond
}

func resolveMillis(in TimingInput) int {
	lo, hi := in.Min, in.Max
	if hi < lo {
		lo, hi = hi, lo
	}

	switch in.Func {
	case Random:
		if hi == lo || in.Rand == nil {
			return lo
		}
		return lo + in.Rand.IntN(hi-lo+1)

	case Wave:
		period := float64(absInt(in.WaveRate-100)+2) * 1000
		phase := float64(in.Now.UnixMilli()) / period
		ms := lo + int(math.Floor(math.Abs(math.Sin(phase))*float64(hi-lo+1)))
		if ms > hi {
			ms = hi
		}
		return ms

	case BPM:
		if in.BPM <= 0 {
			return lo
		}
		multi := in.BPMMulti
		if multi <= 0 {
			multi = 1
		}
		return int(math.Round(60000 / (in.BPM * float64(multi))))

	case Scene:
		if in.Fallback < 0 {
			return 0
		}
		return in.Fallback

	default:
		return in.Min
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
