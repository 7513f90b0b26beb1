package caption

// TimingKey identifies one group of timing parameters
type TimingKey int

const (
	BlinkDuration TimingKey = iota
	BlinkDelay
	BlinkGroupDelay
	CaptionDuration
	CaptionDelay
	CountDuration
	CountDelay
	CountGroupDelay

	timingKeyCount
)

// String returns the setter stem used in scripts (setBlinkDuration -> "Blink")
func (k TimingKey) String() string {
	switch k {
	case BlinkDuration:
		return "Blink"
	case BlinkDelay:
		return "BlinkDelay"
	case BlinkGroupDelay:
		return "BlinkGroupDelay"
	case CaptionDuration:
		return "Caption"
	case CaptionDelay:
		return "CaptionDelay"
	case CountDuration:
		return "Count"
	case CountDelay:
		return "CountDelay"
	case CountGroupDelay:
		return "CountGroupDelay"
	default:
		return "unknown"
	}
}

// Timing is the mutable configuration of one timing key
type Timing struct {
	Min      int            `json:"min" yaml:"min"`
	Max      int            `json:"max" yaml:"max"`
	Func     TimingFunction `json:"tf" yaml:"tf"`
	WaveRate int            `json:"wave_rate" yaml:"wave_rate"`
	BPMMulti int            `json:"bpm_multi" yaml:"bpm_multi"`
}

// Params holds the timing configuration for every key
type Params struct {
	timings [timingKeyCount]Timing
}

var defaultRanges = [timingKeyCount][2]int{
	BlinkDuration:   {200, 500},
	BlinkDelay:      {80, 100},
	BlinkGroupDelay: {1200, 1400},
	CaptionDuration: {2000, 2000},
	CaptionDelay:    {1200, 1200},
	CountDuration:   {600, 600},
	CountDelay:      {400, 400},
	CountGroupDelay: {1200, 1200},
}

// DefaultParams returns the parameters a script starts with
func DefaultParams() Params {
	var p Params
	for k := TimingKey(0); k < timingKeyCount; k++ {
		p.timings[k] = Timing{
			Min:      defaultRanges[k][0],
			Max:      defaultRanges[k][1],
			Func:     Constant,
			WaveRate: 100,
			BPMMulti: 1,
		}
	}
	return p
}

// Get returns the timing for key
func (p Params) Get(key TimingKey) Timing {
	return p.timings[key]
}

// SetRange applies a one- or two-value duration setter. A single value replaces
// the minimum and keeps the previous maximum; a zero maximum falls back to the minimum.
func (p *Params) SetRange(key TimingKey, values []int) {
	if len(values) == 0 {
		return
	}
	t := &p.timings[key]
	t.Min = values[0]
	if len(values) > 1 {
		t.Max = values[1]
	} else if t.Max == 0 {
		t.Max = t.Min
	}
}

// SetWaveRate sets the wave oscillation rate for key
func (p *Params) SetWaveRate(key TimingKey, rate int) {
	p.timings[key].WaveRate = rate
}

// SetBPMMulti sets the BPM multiplier for key
func (p *Params) SetBPMMulti(key TimingKey, multi int) {
	p.timings[key].BPMMulti = multi
}

// SetFunc sets the timing function for key
func (p *Params) SetFunc(key TimingKey, tf TimingFunction) {
	p.timings[key].Func = tf
}

// Snapshot returns the parameters keyed by setter stem, in a form that marshals deterministically
func (p Params) Snapshot() map[string]Timing {
	out := make(map[string]Timing, timingKeyCount)
	for k := TimingKey(0); k < timingKeyCount; k++ {
		out[k.String()] = p.timings[k]
	}
	return out
}
