package caption

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fixedRand returns its values in order, modulo n, repeating the last one
type fixedRand struct {
	values []int
	calls  int
}

func (r *fixedRand) IntN(n int) int {
	if len(r.values) == 0 {
		return 0
	}
	i := r.calls
	if i >= len(r.values) {
		i = len(r.values) - 1
	}
	r.calls++
	return r.values[i] % n
}

func TestParseTimingFunction(t *testing.T) {
	tests := []struct {
		input string
		want  TimingFunction
		ok    bool
	}{
		{"constant", Constant, true},
		{"fixed", Constant, true},
		{"random", Random, true},
		{"wave", Wave, true},
		{"sin", Wave, true},
		{"BPM", BPM, true},
		{" scene ", Scene, true},
		{"sometimes", Constant, false},
		{"", Constant, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseTimingFunction(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	now := time.UnixMilli(0)

	tests := []struct {
		name string
		in   TimingInput
		want time.Duration
	}{
		{"constant uses min", TimingInput{Func: Constant, Min: 200, Max: 500}, 200 * time.Millisecond},
		{"random lower bound", TimingInput{Func: Random, Min: 200, Max: 500, Rand: &fixedRand{values: []int{0}}}, 200 * time.Millisecond},
		{"random upper bound", TimingInput{Func: Random, Min: 200, Max: 500, Rand: &fixedRand{values: []int{300}}}, 500 * time.Millisecond},
		{"random equal bounds", TimingInput{Func: Random, Min: 300, Max: 300}, 300 * time.Millisecond},
		{"random swapped bounds", TimingInput{Func: Random, Min: 500, Max: 200, Rand: &fixedRand{values: []int{0}}}, 200 * time.Millisecond},
		{"wave at phase zero", TimingInput{Func: Wave, Min: 100, Max: 200, WaveRate: 100, Now: now}, 100 * time.Millisecond},
		{"bpm 120", TimingInput{Func: BPM, Min: 100, Max: 900, BPM: 120, BPMMulti: 1}, 500 * time.Millisecond},
		{"bpm 120 doubled", TimingInput{Func: BPM, Min: 100, Max: 900, BPM: 120, BPMMulti: 2}, 250 * time.Millisecond},
		{"bpm zero multiplier", TimingInput{Func: BPM, BPM: 60, BPMMulti: 0}, 1000 * time.Millisecond},
		{"bpm unknown tempo", TimingInput{Func: BPM, Min: 321, Max: 900}, 321 * time.Millisecond},
		{"scene uses fallback", TimingInput{Func: Scene, Min: 1, Max: 2, Fallback: 4000}, 4 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.in))
		})
	}
}

func TestResolveWaveStaysInRange(t *testing.T) {
	for _, rate := range []int{0, 50, 100, 150} {
		for ms := int64(0); ms < 200_000; ms += 777 {
			got := Resolve(TimingInput{Func: Wave, Min: 300, Max: 800, WaveRate: rate, Now: time.UnixMilli(ms)})
			assert.GreaterOrEqual(t, got, 300*time.Millisecond)
			assert.LessOrEqual(t, got, 800*time.Millisecond)
		}
	}
}

func TestResolveWaveIsDeterministic(t *testing.T) {
	in := TimingInput{Func: Wave, Min: 100, Max: 900, WaveRate: 120, Now: time.UnixMilli(123_456)}
	assert.Equal(t, Resolve(in), Resolve(in))
}
