package station

import "github.com/dkonst/luxdeck/pkg/telemetry"

// Gain is an index into the spectral sensor's gain ladder.
type Gain uint8

// The AS7341 exposes 11 discrete gain steps, 0.5x through 512x.
const (
	MinGain Gain = 0
	MaxGain Gain = 10
	// NeutralGain is the middle of the ladder (16x), the starting point after
	// every boot. Gain is not persisted across restarts.
	NeutralGain Gain = 5
)

var gainNames = [...]string{
	"0.5x", "1x", "2x", "4x", "8x", "16x", "32x", "64x", "128x", "256x", "512x",
}

// String renders the gain as its multiplier label, e.g. "16x".
func (g Gain) String() string {
	if g > MaxGain {
		return "invalid"
	}
	return gainNames[g]
}

// Multiplier returns the amplification factor for this gain step.
func (g Gain) Multiplier() float32 {
	return 0.5 * float32(uint32(1)<<g)
}

// Auto-gain policy thresholds, in raw 16-bit counts.
const (
	// SaturationThreshold marks a channel as clipped. Saturation corrupts
	// all 8 channels at once, so backing off takes priority over low signal.
	SaturationThreshold = 60000
	// LowSignalThreshold marks the whole reading as too dim to be useful.
	LowSignalThreshold = 1000
	// MaxGainReads bounds the read-adjust iterations in one cycle. Each
	// re-read costs real acquisition time inside the cycle's soft real-time
	// budget; after the bound the last reading is accepted as-is.
	MaxGainReads = 5
)

// AutoGain owns the spectral gain index and the policy that moves it. The
// index is the only state carried from cycle to cycle, and Adjust is the
// only operation that mutates it.
type AutoGain struct {
	gain Gain
}

// NewAutoGain returns a controller starting at the neutral gain.
func NewAutoGain() *AutoGain {
	return &AutoGain{gain: NeutralGain}
}

// Gain returns the current gain step.
func (a *AutoGain) Gain() Gain {
	return a.gain
}

// Adjust evaluates one spectral reading and moves the gain at most one step.
// It returns true when the gain changed, signalling the cycle to re-read.
//
// Single-step movement avoids overshoot oscillation between the two
// thresholds; the saturation branch is checked first because clipping
// invalidates the reading outright while low signal only costs precision.
func (a *AutoGain) Adjust(counts telemetry.SpectralCounts) bool {
	max := counts.Max()
	switch {
	case max >= SaturationThreshold && a.gain > MinGain:
		a.gain--
		return true
	case max < LowSignalThreshold && a.gain < MaxGain:
		a.gain++
		return true
	}
	return false
}
