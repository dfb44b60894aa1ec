package telemetry

// Firmware is the version string reported in every telemetry record.
const Firmware = "luxdeck-1.2.0"

// Channel count and wavelength labels for the spectral bank.
const NumChannels = 8

// Wavelengths holds the nominal center wavelength (nm) of each spectral
// channel, F1 through F8.
var Wavelengths = [NumChannels]uint16{415, 445, 480, 515, 555, 590, 630, 680}

// SpectralCounts holds one read of the 8 spectral channels (raw 16-bit ADC
// counts, F1=415nm ... F8=680nm).
type SpectralCounts [NumChannels]uint16

// Max returns the largest channel count in the reading.
func (s SpectralCounts) Max() uint16 {
	max := s[0]
	for _, v := range s[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Frame is one acquisition cycle's aggregated sensor snapshot, the unit of
// transmission. It is created by the acquisition cycle, encoded, and
// discarded; nothing retains a Frame across cycles.
//
// Spectral is nil when the spectral read did not succeed this cycle; the
// encoder then omits F1..F8 entirely. The UV, ALS and TSL_* fields are
// always emitted and default to zero when their sensor is not ready. That
// asymmetry is deliberate: the dashboard's merge rules depend on which
// fields omit and which zero-default, so it must not be "fixed".
type Frame struct {
	FW       string
	Gain     string
	Spectral *SpectralCounts
	UV       uint32
	ALS      uint32
	Lux      float32 // always finite; the cycle sanitizes NaN/Inf to 0
	IR       uint16
	Full     uint16
}
