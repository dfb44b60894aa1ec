// Package station implements the acquisition-and-control loop of the light
// telemetry station: per-sensor readiness established once at boot, the
// bounded auto-gain search over the spectral channel bank, and assembly of
// one telemetry frame per cycle.
//
// The package never touches hardware directly. Each physical sensor is
// presented as a small capability interface so the loop can run against the
// real I2C drivers on the device and against fakes in tests.
package station

import "github.com/dkonst/luxdeck/pkg/telemetry"

// SensorID identifies one of the three light-sensing subsystems. The set is
// fixed; the loop is not extensible at runtime.
type SensorID uint8

const (
	// SpectralBank is the 8-channel spectral sensor (AS7341).
	SpectralBank SensorID = iota
	// UVAmbient is the UV / ambient-light sensor (LTR390).
	UVAmbient
	// Luminosity is the broadband luminosity sensor (TSL2591).
	Luminosity

	numSensors
)

// String returns the part name used in boot status records.
func (id SensorID) String() string {
	switch id {
	case SpectralBank:
		return "as7341"
	case UVAmbient:
		return "ltr390"
	case Luminosity:
		return "tsl2591"
	}
	return "unknown"
}

// Readiness is the boot outcome of one sensor.
type Readiness uint8

const (
	// NotAttempted means initialization has not run yet.
	NotAttempted Readiness = iota
	// Ready means initialization succeeded; the sensor is read every cycle.
	Ready
	// Failed means initialization failed. The sensor stays excluded for the
	// process lifetime; a sensor failing at boot is never re-probed, trading
	// resilience for deterministic cycle timing.
	Failed
)

// Registry holds the per-sensor readiness flags. It is populated exactly
// once by Boot and only consulted afterwards; nothing downgrades or restores
// a flag per-cycle.
type Registry struct {
	state [numSensors]Readiness
}

// NewRegistry returns a registry with all sensors NotAttempted.
func NewRegistry() *Registry {
	return &Registry{}
}

// Set records the boot outcome for a sensor.
func (r *Registry) Set(id SensorID, s Readiness) {
	r.state[id] = s
}

// Get returns the recorded readiness of a sensor.
func (r *Registry) Get(id SensorID) Readiness {
	return r.state[id]
}

// IsReady reports whether the sensor booted successfully.
func (r *Registry) IsReady(id SensorID) bool {
	return r.state[id] == Ready
}

// SpectralSensor is the capability surface of the 8-channel spectral bank.
type SpectralSensor interface {
	// Init brings the sensor up. Called exactly once, at boot.
	Init() error
	// SetGain applies a gain step to the analog front end.
	SetGain(g Gain) error
	// ReadChannels acquires all 8 channel counts at the current gain.
	ReadChannels() (telemetry.SpectralCounts, error)
}

// UVSensor is the capability surface of the UV sensor. The device commits to
// UV mode at boot; the ambient-light quantity of the part is left unread
// rather than toggling modes every cycle, which would double settling time
// and produce stale UV/ALS pairs.
type UVSensor interface {
	Init() error
	// ReadUV returns the current UV index count.
	ReadUV() (uint32, error)
}

// LightSensor is the capability surface of the broadband luminosity sensor.
type LightSensor interface {
	Init() error
	// ReadLuminosity returns the combined measurement: infrared count in the
	// high 16 bits, full-spectrum count in the low 16 bits.
	ReadLuminosity() (uint32, error)
	// Lux derives illuminance from a split measurement using the sensor's
	// documented formula. The result may be non-finite (e.g. full == 0); the
	// caller sanitizes.
	Lux(full, ir uint16) float32
}
