package station

import (
	"github.com/chewxy/math32"

	"github.com/dkonst/luxdeck/pkg/telemetry"
)

// Boot initializes the three sensors exactly once each, in a fixed order,
// and records the outcomes in a fresh registry. A sensor failing to
// initialize is marked Failed and skipped for the process lifetime; the
// sequence always continues to the next sensor and never aborts the process.
//
// Progress is reported through the telemetry stream itself: one status or
// error record per sensor, then a summary record with all three flags.
// Transport errors during boot are dropped — there is no other channel to
// report them on.
func Boot(enc *telemetry.Encoder, spectral SpectralSensor, uv UVSensor, light LightSensor) *Registry {
	reg := NewRegistry()
	_ = enc.EncodeStatus("booting")

	if err := spectral.Init(); err != nil {
		reg.Set(SpectralBank, Failed)
		_ = enc.EncodeError(SpectralBank.String() + ": " + err.Error())
	} else {
		reg.Set(SpectralBank, Ready)
		// Put the hardware on the neutral step the controller starts from.
		// A failure here is not a readiness downgrade; the first saturated
		// or dim reading corrects it through the normal policy.
		_ = spectral.SetGain(NeutralGain)
		_ = enc.EncodeStatus(SpectralBank.String() + " online")
	}

	if err := uv.Init(); err != nil {
		reg.Set(UVAmbient, Failed)
		_ = enc.EncodeError(UVAmbient.String() + ": " + err.Error())
	} else {
		reg.Set(UVAmbient, Ready)
		_ = enc.EncodeStatus(UVAmbient.String() + " online")
	}

	if err := light.Init(); err != nil {
		reg.Set(Luminosity, Failed)
		_ = enc.EncodeError(Luminosity.String() + ": " + err.Error())
	} else {
		reg.Set(Luminosity, Ready)
		_ = enc.EncodeStatus(Luminosity.String() + " online")
	}

	_ = enc.EncodeReady(reg.IsReady(SpectralBank), reg.IsReady(UVAmbient), reg.IsReady(Luminosity))
	return reg
}

// Cycle is the per-tick orchestrator. It reads every Ready sensor, drives
// the auto-gain controller, and produces one frame. It performs no transport
// I/O of its own; the caller hands the frame to the encoder.
type Cycle struct {
	reg  *Registry
	auto *AutoGain

	spectral SpectralSensor
	uv       UVSensor
	light    LightSensor
}

// NewCycle assembles a cycle over a booted registry. The AutoGain is passed
// in rather than created here so that gain ownership stays with its
// controller across cycles.
func NewCycle(reg *Registry, auto *AutoGain, spectral SpectralSensor, uv UVSensor, light LightSensor) *Cycle {
	return &Cycle{
		reg:      reg,
		auto:     auto,
		spectral: spectral,
		uv:       uv,
		light:    light,
	}
}

// Run performs one acquisition cycle and returns the resulting frame.
//
// Read failures are transient: the affected fields are omitted (spectral) or
// left at their zero defaults (UV, luminosity) for this cycle only, with no
// retry beyond the gain-search bound and no readiness change.
func (c *Cycle) Run() telemetry.Frame {
	frame := telemetry.Frame{FW: telemetry.Firmware}

	if c.reg.IsReady(SpectralBank) {
		if counts, ok := c.readSpectral(); ok {
			frame.Spectral = &counts
		}
	}
	// Gain is reported even when the spectral read failed or the bank never
	// booted; it reflects the controller's carried state either way.
	frame.Gain = c.auto.Gain().String()

	if c.reg.IsReady(UVAmbient) {
		if uv, err := c.uv.ReadUV(); err == nil {
			frame.UV = uv
		}
	}

	if c.reg.IsReady(Luminosity) {
		if lum, err := c.light.ReadLuminosity(); err == nil {
			frame.Full = uint16(lum)
			frame.IR = uint16(lum >> 16)
			frame.Lux = sanitizeLux(c.light.Lux(frame.Full, frame.IR))
		}
	}

	return frame
}

// readSpectral acquires the channel bank, re-reading after every gain change
// until the reading settles or the read budget is spent. The last reading is
// accepted regardless of saturation state once the budget runs out.
func (c *Cycle) readSpectral() (telemetry.SpectralCounts, bool) {
	counts, err := c.spectral.ReadChannels()
	if err != nil {
		return counts, false
	}

	for reads := 1; reads < MaxGainReads; reads++ {
		if !c.auto.Adjust(counts) {
			break
		}
		if err := c.spectral.SetGain(c.auto.Gain()); err != nil {
			// Gain moved in the controller but not on the silicon; keep the
			// reading we have and let the next cycle reconcile.
			break
		}
		next, err := c.spectral.ReadChannels()
		if err != nil {
			break
		}
		counts = next
	}
	return counts, true
}

// sanitizeLux clamps non-finite lux values to zero so they never reach the
// encoder.
func sanitizeLux(lux float32) float32 {
	if math32.IsNaN(lux) || math32.IsInf(lux, 0) {
		return 0
	}
	return lux
}
