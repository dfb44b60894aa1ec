package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/dkonst/luxdeck/pkg/config"
	"github.com/dkonst/luxdeck/pkg/station"
	"github.com/dkonst/luxdeck/pkg/telemetry"
)

// Mock simulates a telemetry station for testing and development. It
// synthesizes frames, pushes them through the real wire encoding and the
// real merge path, and drives gain with the same controller the firmware
// uses, so the dashboard sees traffic indistinguishable from a device.
type Mock struct {
	cfg *config.MockConfig

	states    chan telemetry.State
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	done      chan struct{}

	// Simulation state
	auto      *station.AutoGain
	frame     int
	startTime time.Time
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			SamplePeriod:  500 * time.Millisecond,
			BaseLevel:     8000,
			DriftLevel:    4000,
			UVLevel:       3,
			SaturateEvery: 20,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:    cfg,
		states: make(chan telemetry.State, DefaultBufferSize),
		ctx:    ctx,
		cancel: cancel,
		auto:   station.NewAutoGain(),
	}
}

// Connect simulates connecting to the device: the boot records arrive first,
// then frames at the configured cadence.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.startTime = time.Now()
	m.frame = 0
	m.done = make(chan struct{})

	go m.generateStates()

	return nil
}

// Close stops the simulation and closes the states channel.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	// The generator owns the states channel; wait for it to exit and close
	// so Close never races a concurrent send.
	<-m.done
	m.connected = false

	return nil
}

// States returns the channel of merged state snapshots.
func (m *Mock) States() <-chan telemetry.State {
	return m.states
}

// IsConnected returns whether the mock is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// generateStates replays a synthetic boot sequence and then emits frames at
// the configured cadence, merging every line exactly as the serial reader
// does.
func (m *Mock) generateStates() {
	defer close(m.states)
	defer close(m.done)

	var state telemetry.State

	bootLines := []string{
		`{"status":"booting"}`,
		`{"status":"as7341 online"}`,
		`{"status":"ltr390 online"}`,
		`{"status":"tsl2591 online"}`,
		`{"status":"ready","as7341":true,"ltr390":true,"tsl2591":true}`,
	}
	for _, line := range bootLines {
		if err := state.Apply([]byte(line)); err != nil {
			continue
		}
		if !m.push(state) {
			return
		}
	}

	ticker := time.NewTicker(m.cfg.SamplePeriod)
	defer ticker.Stop()

	var buf []byte
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			buf = telemetry.AppendFrame(buf[:0], m.nextFrame())
			if err := state.Apply(buf); err != nil {
				continue
			}
			if !m.push(state) {
				return
			}
		}
	}
}

// push publishes a state copy without blocking. It returns false when the
// mock has been closed.
func (m *Mock) push(state telemetry.State) bool {
	select {
	case m.states <- state:
		return true
	case <-m.ctx.Done():
		return false
	default:
		// Channel full, drop the snapshot
		return true
	}
}

// nextFrame synthesizes one acquisition cycle: slowly drifting channels with
// a different phase per channel, an occasional saturated channel, and the
// shared auto-gain policy reacting to the result.
func (m *Mock) nextFrame() telemetry.Frame {
	m.frame++
	t := float32(time.Since(m.startTime).Seconds())

	var counts telemetry.SpectralCounts
	for i := range counts {
		phase := float32(i) * 0.7
		drift := float32(m.cfg.DriftLevel) * math32.Sin(t/7+phase)
		v := float32(m.cfg.BaseLevel) + drift
		if v < 0 {
			v = 0
		}
		counts[i] = uint16(v)
	}
	if m.cfg.SaturateEvery > 0 && m.frame%m.cfg.SaturateEvery == 0 {
		counts[3] = 65535
	}

	frame := telemetry.Frame{
		FW:   telemetry.Firmware,
		Gain: m.auto.Gain().String(),
		UV:   m.cfg.UVLevel,
	}

	dropSpectral := m.cfg.DropSpectralEvery > 0 && m.frame%m.cfg.DropSpectralEvery == 0
	if !dropSpectral {
		spectral := counts
		frame.Spectral = &spectral
		// The real cycle re-reads after a gain change; the mock lets the
		// adjustment take effect on the next frame instead.
		if m.auto.Adjust(counts) {
			frame.Gain = m.auto.Gain().String()
		}
	}

	full := counts.Max()
	ir := full / 3
	frame.Full = full
	frame.IR = ir
	if full > 0 {
		frame.Lux = (float32(full) - float32(ir)) * (1 - float32(ir)/float32(full)) / 6.0
	}

	return frame
}
