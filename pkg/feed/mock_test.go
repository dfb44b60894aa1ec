package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkonst/luxdeck/pkg/config"
	"github.com/dkonst/luxdeck/pkg/telemetry"
)

func mockCfg() *config.MockConfig {
	return &config.MockConfig{
		SamplePeriod:  5 * time.Millisecond,
		BaseLevel:     8000,
		DriftLevel:    2000,
		UVLevel:       3,
		SaturateEvery: 0,
	}
}

func TestMockBootSequenceFirst(t *testing.T) {
	mock := NewMock(mockCfg())
	require.NoError(t, mock.Connect())
	defer mock.Close()

	states := collect(t, mock.States(), 6)

	assert.Equal(t, "booting", states[0].Status)
	assert.Equal(t, "ready", states[4].Status)
	assert.True(t, states[4].AS7341)
	assert.True(t, states[4].LTR390)
	assert.True(t, states[4].TSL2591)

	// The first real frame follows the boot records.
	frame := states[5]
	assert.Equal(t, telemetry.Firmware, frame.FW)
	assert.Equal(t, "16x", frame.Gain)
	assert.True(t, frame.HasSpectral)
	assert.Equal(t, uint32(3), frame.UV)
}

func TestMockDoubleConnect(t *testing.T) {
	mock := NewMock(mockCfg())
	require.NoError(t, mock.Connect())
	defer mock.Close()
	assert.Error(t, mock.Connect())
}

func TestMockSaturationMovesGain(t *testing.T) {
	cfg := mockCfg()
	cfg.SaturateEvery = 3
	mock := NewMock(cfg)
	require.NoError(t, mock.Connect())
	defer mock.Close()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case s, ok := <-mock.States():
			require.True(t, ok)
			if s.Gain == "8x" {
				return // stepped down from the neutral 16x
			}
		case <-deadline:
			t.Fatal("gain never reacted to the saturated channel")
		}
	}
}

func TestMockDropSpectralRetainsChannels(t *testing.T) {
	cfg := mockCfg()
	cfg.DropSpectralEvery = 2
	mock := NewMock(cfg)
	require.NoError(t, mock.Connect())
	defer mock.Close()

	states := collect(t, mock.States(), 9) // 5 boot records + 4 frames
	frames := states[5:]

	for _, f := range frames {
		assert.True(t, f.HasSpectral, "channels persist across dropped spectral reads")
		assert.NotZero(t, f.Spectral[0])
	}
}

func TestMockLuxIsFinite(t *testing.T) {
	mock := NewMock(mockCfg())
	require.NoError(t, mock.Connect())
	defer mock.Close()

	states := collect(t, mock.States(), 8)
	for _, s := range states[5:] {
		assert.False(t, s.Lux != s.Lux, "lux must never be NaN")
	}
}

// TestMockGracefulShutdown tests that the mock closes its states channel
// when Close() is called.
func TestMockGracefulShutdown(t *testing.T) {
	mock := NewMock(mockCfg())
	require.NoError(t, mock.Connect())

	states := mock.States()

	received := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range states {
			received++
			if received == 3 {
				mock.Close()
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("States channel did not close within timeout")
	}

	assert.GreaterOrEqual(t, received, 3, "Should receive states before channel closes")
	assert.False(t, mock.IsConnected())

	_, ok := <-states
	assert.False(t, ok, "Channel should be closed")
}
