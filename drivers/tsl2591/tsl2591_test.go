package tsl2591

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBus struct {
	regs  map[byte]byte
	txErr error
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		regs: map[byte]byte{
			regID:     idValue,
			regStatus: statusAValid,
		},
	}
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	if b.txErr != nil {
		return b.txErr
	}
	if addr != Address {
		return errors.New("no ack")
	}
	reg := w[0] &^ commandBit
	if len(r) > 0 {
		for i := range r {
			r[i] = b.regs[reg+byte(i)]
		}
		return nil
	}
	if len(w) == 2 {
		b.regs[reg] = w[1]
	}
	return nil
}

func (b *fakeBus) setChannels(ch0, ch1 uint16) {
	b.regs[regC0DataL] = byte(ch0)
	b.regs[regC0DataL+1] = byte(ch0 >> 8)
	b.regs[regC0DataL+2] = byte(ch1)
	b.regs[regC0DataL+3] = byte(ch1 >> 8)
}

func TestConfigure(t *testing.T) {
	bus := newFakeBus()
	dev := New(bus)
	require.NoError(t, dev.Configure())

	assert.Equal(t, byte(enablePON|enableAEN), bus.regs[regEnable])
	assert.Equal(t, byte(configMediumGain100ms), bus.regs[regConfig])
}

func TestConfigureWrongID(t *testing.T) {
	bus := newFakeBus()
	bus.regs[regID] = 0x39
	dev := New(bus)
	assert.ErrorIs(t, dev.Configure(), ErrNotFound)
}

func TestReadLuminosity(t *testing.T) {
	tests := []struct {
		name     string
		ch0, ch1 uint16
		want     uint32
	}{
		{name: "typical daylight", ch0: 2048, ch1: 1024, want: 1024<<16 | 2048},
		{name: "dark", ch0: 0, ch1: 0, want: 0},
		{name: "saturated", ch0: 0xFFFF, ch1: 0xFFFF, want: 0xFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := newFakeBus()
			bus.setChannels(tt.ch0, tt.ch1)
			dev := New(bus)
			require.NoError(t, dev.Configure())

			lum, err := dev.ReadLuminosity()
			require.NoError(t, err)
			assert.Equal(t, tt.want, lum)

			// Split back the way the acquisition layer does.
			assert.Equal(t, tt.ch0, uint16(lum))
			assert.Equal(t, tt.ch1, uint16(lum>>16))
		})
	}
}

func TestReadLuminosityTimeout(t *testing.T) {
	bus := newFakeBus()
	bus.regs[regStatus] = 0
	dev := New(bus)
	require.NoError(t, dev.Configure())

	_, err := dev.ReadLuminosity()
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestLux(t *testing.T) {
	dev := New(newFakeBus())

	// cpl = 100 * 25 / 408; lux = (full-ir) * (1 - ir/full) / cpl
	cpl := float32(integrationMS) * float32(gainFactor) / float32(luxDF)
	lux := dev.Lux(1000, 500)
	assert.InDelta(t, 500.0*0.5/float64(cpl), float64(lux), 0.01)

	assert.Greater(t, dev.Lux(40000, 100), dev.Lux(4000, 100), "more light, more lux")
}

func TestLuxDegeneratesToNaNOnZeroFull(t *testing.T) {
	dev := New(newFakeBus())
	lux := dev.Lux(0, 0)
	assert.True(t, math32.IsNaN(lux), "0/0 in the formula must surface as NaN for the caller to sanitize")
}
