package ltr390

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBus struct {
	regs   map[byte]byte
	writes [][]byte
	txErr  error
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		regs: map[byte]byte{
			regPartID:     partIDValue,
			regMainStatus: statusDataReady,
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
	if len(r) > 0 {
		for i := range r {
			r[i] = b.regs[w[0]+byte(i)]
		}
		return nil
	}
	b.writes = append(b.writes, append([]byte(nil), w...))
	if len(w) == 2 {
		b.regs[w[0]] = w[1]
	}
	return nil
}

func TestConfigure(t *testing.T) {
	bus := newFakeBus()
	dev := New(bus)
	require.NoError(t, dev.Configure())

	// UV mode is committed at configure time and never toggled.
	assert.Equal(t, byte(ctrlEnable|ctrlUVSMode), bus.regs[regMainCtrl])
	assert.Equal(t, byte(measRate18bit100ms), bus.regs[regMeasRate])
	assert.Equal(t, byte(gainX3), bus.regs[regGain])
}

func TestConfigureWrongPartID(t *testing.T) {
	bus := newFakeBus()
	bus.regs[regPartID] = 0xA0
	dev := New(bus)
	assert.ErrorIs(t, dev.Configure(), ErrNotFound)
}

func TestReadUV(t *testing.T) {
	bus := newFakeBus()
	// 20-bit value 0x51234, little endian, upper nibble of the third byte
	// is undefined and must be masked.
	bus.regs[regUVSData0] = 0x34
	bus.regs[regUVSData0+1] = 0x12
	bus.regs[regUVSData0+2] = 0xF5

	dev := New(bus)
	require.NoError(t, dev.Configure())

	uv, err := dev.ReadUV()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x51234), uv)
}

func TestReadUVTimeout(t *testing.T) {
	bus := newFakeBus()
	bus.regs[regMainStatus] = 0
	dev := New(bus)
	require.NoError(t, dev.Configure())

	_, err := dev.ReadUV()
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestReadUVBusError(t *testing.T) {
	bus := newFakeBus()
	dev := New(bus)
	require.NoError(t, dev.Configure())

	bus.txErr = errors.New("i2c: arbitration lost")
	_, err := dev.ReadUV()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
}
