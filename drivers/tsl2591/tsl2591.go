// Package tsl2591 provides a driver for the TSL2591 high dynamic range
// luminosity sensor: a full-spectrum and an infrared photodiode, read as one
// combined 32-bit value, plus the datasheet lux derivation.
package tsl2591

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// Address is the fixed I2C address of the TSL2591.
const Address = 0x29

// Every register access goes through the command register; normal operation
// sets the CMD bit.
const commandBit = 0xA0

// Registers.
const (
	regEnable  = 0x00
	regConfig  = 0x01
	regID      = 0x12
	regStatus  = 0x13
	regC0DataL = 0x14
)

const (
	enablePON = 0x01
	enableAEN = 0x02

	statusAValid = 0x01

	idValue = 0x50

	// 100ms integration, medium gain (25x): the operating point the lux
	// constants below assume.
	configMediumGain100ms = 0x10

	integrationMS = 100
	gainFactor    = 25
	luxDF         = 408.0 // device factor from the datasheet lux equation
)

// Errors returned by the driver.
var (
	ErrNotFound = errors.New("tsl2591: wrong or missing device id")
	ErrTimeout  = errors.New("tsl2591: integration timeout")
)

// Device wraps an I2C connection to a TSL2591.
type Device struct {
	bus     drivers.I2C
	Address uint16

	buf [5]byte
}

// New creates a new TSL2591 handle. It does not touch the device.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address}
}

// Configure verifies the device identity, applies the gain/integration
// operating point and enables the ALS.
func (d *Device) Configure() error {
	id, err := d.readReg(regID)
	if err != nil {
		return err
	}
	if id != idValue {
		return ErrNotFound
	}

	if err := d.writeReg(regConfig, configMediumGain100ms); err != nil {
		return err
	}
	return d.writeReg(regEnable, enablePON|enableAEN)
}

// ReadLuminosity returns the combined measurement: channel 1 (infrared) in
// the high 16 bits, channel 0 (full spectrum) in the low 16 bits. It waits
// for a valid integration, bounded to ~300ms.
func (d *Device) ReadLuminosity() (uint32, error) {
	ready := false
	for i := 0; i < 60; i++ {
		st, err := d.readReg(regStatus)
		if err != nil {
			return 0, err
		}
		if st&statusAValid != 0 {
			ready = true
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !ready {
		return 0, ErrTimeout
	}

	// Both channels in one burst read; the chip latches CH1 when CH0's low
	// byte is read, so the pair is coherent.
	d.buf[0] = commandBit | regC0DataL
	if err := d.bus.Tx(d.Address, d.buf[:1], d.buf[1:5]); err != nil {
		return 0, err
	}
	ch0 := uint32(d.buf[1]) | uint32(d.buf[2])<<8
	ch1 := uint32(d.buf[3]) | uint32(d.buf[4])<<8
	return ch1<<16 | ch0, nil
}

// Lux derives illuminance from a split measurement using the datasheet
// formula. A zero full-spectrum count makes the formula degenerate (0/0);
// the NaN is returned as-is and sanitized by the acquisition layer.
func (d *Device) Lux(full, ir uint16) float32 {
	cpl := float32(integrationMS) * float32(gainFactor) / luxDF
	f := float32(full)
	i := float32(ir)
	return (f - i) * (1 - i/f) / cpl
}

func (d *Device) readReg(reg byte) (byte, error) {
	d.buf[0] = commandBit | reg
	if err := d.bus.Tx(d.Address, d.buf[:1], d.buf[1:2]); err != nil {
		return 0, err
	}
	return d.buf[1], nil
}

func (d *Device) writeReg(reg, val byte) error {
	d.buf[0] = commandBit | reg
	d.buf[1] = val
	return d.bus.Tx(d.Address, d.buf[:2], nil)
}
