// Package ltr390 provides a driver for the LTR390 UV / ambient light
// sensor.
//
// The part measures either UV or ambient light, not both at once; switching
// costs a full integration period. This driver commits to UV mode at
// Configure time and only exposes the UV count.
package ltr390

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// Address is the fixed I2C address of the LTR390.
const Address = 0x53

// Registers.
const (
	regMainCtrl   = 0x00
	regMeasRate   = 0x04
	regGain       = 0x05
	regPartID     = 0x06
	regMainStatus = 0x07
	regUVSData0   = 0x10
)

const (
	ctrlEnable  = 0x02
	ctrlUVSMode = 0x08

	statusDataReady = 0x08

	partIDValue = 0xB2

	// 18-bit resolution, 100ms rate, gain x3: the vendor's UVI-scaled
	// operating point.
	measRate18bit100ms = 0x22
	gainX3             = 0x01
)

// Errors returned by the driver.
var (
	ErrNotFound = errors.New("ltr390: wrong or missing part id")
	ErrTimeout  = errors.New("ltr390: measurement timeout")
)

// Device wraps an I2C connection to an LTR390.
type Device struct {
	bus     drivers.I2C
	Address uint16

	buf [4]byte
}

// New creates a new LTR390 handle. It does not touch the device.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address}
}

// Configure verifies the part identity and enables continuous UV
// measurement.
func (d *Device) Configure() error {
	id, err := d.readReg(regPartID)
	if err != nil {
		return err
	}
	if id != partIDValue {
		return ErrNotFound
	}

	if err := d.writeReg(regMeasRate, measRate18bit100ms); err != nil {
		return err
	}
	if err := d.writeReg(regGain, gainX3); err != nil {
		return err
	}
	return d.writeReg(regMainCtrl, ctrlEnable|ctrlUVSMode)
}

// ReadUV returns the latest 20-bit UV count. It waits for a fresh sample,
// bounded to ~300ms (two 100ms integration periods plus margin).
func (d *Device) ReadUV() (uint32, error) {
	ready := false
	for i := 0; i < 60; i++ {
		st, err := d.readReg(regMainStatus)
		if err != nil {
			return 0, err
		}
		if st&statusDataReady != 0 {
			ready = true
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !ready {
		return 0, ErrTimeout
	}

	d.buf[0] = regUVSData0
	if err := d.bus.Tx(d.Address, d.buf[:1], d.buf[1:4]); err != nil {
		return 0, err
	}
	uv := uint32(d.buf[1]) | uint32(d.buf[2])<<8 | uint32(d.buf[3]&0x0F)<<16
	return uv, nil
}

func (d *Device) readReg(reg byte) (byte, error) {
	d.buf[0] = reg
	if err := d.bus.Tx(d.Address, d.buf[:1], d.buf[1:2]); err != nil {
		return 0, err
	}
	return d.buf[1], nil
}

func (d *Device) writeReg(reg, val byte) error {
	d.buf[0] = reg
	d.buf[1] = val
	return d.bus.Tx(d.Address, d.buf[:2], nil)
}
