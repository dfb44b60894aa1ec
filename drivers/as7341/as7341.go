// Package as7341 provides a driver for the AS7341 11-channel spectral
// sensor, exposing the 8 narrow-band channels F1 (415nm) through F8 (680nm).
//
// The chip multiplexes its photodiodes onto 6 ADCs through the SMUX, so one
// full spectral reading takes two acquisition passes: F1..F4 first, then
// F5..F8. ReadChannels hides the sequencing and returns all 8 counts.
//
// All waits are bounded; a stuck conversion surfaces as ErrTimeout rather
// than stalling the caller's loop.
package as7341

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// Address is the fixed I2C address of the AS7341.
const Address = 0x39

// Registers.
const (
	regEnable  = 0x80
	regATime   = 0x81
	regID      = 0x92
	regStatus2 = 0xA3
	regCfg1    = 0xAA
	regCfg6    = 0xAF
	regAStepL  = 0xCA
	regAStepH  = 0xCB
	regCh0L    = 0x95
)

// Enable register bits.
const (
	enablePON    = 0x01
	enableSPEN   = 0x02
	enableSMUXEN = 0x10
)

const (
	statusAValid  = 0x40
	cfg6SmuxWrite = 0x10 // write SMUX configuration from RAM
	idValue       = 0x09 // part number, ID register bits 7:2
)

// NumGains is the size of the gain ladder (0.5x .. 512x).
const NumGains = 11

// Errors returned by the driver.
var (
	ErrNotFound = errors.New("as7341: wrong or missing device id")
	ErrTimeout  = errors.New("as7341: conversion timeout")
	ErrBadGain  = errors.New("as7341: gain code out of range")
)

// SMUX pixel maps routing the diodes onto ADC0..ADC3 plus clear and NIR.
// Values per the vendor's published configuration; the clear and NIR counts
// are acquired alongside but discarded by ReadChannels.
var (
	smuxLow = [20]byte{
		0x30, 0x01, 0x00, 0x00, 0x00, 0x42, 0x00, 0x00, 0x50, 0x00,
		0x00, 0x00, 0x20, 0x04, 0x00, 0x30, 0x01, 0x50, 0x00, 0x06,
	}
	smuxHigh = [20]byte{
		0x00, 0x00, 0x00, 0x40, 0x02, 0x00, 0x10, 0x03, 0x50, 0x10,
		0x03, 0x00, 0x00, 0x00, 0x24, 0x00, 0x00, 0x50, 0x00, 0x06,
	}
)

// Device wraps an I2C connection to an AS7341. The I2C bus must already be
// configured.
type Device struct {
	bus     drivers.I2C
	Address uint16

	buf [13]byte // register address + 6 channels x 2 bytes
}

// New creates a new AS7341 handle. It does not touch the device.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address}
}

// Configure verifies the device identity, powers it up and applies the
// integration timing (ATIME=29, ASTEP=599: ~50ms per acquisition pass).
func (d *Device) Configure() error {
	id, err := d.readReg(regID)
	if err != nil {
		return err
	}
	if id>>2 != idValue {
		return ErrNotFound
	}

	if err := d.writeReg(regEnable, enablePON); err != nil {
		return err
	}
	if err := d.writeReg(regATime, 29); err != nil {
		return err
	}
	if err := d.writeReg(regAStepL, 0x57); err != nil { // 599 & 0xFF
		return err
	}
	return d.writeReg(regAStepH, 0x02)
}

// SetGain applies a gain code 0..10 (0.5x .. 512x) to the analog front end.
func (d *Device) SetGain(code uint8) error {
	if code >= NumGains {
		return ErrBadGain
	}
	return d.writeReg(regCfg1, code)
}

// ReadChannels acquires all 8 spectral channels at the current gain. The two
// SMUX passes make this the most expensive read on the bus, on the order of
// 100ms with the default timing.
func (d *Device) ReadChannels() ([8]uint16, error) {
	var out [8]uint16

	low, err := d.acquire(&smuxLow)
	if err != nil {
		return out, err
	}
	high, err := d.acquire(&smuxHigh)
	if err != nil {
		return out, err
	}

	copy(out[0:4], low[0:4])
	copy(out[4:8], high[0:4])
	return out, nil
}

// acquire runs one SMUX pass: load the pixel map, trigger the mux, start the
// spectral engine, wait for valid data and read the 6 ADC counts.
func (d *Device) acquire(smux *[20]byte) ([6]uint16, error) {
	var counts [6]uint16

	// Spectral engine must be idle while the SMUX reconfigures.
	if err := d.writeReg(regEnable, enablePON); err != nil {
		return counts, err
	}
	if err := d.writeReg(regCfg6, cfg6SmuxWrite); err != nil {
		return counts, err
	}
	d.buf[0] = 0x00
	copy(d.buf[1:], smux[:12])
	if err := d.bus.Tx(d.Address, d.buf[:13], nil); err != nil {
		return counts, err
	}
	d.buf[0] = 0x0C
	copy(d.buf[1:], smux[12:])
	if err := d.bus.Tx(d.Address, d.buf[:9], nil); err != nil {
		return counts, err
	}
	if err := d.writeReg(regEnable, enablePON|enableSMUXEN); err != nil {
		return counts, err
	}
	if err := d.waitClear(regEnable, enableSMUXEN); err != nil {
		return counts, err
	}

	if err := d.writeReg(regEnable, enablePON|enableSPEN); err != nil {
		return counts, err
	}
	if err := d.waitSet(regStatus2, statusAValid); err != nil {
		return counts, err
	}

	d.buf[0] = regCh0L
	if err := d.bus.Tx(d.Address, d.buf[:1], d.buf[1:13]); err != nil {
		return counts, err
	}
	for i := range counts {
		counts[i] = uint16(d.buf[1+2*i]) | uint16(d.buf[2+2*i])<<8
	}
	return counts, nil
}

// waitSet polls until mask reads as set, bounded to ~200ms.
func (d *Device) waitSet(reg, mask byte) error {
	for i := 0; i < 100; i++ {
		v, err := d.readReg(reg)
		if err != nil {
			return err
		}
		if v&mask != 0 {
			return nil
		}
		time.Sleep(2 * time.Millisecond)
	}
	return ErrTimeout
}

// waitClear polls until mask reads as clear, bounded to ~200ms.
func (d *Device) waitClear(reg, mask byte) error {
	for i := 0; i < 100; i++ {
		v, err := d.readReg(reg)
		if err != nil {
			return err
		}
		if v&mask == 0 {
			return nil
		}
		time.Sleep(2 * time.Millisecond)
	}
	return ErrTimeout
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
