package main

import (
	"machine"
	"time"
)

const (
	// Cycle cadence. One cycle is dominated by the spectral acquisition
	// (~100ms per read, up to 5 reads during a gain search), so 500ms keeps
	// a margin even in the worst case.
	CYCLE_PERIOD = 500 * time.Millisecond

	// I2C configuration. All three sensors sit on the same STEMMA bus.
	I2C_FREQUENCY = 400 * machine.KHz

	// Serial configuration.
	// A full frame with all fields is ~170 bytes; 2 lines/sec is well under
	// 115200 baud (11,520 bytes/sec at 8N1).
	UART_BAUD_RATE = 115200
)

var (
	// I2C pins
	PIN_SDA = machine.I2C0_SDA_PIN
	PIN_SCL = machine.I2C0_SCL_PIN
)
