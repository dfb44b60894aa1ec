//go:generate tinygo flash -target=feather-rp2040

package main

import (
	"machine"
	"time"

	"github.com/dkonst/luxdeck/pkg/station"
	"github.com/dkonst/luxdeck/pkg/telemetry"
)

func main() {
	// Configure UART for telemetry output
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	// Configure the shared I2C bus
	i2c := machine.I2C0
	i2c.Configure(machine.I2CConfig{
		Frequency: I2C_FREQUENCY,
		SDA:       PIN_SDA,
		SCL:       PIN_SCL,
	})

	enc := telemetry.NewEncoder(uart)

	spectral := newSpectralSensor(i2c)
	uv := newUVSensor(i2c)
	light := newLightSensor(i2c)

	// Boot once; sensors that fail here stay excluded until power-cycle.
	reg := station.Boot(enc, spectral, uv, light)

	auto := station.NewAutoGain()
	cycle := station.NewCycle(reg, auto, spectral, uv, light)

	// Main loop
	for {
		start := time.Now()

		frame := cycle.Run()
		// A failed or partial write drops this cycle's record; the encoder
		// never flushes a fragment.
		_ = enc.EncodeFrame(frame)

		// Keep the cadence fixed regardless of how long the gain search took
		elapsed := time.Since(start)
		if elapsed < CYCLE_PERIOD {
			time.Sleep(CYCLE_PERIOD - elapsed)
		}
	}
}
