package feed

import "github.com/dkonst/luxdeck/pkg/telemetry"

// Device defines the interface for telemetry sources (real or mocked).
type Device interface {
	Connect() error
	Close() error
	States() <-chan telemetry.State
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
