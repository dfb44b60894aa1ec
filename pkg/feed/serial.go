// Package feed connects the dashboard to a telemetry station, over a serial
// port or a mocked device, and turns the line stream into merged state
// snapshots.
//
// Every received line is folded into a telemetry.State and a copy of the
// updated state is published on a buffered channel. Consumers therefore
// always see the device's full last-known state, even though individual
// lines may carry only a subset of fields.
package feed

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"go.bug.st/serial"

	"github.com/dkonst/luxdeck/pkg/telemetry"
)

const (
	// DefaultBaudRate is the rate the station firmware configures its UART to.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the states channel buffer.
	DefaultBufferSize = 100
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Serial represents a connection to the station over a serial port.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn       io.ReadCloser
	states     chan telemetry.State
	mu         sync.RWMutex
	ctx        context.Context
	cancel     context.CancelFunc
	connected  bool
	readerDone chan struct{}
}

// New creates a new Serial device for the given port, baud rate and channel
// buffer size. Zero values select the defaults.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		states:   make(chan telemetry.State, bufSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Connect opens the serial port and starts merging telemetry lines.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true
	d.readerDone = make(chan struct{})

	go func() {
		defer close(d.readerDone)
		d.readStates(port)
	}()

	return nil
}

// Close closes the connection and stops the reader.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	// Cancel context to stop reading goroutine
	d.cancel()

	// Closing the port unblocks a reader stuck in Scan.
	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	// Wait for the reader before closing the channel it sends on.
	if d.readerDone != nil {
		<-d.readerDone
	}

	d.connected = false

	close(d.states)

	return nil
}

// States returns the channel of merged state snapshots.
func (d *Serial) States() <-chan telemetry.State {
	return d.states
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readStates reads lines from the port, merges each into the running state
// and publishes a copy. Unparseable lines are logged and skipped; the state
// keeps its prior values, which is exactly the consumer contract.
func (d *Serial) readStates(conn io.Reader) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readStates: %v", r)
		}
	}()

	var state telemetry.State

	scanner := bufio.NewScanner(conn)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil && err != io.EOF {
					log.Printf("Error reading from serial port: %v", err)
				}
				return
			}

			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			if err := state.Apply(line); err != nil {
				log.Printf("Skipping telemetry line: %v", err)
				continue
			}

			// Publish a copy (non-blocking)
			select {
			case d.states <- state:
			case <-d.ctx.Done():
				return
			default:
				// Channel full, log and skip
				log.Printf("States channel full, dropping snapshot")
			}
		}
	}
}
