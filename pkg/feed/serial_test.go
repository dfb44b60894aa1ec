package feed

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkonst/luxdeck/pkg/telemetry"
)

type fakePort struct {
	io.Reader
	closed bool
}

func (f *fakePort) Close() error {
	f.closed = true
	return nil
}

// collect reads n states or fails the test after a timeout.
func collect(t *testing.T, states <-chan telemetry.State, n int) []telemetry.State {
	t.Helper()
	out := make([]telemetry.State, 0, n)
	deadline := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case s, ok := <-states:
			require.True(t, ok, "states channel closed early")
			out = append(out, s)
		case <-deadline:
			t.Fatalf("timed out after %d of %d states", len(out), n)
		}
	}
	return out
}

func TestNewDefaults(t *testing.T) {
	d := New("/dev/ttyACM0", 0, 0)
	assert.Equal(t, DefaultBaudRate, d.baudRate)
	assert.Equal(t, DefaultBufferSize, d.bufSize)
	assert.False(t, d.IsConnected())
}

func TestCloseBeforeConnect(t *testing.T) {
	d := New("/dev/ttyACM0", 0, 0)
	assert.NoError(t, d.Close())
}

func TestReadStatesMergesLines(t *testing.T) {
	input := strings.Join([]string{
		`{"fw":"luxdeck-1.2.0","gain":"16x","F1":10,"F2":20,"F3":30,"F4":40,"F5":50,"F6":60,"F7":70,"F8":80,"UV":1,"ALS":0,"TSL_Lux":12.34,"TSL_IR":5,"TSL_Full":15}`,
		`{"UV":5}`,
	}, "\n") + "\n"

	d := New("test", 0, 10)
	go d.readStates(strings.NewReader(input))

	states := collect(t, d.States(), 2)

	assert.Equal(t, uint16(10), states[0].Spectral[0])
	assert.Equal(t, uint32(1), states[0].UV)

	// The second line carried only UV; everything else is retained.
	assert.Equal(t, uint32(5), states[1].UV)
	assert.Equal(t, uint16(10), states[1].Spectral[0])
	assert.Equal(t, "16x", states[1].Gain)
	assert.InDelta(t, 12.34, states[1].Lux, 0.001)
}

func TestReadStatesSkipsBadLines(t *testing.T) {
	input := strings.Join([]string{
		`{"F1":10}`,
		`{"F1":12`, // truncated, must be skipped
		`not json at all`,
		`{"UV":5}`,
	}, "\n") + "\n"

	d := New("test", 0, 10)
	go d.readStates(strings.NewReader(input))

	states := collect(t, d.States(), 2)
	assert.Equal(t, uint16(10), states[1].Spectral[0], "bad lines leave the state untouched")
	assert.Equal(t, uint32(5), states[1].UV)
}

func TestReadStatesBootSequence(t *testing.T) {
	input := strings.Join([]string{
		`{"status":"booting"}`,
		`{"error":"ltr390: bad part id"}`,
		`{"status":"ready","as7341":true,"ltr390":false,"tsl2591":true}`,
	}, "\n") + "\n"

	d := New("test", 0, 10)
	go d.readStates(strings.NewReader(input))

	states := collect(t, d.States(), 3)
	assert.Equal(t, "booting", states[0].Status)
	assert.Equal(t, "ltr390: bad part id", states[1].LastError)
	assert.Equal(t, "ready", states[2].Status)
	assert.True(t, states[2].AS7341)
	assert.False(t, states[2].LTR390)
	assert.True(t, states[2].TSL2591)
}

func TestReadStatesStopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	d := New("test", 0, 10)

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.readStates(pr)
	}()

	_, err := pw.Write([]byte(`{"UV":1}` + "\n"))
	require.NoError(t, err)
	collect(t, d.States(), 1)

	d.cancel()
	_, _ = pw.Write([]byte(`{"UV":2}` + "\n"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not stop after cancel")
	}
	pw.Close()
}
