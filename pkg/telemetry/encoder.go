package telemetry

import (
	"fmt"
	"io"
	"strconv"

	"github.com/chewxy/math32"
)

// Encoder writes telemetry records to a byte-oriented transport, one JSON
// object per line. Every record is assembled in an internal buffer first and
// handed to the transport in a single Write, so the stream never carries a
// partial record: a failed Write drops the whole record for that cycle.
//
// The encoder builds JSON by hand rather than through encoding/json. The
// same code runs on the device under TinyGo, where reflection-based
// marshaling is a poor fit, and hand assembly keeps field order fixed so
// identical frames encode to identical bytes.
type Encoder struct {
	w   io.Writer
	buf []byte
}

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, buf: make([]byte, 0, 256)}
}

// EncodeFrame emits one telemetry frame as a single line.
func (e *Encoder) EncodeFrame(f Frame) error {
	e.buf = AppendFrame(e.buf[:0], f)
	return e.flush()
}

// EncodeStatus emits a boot-phase status record: {"status":"..."}.
func (e *Encoder) EncodeStatus(msg string) error {
	e.buf = append(e.buf[:0], `{"status":`...)
	e.buf = appendString(e.buf, msg)
	e.buf = append(e.buf, "}\n"...)
	return e.flush()
}

// EncodeError emits a boot-phase error record: {"error":"..."}.
func (e *Encoder) EncodeError(msg string) error {
	e.buf = append(e.buf[:0], `{"error":`...)
	e.buf = appendString(e.buf, msg)
	e.buf = append(e.buf, "}\n"...)
	return e.flush()
}

// EncodeReady emits the readiness summary record closing the boot phase.
func (e *Encoder) EncodeReady(spectral, uv, light bool) error {
	e.buf = append(e.buf[:0], `{"status":"ready","as7341":`...)
	e.buf = strconv.AppendBool(e.buf, spectral)
	e.buf = append(e.buf, `,"ltr390":`...)
	e.buf = strconv.AppendBool(e.buf, uv)
	e.buf = append(e.buf, `,"tsl2591":`...)
	e.buf = strconv.AppendBool(e.buf, light)
	e.buf = append(e.buf, "}\n"...)
	return e.flush()
}

// flush writes the buffered record in one call. Short writes count as
// failures; the caller gets the error and the record is not retried.
func (e *Encoder) flush() error {
	n, err := e.w.Write(e.buf)
	if err != nil {
		return fmt.Errorf("telemetry write failed: %w", err)
	}
	if n != len(e.buf) {
		return fmt.Errorf("telemetry short write: %d of %d bytes", n, len(e.buf))
	}
	return nil
}

// AppendFrame appends the canonical line encoding of f to dst, including the
// trailing newline, and returns the extended slice.
//
// Field presence follows the wire contract: fw and gain always; F1..F8 only
// when a spectral reading is present; UV, ALS, TSL_Lux, TSL_IR and TSL_Full
// always, zero-valued when their source was unavailable.
func AppendFrame(dst []byte, f Frame) []byte {
	dst = append(dst, `{"fw":`...)
	dst = appendString(dst, f.FW)
	dst = append(dst, `,"gain":`...)
	dst = appendString(dst, f.Gain)
	if f.Spectral != nil {
		for i, v := range f.Spectral {
			dst = append(dst, `,"F`...)
			dst = strconv.AppendInt(dst, int64(i+1), 10)
			dst = append(dst, `":`...)
			dst = strconv.AppendUint(dst, uint64(v), 10)
		}
	}
	dst = append(dst, `,"UV":`...)
	dst = strconv.AppendUint(dst, uint64(f.UV), 10)
	dst = append(dst, `,"ALS":`...)
	dst = strconv.AppendUint(dst, uint64(f.ALS), 10)
	dst = append(dst, `,"TSL_Lux":`...)
	dst = appendLux(dst, f.Lux)
	dst = append(dst, `,"TSL_IR":`...)
	dst = strconv.AppendUint(dst, uint64(f.IR), 10)
	dst = append(dst, `,"TSL_Full":`...)
	dst = strconv.AppendUint(dst, uint64(f.Full), 10)
	dst = append(dst, "}\n"...)
	return dst
}

// appendLux formats a lux value. NaN and infinities are not valid JSON
// number literals; they are clamped to zero here as a last line of defense
// even though the acquisition cycle sanitizes them first.
func appendLux(dst []byte, lux float32) []byte {
	if math32.IsNaN(lux) || math32.IsInf(lux, 0) {
		lux = 0
	}
	return strconv.AppendFloat(dst, float64(lux), 'f', 2, 32)
}

// appendString appends s as a quoted JSON string. Telemetry strings are
// short ASCII identifiers, so only the mandatory escapes are handled.
func appendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			dst = append(dst, '\\', c)
		case c < 0x20:
			dst = append(dst, `\u00`...)
			const hex = "0123456789abcdef"
			dst = append(dst, hex[c>>4], hex[c&0xf])
		default:
			dst = append(dst, c)
		}
	}
	return append(dst, '"')
}
