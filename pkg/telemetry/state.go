package telemetry

import (
	"encoding/json"
	"fmt"
)

// State is the dashboard's last-known view of the device, built by merging
// telemetry lines as they arrive. Every line is parsed independently; fields
// present in a line overwrite the corresponding State fields, fields absent
// from a line keep their previous values. Lines that do not parse as a
// complete JSON object leave State untouched.
//
// State is a plain value: the feed layer copies it into a channel after each
// merge so consumers never share mutable state with the reader goroutine.
type State struct {
	FW   string
	Gain string

	Spectral    SpectralCounts
	HasSpectral bool // at least one spectral reading has been merged

	UV   uint32
	ALS  uint32
	Lux  float32
	IR   uint16
	Full uint16

	// Boot-phase information.
	Status    string
	LastError string
	AS7341    bool
	LTR390    bool
	TSL2591   bool
}

// record mirrors the wire field set with pointer fields so that absent keys
// are distinguishable from zero values after unmarshaling.
type record struct {
	FW   *string `json:"fw"`
	Gain *string `json:"gain"`

	F1 *uint16 `json:"F1"`
	F2 *uint16 `json:"F2"`
	F3 *uint16 `json:"F3"`
	F4 *uint16 `json:"F4"`
	F5 *uint16 `json:"F5"`
	F6 *uint16 `json:"F6"`
	F7 *uint16 `json:"F7"`
	F8 *uint16 `json:"F8"`

	UV   *uint32  `json:"UV"`
	ALS  *uint32  `json:"ALS"`
	Lux  *float32 `json:"TSL_Lux"`
	IR   *uint16  `json:"TSL_IR"`
	Full *uint16  `json:"TSL_Full"`

	Status  *string `json:"status"`
	Error   *string `json:"error"`
	AS7341  *bool   `json:"as7341"`
	LTR390  *bool   `json:"ltr390"`
	TSL2591 *bool   `json:"tsl2591"`
}

// Apply merges one telemetry line into the state. It returns an error for
// lines that do not parse; the state is unchanged in that case and the
// caller is expected to log and move on, per the consumer contract.
func (s *State) Apply(line []byte) error {
	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		return fmt.Errorf("unparseable telemetry line: %w", err)
	}

	if rec.FW != nil {
		s.FW = *rec.FW
	}
	if rec.Gain != nil {
		s.Gain = *rec.Gain
	}

	channels := [NumChannels]*uint16{rec.F1, rec.F2, rec.F3, rec.F4, rec.F5, rec.F6, rec.F7, rec.F8}
	for i, ch := range channels {
		if ch != nil {
			s.Spectral[i] = *ch
			s.HasSpectral = true
		}
	}

	if rec.UV != nil {
		s.UV = *rec.UV
	}
	if rec.ALS != nil {
		s.ALS = *rec.ALS
	}
	if rec.Lux != nil {
		s.Lux = *rec.Lux
	}
	if rec.IR != nil {
		s.IR = *rec.IR
	}
	if rec.Full != nil {
		s.Full = *rec.Full
	}

	if rec.Status != nil {
		s.Status = *rec.Status
	}
	if rec.Error != nil {
		s.LastError = *rec.Error
	}
	if rec.AS7341 != nil {
		s.AS7341 = *rec.AS7341
	}
	if rec.LTR390 != nil {
		s.LTR390 = *rec.LTR390
	}
	if rec.TSL2591 != nil {
		s.TSL2591 = *rec.TSL2591
	}

	return nil
}
