package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/dkonst/luxdeck/pkg/telemetry"
)

// Readout is the side panel showing the scalar quantities of the last-known
// state: firmware, status, gain, UV, lux and the luminosity counts, plus the
// per-sensor readiness reported by the boot summary.
type Readout struct {
	fw     *widget.Label
	status *widget.Label
	gain   *widget.Label
	uv     *widget.Label
	lux    *widget.Label
	ir     *widget.Label
	full   *widget.Label
	ready  *widget.Label
	lastEr *widget.Label

	box *fyne.Container
}

// NewReadout creates the readout panel with empty values.
func NewReadout() *Readout {
	r := &Readout{
		fw:     widget.NewLabel("-"),
		status: widget.NewLabel("-"),
		gain:   widget.NewLabel("-"),
		uv:     widget.NewLabel("-"),
		lux:    widget.NewLabel("-"),
		ir:     widget.NewLabel("-"),
		full:   widget.NewLabel("-"),
		ready:  widget.NewLabel("-"),
		lastEr: widget.NewLabel(""),
	}

	form := container.New(layout.NewFormLayout(),
		widget.NewLabel("Firmware"), r.fw,
		widget.NewLabel("Status"), r.status,
		widget.NewLabel("Gain"), r.gain,
		widget.NewLabel("UV"), r.uv,
		widget.NewLabel("Lux"), r.lux,
		widget.NewLabel("IR"), r.ir,
		widget.NewLabel("Full"), r.full,
		widget.NewLabel("Sensors"), r.ready,
	)

	r.box = container.NewVBox(form, r.lastEr)
	return r
}

// Container returns the panel's root container.
func (r *Readout) Container() fyne.CanvasObject {
	return r.box
}

// Update refreshes the panel from a state snapshot. Must run on the main
// Fyne thread.
func (r *Readout) Update(s telemetry.State) {
	r.fw.SetText(orDash(s.FW))
	r.status.SetText(orDash(s.Status))
	r.gain.SetText(orDash(s.Gain))
	r.uv.SetText(fmt.Sprintf("%d", s.UV))
	r.lux.SetText(fmt.Sprintf("%.2f", s.Lux))
	r.ir.SetText(fmt.Sprintf("%d", s.IR))
	r.full.SetText(fmt.Sprintf("%d", s.Full))
	r.ready.SetText(readiness(s))

	if s.LastError != "" {
		r.lastEr.SetText("last error: " + s.LastError)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// readiness renders the boot summary flags compactly.
func readiness(s telemetry.State) string {
	mark := func(ok bool) string {
		if ok {
			return "+"
		}
		return "x"
	}
	return fmt.Sprintf("spec%s uv%s lum%s", mark(s.AS7341), mark(s.LTR390), mark(s.TSL2591))
}
