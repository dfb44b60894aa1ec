package spectrum

import (
	"image/color"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/dkonst/luxdeck/pkg/telemetry"
)

const (
	fullScale     = 65535
	saturationCut = 60000
)

// channelColors approximates the hue of each wavelength band, violet at
// 415nm through deep red at 680nm.
var channelColors = [telemetry.NumChannels]color.RGBA{
	{R: 130, G: 60, B: 255, A: 255},
	{R: 60, G: 80, B: 255, A: 255},
	{R: 0, G: 160, B: 255, A: 255},
	{R: 0, G: 210, B: 90, A: 255},
	{R: 150, G: 220, B: 0, A: 255},
	{R: 255, G: 200, B: 0, A: 255},
	{R: 255, G: 110, B: 0, A: 255},
	{R: 230, G: 30, B: 30, A: 255},
}

var saturatedColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// renderer lays out a fixed set of canvas objects: a dark background, one
// bar plus a wavelength label and a count label per channel, and a baseline.
type renderer struct {
	spectrum *Widget

	bg       *canvas.Rectangle
	baseline *canvas.Line
	bars     [telemetry.NumChannels]*canvas.Rectangle
	labels   [telemetry.NumChannels]*canvas.Text
	values   [telemetry.NumChannels]*canvas.Text

	objects []fyne.CanvasObject
}

func newRenderer(w *Widget) *renderer {
	r := &renderer{
		spectrum: w,
		bg:       canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}),
		baseline: canvas.NewLine(color.RGBA{R: 90, G: 90, B: 90, A: 255}),
	}

	r.objects = []fyne.CanvasObject{r.bg}
	for i := range r.bars {
		r.bars[i] = canvas.NewRectangle(channelColors[i])

		label := canvas.NewText(strconv.Itoa(int(telemetry.Wavelengths[i])), color.RGBA{R: 200, G: 200, B: 200, A: 255})
		label.TextSize = 11
		label.Alignment = fyne.TextAlignCenter
		r.labels[i] = label

		value := canvas.NewText("0", color.RGBA{R: 160, G: 160, B: 160, A: 255})
		value.TextSize = 10
		value.Alignment = fyne.TextAlignCenter
		r.values[i] = value

		r.objects = append(r.objects, r.bars[i], r.labels[i], r.values[i])
	}
	r.objects = append(r.objects, r.baseline)

	return r
}

// MinSize returns the minimum size of the widget.
func (r *renderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 260)
}

// Layout arranges the widget components.
func (r *renderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.place(size)
}

// Refresh updates the widget display from the current state.
func (r *renderer) Refresh() {
	state := r.spectrum.State()

	for i := range r.bars {
		v := state.Spectral[i]
		r.values[i].Text = strconv.Itoa(int(v))
		if v >= saturationCut {
			r.bars[i].FillColor = saturatedColor
		} else {
			r.bars[i].FillColor = channelColors[i]
		}
	}

	r.place(r.spectrum.Size())

	r.bg.Refresh()
	r.baseline.Refresh()
	for i := range r.bars {
		r.bars[i].Refresh()
		r.labels[i].Refresh()
		r.values[i].Refresh()
	}
}

// place computes the bar geometry for the given widget size.
func (r *renderer) place(size fyne.Size) {
	if size.Width <= 0 || size.Height <= 0 {
		return
	}

	const (
		marginTop    = float32(24)
		marginBottom = float32(36)
		marginSide   = float32(16)
	)

	plotW := size.Width - 2*marginSide
	plotH := size.Height - marginTop - marginBottom
	if plotW <= 0 || plotH <= 0 {
		return
	}

	state := r.spectrum.State()
	slot := plotW / telemetry.NumChannels
	barW := slot * 0.6

	for i := range r.bars {
		x := marginSide + float32(i)*slot + (slot-barW)/2

		h := plotH * float32(state.Spectral[i]) / fullScale
		if h < 1 {
			h = 1
		}
		y := marginTop + plotH - h

		r.bars[i].Move(fyne.NewPos(x, y))
		r.bars[i].Resize(fyne.NewSize(barW, h))

		r.labels[i].Move(fyne.NewPos(marginSide+float32(i)*slot+slot/2, size.Height-marginBottom+4))
		r.values[i].Move(fyne.NewPos(marginSide+float32(i)*slot+slot/2, y-16))
	}

	r.baseline.Position1 = fyne.NewPos(marginSide, marginTop+plotH)
	r.baseline.Position2 = fyne.NewPos(marginSide+plotW, marginTop+plotH)
}

// Objects returns the canvas objects to render.
func (r *renderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up renderer resources (nothing to do).
func (r *renderer) Destroy() {}
