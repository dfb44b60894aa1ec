package spectrum

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"github.com/dkonst/luxdeck/pkg/telemetry"
)

// Widget is a custom Fyne widget that displays the 8 spectral channels as a
// bar chart, one bar per wavelength band, scaled to the sensor's 16-bit
// range. Bars at or above the saturation threshold are highlighted.
type Widget struct {
	widget.BaseWidget

	// Data (protected by mu)
	mu    sync.RWMutex
	state telemetry.State
}

// New creates a new spectrum widget.
func New() *Widget {
	w := &Widget{}
	w.ExtendBaseWidget(w)
	// Trigger initial refresh to display the empty chart
	w.Refresh()
	return w
}

// SetState updates the widget with a new merged telemetry state.
// This should be called from the feed callback using fyne.Do().
func (w *Widget) SetState(state telemetry.State) {
	w.mu.Lock()
	w.state = state
	w.mu.Unlock()

	// Refresh outside the lock to avoid holding it through the render
	w.Refresh()
}

// State returns a copy of the currently displayed state.
func (w *Widget) State() telemetry.State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// CreateRenderer creates the widget renderer.
func (w *Widget) CreateRenderer() fyne.WidgetRenderer {
	return newRenderer(w)
}
