package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/dkonst/luxdeck/pkg/feed"
)

// showSettingsDialog displays a settings dialog with tabs for the serial
// connection and the mock station parameters.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(480, 360))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(480, 360))
	d.Show()
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	// Get available serial ports
	ports, err := feed.Ports()
	portOptions := []string{}
	if err == nil {
		for _, port := range ports {
			portOptions = append(portOptions, port.Name)
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	found := false
	for _, opt := range portOptions {
		if opt == currentPort {
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
	}

	portSelect := widget.NewSelect(portOptions, nil)
	portSelect.SetSelected(currentPort)

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.Baud))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if portSelect.Selected != "" {
				state.cfg.Serial.Port = portSelect.Selected
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				state.cfg.Serial.Baud = baud
			}
			if err := state.cfg.Save(state.cfgPath); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createMockTab creates the mock station configuration tab.
func createMockTab(state *appState) *container.TabItem {
	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Mock.SamplePeriod.String())

	baseEntry := widget.NewEntry()
	baseEntry.SetText(strconv.Itoa(int(state.cfg.Mock.BaseLevel)))

	saturateEntry := widget.NewEntry()
	saturateEntry.SetText(strconv.Itoa(state.cfg.Mock.SaturateEvery))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Sample Period", Widget: periodEntry},
			{Text: "Base Level", Widget: baseEntry},
			{Text: "Saturate Every", Widget: saturateEntry},
		},
		OnSubmit: func() {
			if d, err := time.ParseDuration(periodEntry.Text); err == nil && d > 0 {
				state.cfg.Mock.SamplePeriod = d
			}
			if v, err := strconv.Atoi(baseEntry.Text); err == nil && v >= 0 && v <= 65535 {
				state.cfg.Mock.BaseLevel = uint16(v)
			}
			if v, err := strconv.Atoi(saturateEntry.Text); err == nil && v >= 0 {
				state.cfg.Mock.SaturateEvery = v
			}
			if err := state.cfg.Save(state.cfgPath); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}
