package main

import (
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/dkonst/luxdeck/pkg/config"
	"github.com/dkonst/luxdeck/pkg/feed"
	"github.com/dkonst/luxdeck/pkg/spectrum"
	"github.com/dkonst/luxdeck/pkg/telemetry"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use mocked station instead of serial port")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	// Create Fyne application
	application := app.NewWithID("com.dkonst.luxdeck")

	window := application.NewWindow("Luxdeck")
	window.Resize(fyne.NewSize(1000, 600))
	window.CenterOnScreen()

	state := &appState{
		cfg:     cfg,
		cfgPath: *configFlag,
		window:  window,
		useMock: *mockFlag,
	}

	toolbar := createToolbar(state)

	spectrumWidget := spectrum.New()
	state.spectrumWidget = spectrumWidget

	readout := NewReadout()
	state.readout = readout

	content := container.NewBorder(
		toolbar,
		nil,
		nil,
		readout.Container(),
		spectrumWidget,
	)

	window.SetContent(content)
	window.ShowAndRun()
}

// appState holds the application state.
type appState struct {
	cfg     *config.Config
	cfgPath string
	window  fyne.Window

	device         feed.Device
	consumerDone   chan struct{} // Closed when the state consumer goroutine exits
	spectrumWidget *spectrum.Widget
	readout        *Readout
	connectBtn     *widget.Button
	useMock        bool

	// Throttling for widget updates
	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

// createToolbar creates the application toolbar with Connect and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	return container.NewBorder(
		nil, // top
		nil, // bottom
		container.NewHBox(connectBtn, settingsBtn), // left
		nil, // right
		nil, // center (spacer)
	)
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		// Disconnect - closing the device closes its states channel, which
		// ends the consumer goroutine.
		state.device.Close()
		if state.consumerDone != nil {
			<-state.consumerDone
			state.consumerDone = nil
		}
		state.device = nil
		if state.useMock {
			fmt.Println("Disconnected from mocked station")
		} else {
			fmt.Println("Disconnected from serial port")
		}
		return
	}

	// Connect
	var device feed.Device
	if state.useMock {
		device = feed.NewMock(&state.cfg.Mock)
		fmt.Println("Using mocked station")
	} else {
		device = feed.New(state.cfg.Serial.Port, state.cfg.Serial.Baud, feed.DefaultBufferSize)
	}

	if err := device.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to connect to mocked station: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	state.device = device
	if state.useMock {
		fmt.Println("Connected to mocked station")
	} else {
		fmt.Printf("Connected to serial port: %s\n", state.cfg.Serial.Port)
	}

	done := make(chan struct{})
	state.consumerDone = done

	go func() {
		defer close(done)
		for snapshot := range device.States() {
			updateUI(state, snapshot)
		}
	}()
}

// updateUI pushes a state snapshot to the widgets, throttled to the
// configured refresh interval so a fast stream cannot overwhelm the UI.
func updateUI(state *appState, snapshot telemetry.State) {
	state.updateMu.Lock()
	now := time.Now()
	tooSoon := now.Sub(state.lastUpdateTime) < state.cfg.UI.RefreshInterval
	if !tooSoon {
		state.lastUpdateTime = now
	}
	state.updateMu.Unlock()

	if tooSoon {
		return
	}

	// Fyne widgets must be updated on the main thread.
	fyne.Do(func() {
		state.spectrumWidget.SetState(snapshot)
		state.readout.Update(snapshot)
	})
}
