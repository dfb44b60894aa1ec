package main

import (
	"tinygo.org/x/drivers"

	"github.com/dkonst/luxdeck/drivers/as7341"
	"github.com/dkonst/luxdeck/drivers/ltr390"
	"github.com/dkonst/luxdeck/drivers/tsl2591"
	"github.com/dkonst/luxdeck/pkg/station"
	"github.com/dkonst/luxdeck/pkg/telemetry"
)

// The adaptors below map each driver onto the station's capability
// interfaces so the acquisition loop stays hardware-agnostic.

type spectralSensor struct {
	dev as7341.Device
}

func newSpectralSensor(bus drivers.I2C) *spectralSensor {
	return &spectralSensor{dev: as7341.New(bus)}
}

func (s *spectralSensor) Init() error { return s.dev.Configure() }

func (s *spectralSensor) SetGain(g station.Gain) error { return s.dev.SetGain(uint8(g)) }

func (s *spectralSensor) ReadChannels() (telemetry.SpectralCounts, error) {
	ch, err := s.dev.ReadChannels()
	return telemetry.SpectralCounts(ch), err
}

type uvSensor struct {
	dev ltr390.Device
}

func newUVSensor(bus drivers.I2C) *uvSensor {
	return &uvSensor{dev: ltr390.New(bus)}
}

func (s *uvSensor) Init() error { return s.dev.Configure() }

func (s *uvSensor) ReadUV() (uint32, error) { return s.dev.ReadUV() }

type lightSensor struct {
	dev tsl2591.Device
}

func newLightSensor(bus drivers.I2C) *lightSensor {
	return &lightSensor{dev: tsl2591.New(bus)}
}

func (s *lightSensor) Init() error { return s.dev.Configure() }

func (s *lightSensor) ReadLuminosity() (uint32, error) { return s.dev.ReadLuminosity() }

func (s *lightSensor) Lux(full, ir uint16) float32 { return s.dev.Lux(full, ir) }

// Interface checks.
var (
	_ station.SpectralSensor = (*spectralSensor)(nil)
	_ station.UVSensor       = (*uvSensor)(nil)
	_ station.LightSensor    = (*lightSensor)(nil)
)
