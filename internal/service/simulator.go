package service

import (
	"context"
	"errors"
	"math"
	"os"
	"time"

	"thermoclient/internal/device"
	"thermoclient/internal/logger"
)

// Room model defaults.
const (
	DefaultAmbientC     = 12.0
	DefaultHeatRate     = 0.05  // °C per second while the heater is ON
	DefaultLossPerSec   = 0.002 // fraction of the indoor/outdoor gap lost per second
	DefaultStartOffsetC = 6.0   // start above ambient when no temperature file exists
)

// RoomConfig describes the simulated room and the files it shares with the
// control loop.
type RoomConfig struct {
	TempFile   string
	StatusFile string
	AmbientC   float64
	HeatRate   float64
	LossPerSec float64
}

// SimulatorService plays the part of the room and its sensor: it reads the
// heater command from the status file and writes the resulting temperature
// to the temperature file.
type SimulatorService struct {
	cfg  RoomConfig
	log  *logger.Logger
	temp float64
	last time.Time
}

// NewSimulatorService seeds the room from the existing temperature file,
// or from ambient plus an offset when there is none.
func NewSimulatorService(cfg RoomConfig, log *logger.Logger) *SimulatorService {
	if cfg.HeatRate <= 0 {
		cfg.HeatRate = DefaultHeatRate
	}
	if cfg.LossPerSec <= 0 {
		cfg.LossPerSec = DefaultLossPerSec
	}
	if log == nil {
		log = logger.NewNop()
	}
	start := cfg.AmbientC + DefaultStartOffsetC
	if c, err := device.ReadTemperature(cfg.TempFile); err == nil {
		start = c
	}
	return &SimulatorService{cfg: cfg, log: log, temp: start}
}

// Temperature returns the current simulated room temperature.
func (s *SimulatorService) Temperature() float64 {
	return s.temp
}

// Run ticks at the given interval until ctx is canceled.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	s.log.Infow("simulator_started",
		"temp_file", s.cfg.TempFile,
		"status_file", s.cfg.StatusFile,
		"start_temp_c", s.temp,
	)
	if err := device.WriteTemperature(s.cfg.TempFile, s.temp); err != nil {
		s.log.Errorw("simulator_write_failed", "err", err)
	}
	s.last = time.Now()

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Infow("simulator_stopped", "temp_c", s.temp)
			return
		case now := <-t.C:
			if err := s.Step(now); err != nil {
				s.log.Errorw("simulator_step_failed", "err", err)
			}
		}
	}
}

// Step advances the room to now and writes the new temperature.
func (s *SimulatorService) Step(now time.Time) error {
	elapsed := 0.0
	if !s.last.IsZero() {
		elapsed = now.Sub(s.last).Seconds()
	}
	s.last = now
	if elapsed <= 0 {
		return nil
	}

	on, err := s.heaterOn()
	if err != nil {
		return err
	}
	s.temp = advance(s.temp, elapsed, on, s.cfg)
	s.log.Debugw("simulator_tick", "heater_on", on, "temp_c", s.temp, "elapsed_s", elapsed)
	return device.WriteTemperature(s.cfg.TempFile, s.temp)
}

// heaterOn reads the commanded state. A status file that does not exist yet
// means the controller has not run: the heater is OFF.
func (s *SimulatorService) heaterOn() (bool, error) {
	on, _, err := device.ReadStatus(s.cfg.StatusFile)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return on, err
}

// advance applies first-order loss toward ambient and constant heat input.
func advance(tempC, elapsed float64, heaterOn bool, cfg RoomConfig) float64 {
	gap := tempC - cfg.AmbientC
	next := cfg.AmbientC + gap*math.Exp(-cfg.LossPerSec*elapsed)
	if heaterOn {
		next += cfg.HeatRate * elapsed
	}
	return next
}
