// Package control runs the thermostat control cycle: read the sensor,
// fetch and resolve the program, decide the heater state, persist and
// report it, then wait.
package control

import (
	"context"
	"time"

	"thermoclient/internal/config"
	"thermoclient/internal/models"
)

// ConfigSource returns the configuration for the current cycle.
type ConfigSource interface {
	Load() (config.AppConfig, error)
}

// Sensor reads the room temperature.
type Sensor interface {
	ReadTemperature(path string) (float64, error)
}

// ProgramClient fetches the raw program payload.
type ProgramClient interface {
	GetProgram(ctx context.Context, serverURL, id string) (string, error)
}

// StatusWriter persists the heater decision locally.
type StatusWriter interface {
	WriteStatus(path string, heaterOn bool, at time.Time) error
}

// Reporter posts the status upstream.
type Reporter interface {
	PostStatus(ctx context.Context, serverURL, id string, currentTemp float64, heaterOn bool) error
}

// Sink receives the snapshot of every cycle that reached a decision.
// Errors are logged and never abort the cycle.
type Sink interface {
	Record(ctx context.Context, st models.ThermostatState) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, st models.ThermostatState) error

// Record calls f.
func (f SinkFunc) Record(ctx context.Context, st models.ThermostatState) error {
	return f(ctx, st)
}

// NamedSink labels a sink for log messages.
type NamedSink struct {
	Name string
	Sink Sink
}

// ControllerState is the state carried from one cycle to the next. It is
// never restored from disk: a fresh process starts with the heater OFF.
type ControllerState struct {
	HeaterOn    bool
	LastTargetC float64
}
