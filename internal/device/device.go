// Package device reads the temperature sensor file, writes the heater
// status file and optionally drives a GPIO relay.
package device

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNoReading is returned when the sensor file holds no finite number.
	ErrNoReading = errors.New("no temperature reading")
	// ErrMalformedStatus is returned when a status file cannot be parsed.
	ErrMalformedStatus = errors.New("malformed status line")
)

const (
	statusOn  = "ON"
	statusOff = "OFF"
)

// SensorFile reads temperatures from a file holding a decimal number.
type SensorFile struct{}

// ReadTemperature returns the first number in the file at path.
func (SensorFile) ReadTemperature(path string) (float64, error) {
	return ReadTemperature(path)
}

// ReadTemperature parses the leading token of the file at path as °C.
func ReadTemperature(path string) (float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read temperature file %q: %w", path, err)
	}
	fields := strings.Fields(string(b))
	if len(fields) == 0 {
		return 0, fmt.Errorf("temperature file %q: %w", path, ErrNoReading)
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("temperature file %q: %w: %q", path, ErrNoReading, fields[0])
	}
	return v, nil
}

// WriteTemperature stores c in the file at path, two decimals.
func WriteTemperature(path string, c float64) error {
	if err := os.WriteFile(path, []byte(strconv.FormatFloat(c, 'f', 2, 64)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write temperature file %q: %w", path, err)
	}
	return nil
}

// StatusFile persists the heater decision as "ON : <unix>" / "OFF : <unix>".
type StatusFile struct{}

// WriteStatus implements the control loop's status writer.
func (StatusFile) WriteStatus(path string, heaterOn bool, at time.Time) error {
	return WriteStatus(path, heaterOn, at)
}

// FormatStatus renders a single status line, newline included.
func FormatStatus(heaterOn bool, at time.Time) string {
	label := statusOff
	if heaterOn {
		label = statusOn
	}
	return fmt.Sprintf("%s : %d\n", label, at.Unix())
}

// WriteStatus truncates the file at path and writes one status line.
func WriteStatus(path string, heaterOn bool, at time.Time) error {
	if err := os.WriteFile(path, []byte(FormatStatus(heaterOn, at)), 0o644); err != nil {
		return fmt.Errorf("write status file %q: %w", path, err)
	}
	return nil
}

// ReadStatus parses a status file written by WriteStatus.
func ReadStatus(path string) (bool, time.Time, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return false, time.Time{}, fmt.Errorf("read status file %q: %w", path, err)
	}
	return ParseStatus(string(b))
}

// ParseStatus parses one "ON : <unix>" line.
func ParseStatus(line string) (bool, time.Time, error) {
	label, ts, ok := strings.Cut(strings.TrimSpace(line), ":")
	if !ok {
		return false, time.Time{}, fmt.Errorf("%w: %q", ErrMalformedStatus, line)
	}
	var on bool
	switch strings.TrimSpace(label) {
	case statusOn:
		on = true
	case statusOff:
	default:
		return false, time.Time{}, fmt.Errorf("%w: %q", ErrMalformedStatus, line)
	}
	sec, err := strconv.ParseInt(strings.TrimSpace(ts), 10, 64)
	if err != nil {
		return false, time.Time{}, fmt.Errorf("%w: %q", ErrMalformedStatus, line)
	}
	return on, time.Unix(sec, 0), nil
}
