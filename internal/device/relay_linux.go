//go:build linux

package device

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// GPIORelay drives the heater through a Linux GPIO character device line.
type GPIORelay struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	pin  int
}

// NewGPIORelay requests pin on chip as an output, initially low (OFF).
func NewGPIORelay(chipName string, pin int) (*GPIORelay, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("thermoclient"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %q: %w", chipName, err)
	}
	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request relay pin %d: %w", pin, err)
	}
	return &GPIORelay{chip: chip, line: line, pin: pin}, nil
}

// Set drives the line high for ON and low for OFF.
func (r *GPIORelay) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := r.line.SetValue(v); err != nil {
		return fmt.Errorf("set relay pin %d: %w", r.pin, err)
	}
	return nil
}

// Close drives the line low, then releases it and the chip.
func (r *GPIORelay) Close() error {
	var errs []error
	if r.line != nil {
		if err := r.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("reset relay pin %d: %w", r.pin, err))
		}
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close relay pin %d: %w", r.pin, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
