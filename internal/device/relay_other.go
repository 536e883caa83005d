//go:build !linux

package device

import "errors"

// GPIORelay is not available on non-Linux platforms.
type GPIORelay struct{}

// NewGPIORelay returns an error on non-Linux platforms.
func NewGPIORelay(chipName string, pin int) (*GPIORelay, error) {
	return nil, errors.New("gpio relay: not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (r *GPIORelay) Set(on bool) error {
	return errors.New("gpio relay: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *GPIORelay) Close() error {
	return nil
}
