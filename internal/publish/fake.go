package publish

import "thermoclient/internal/models"

// FakePublisher records published snapshots for test assertions.
type FakePublisher struct {
	// States contains every snapshot that was published.
	States []models.ThermostatState

	// Payloads contains the JSON bodies that were published.
	Payloads [][]byte

	// PublishError, if set, is returned by PublishState.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishState records the snapshot.
func (f *FakePublisher) PublishState(st models.ThermostatState) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(st)
	if err != nil {
		return err
	}
	f.States = append(f.States, st)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}
