package device

// Relay switches the physical heater.
type Relay interface {
	// Set drives the heater output; true means ON.
	Set(on bool) error

	// Close turns the output off and releases the line.
	Close() error
}

// FakeRelay records commanded states for tests.
type FakeRelay struct {
	// States holds every value passed to Set, in order.
	States []bool

	// SetError, if set, is returned by Set.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// Set records on.
func (f *FakeRelay) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.States = append(f.States, on)
	return nil
}

// Close marks the relay closed.
func (f *FakeRelay) Close() error {
	f.Closed = true
	return nil
}
