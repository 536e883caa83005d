package control

// DefaultBand is the hysteresis margin in °C around the setpoint.
const DefaultBand = 0.5

// Decide returns the next heater state.
//
// A running heater stops only once the room is above target+band; an idle
// heater starts only once the room is below target-band. Readings inside
// [target-band, target+band] keep the current state.
func Decide(currentC, targetC float64, heaterOn bool, band float64) bool {
	if heaterOn {
		return !(currentC > targetC+band)
	}
	return currentC < targetC-band
}
