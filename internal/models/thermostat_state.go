package models

import "time"

// ThermostatState is the last-known status of the thermostat, as left by
// the most recent control cycle. CurrentTempC is meaningful only when
// SensorOK is true.
type ThermostatState struct {
	ID            int       `json:"id"`
	ThermostatID  string    `json:"thermostat_id"`
	CurrentTempC  float64   `json:"current_temp_c"`
	SensorOK      bool      `json:"sensor_ok"`
	TargetTempC   float64   `json:"target_temp_c"`
	HeaterOn      bool      `json:"heater_on"`
	ProgramPoints int       `json:"program_points"`
	CycleID       string    `json:"cycle_id,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HeaterLabel renders the heater state the way the status file does.
func (s ThermostatState) HeaterLabel() string {
	if s.HeaterOn {
		return "ON"
	}
	return "OFF"
}
