// Package publish mirrors thermostat snapshots to an MQTT broker.
package publish

import (
	"encoding/json"
	"time"

	"thermoclient/internal/models"
)

// DefaultTopic is used when no MQTT_TOPIC is configured.
const DefaultTopic = "thermostat/state"

// Publisher publishes snapshots.
type Publisher interface {
	// PublishState sends one snapshot. Failures are reported, never fatal.
	PublishState(st models.ThermostatState) error

	// Close disconnects from the broker.
	Close() error
}

// Payload is the MQTT message body.
type Payload struct {
	Thermostat StatePayload `json:"thermostat"`
}

// StatePayload carries the snapshot fields.
type StatePayload struct {
	ID           string   `json:"id"`
	Timestamp    string   `json:"timestamp"`
	Heater       string   `json:"heater"`
	TargetTempC  float64  `json:"target_temp_c"`
	CurrentTempC *float64 `json:"current_temp_c"`
	CycleID      string   `json:"cycle_id,omitempty"`
}

// FormatPayload builds the JSON body for st. The current temperature is
// null when the sensor could not be read.
func FormatPayload(st models.ThermostatState) ([]byte, error) {
	p := Payload{
		Thermostat: StatePayload{
			ID:          st.ThermostatID,
			Timestamp:   st.UpdatedAt.UTC().Format(time.RFC3339),
			Heater:      st.HeaterLabel(),
			TargetTempC: st.TargetTempC,
			CycleID:     st.CycleID,
		},
	}
	if st.SensorOK {
		c := st.CurrentTempC
		p.Thermostat.CurrentTempC = &c
	}
	return json.Marshal(p)
}
