package service

import (
	"context"
	"time"

	"thermoclient/internal/models"
	"thermoclient/internal/repository"
)

type MonitoringService struct {
	stateRepo      repository.StateRepo
	defaultTargetC float64
}

func NewMonitoringService(stateRepo repository.StateRepo, defaultTargetC float64) *MonitoringService {
	return &MonitoringService{stateRepo: stateRepo, defaultTargetC: defaultTargetC}
}

// GetState returns the latest persisted snapshot. Before the first cycle it
// returns a baseline with the heater OFF and the default target.
func (s *MonitoringService) GetState(ctx context.Context) (models.ThermostatState, error) {
	state, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.ThermostatState{}, err
	}
	if state.ID == 0 {
		return s.baselineState(), nil
	}
	state.UpdatedAt = toUTC(state.UpdatedAt)
	return state, nil
}

func (s *MonitoringService) baselineState() models.ThermostatState {
	return models.ThermostatState{
		ID:          1, // single-row snapshot
		TargetTempC: s.defaultTargetC,
		HeaterOn:    false,
		UpdatedAt:   time.Now().UTC(),
	}
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
