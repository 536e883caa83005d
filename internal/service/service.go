package service

import (
	"context"
	"time"

	"thermoclient/internal/models"
	"thermoclient/internal/repository"
)

// Monitoring exposes the read-only last-known thermostat state.
type Monitoring interface {
	GetState(ctx context.Context) (models.ThermostatState, error)
}

// Simulator runs a background loop until ctx is cancelled.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

// Service aggregates the services consumed by the HTTP layer.
type Service struct {
	Monitoring
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, defaultTargetC float64) *Service {
	return &Service{
		Monitoring: NewMonitoringService(repos.StateRepo, defaultTargetC),
	}
}
