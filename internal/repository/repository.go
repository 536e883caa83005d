package repository

import (
	"context"
	"database/sql"

	"thermoclient/internal/models"
)

// StateRepo stores the single last-known thermostat snapshot.
type StateRepo interface {
	Save(ctx context.Context, s models.ThermostatState) error
	Load(ctx context.Context) (models.ThermostatState, error)
}

type Repository struct {
	StateRepo StateRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo: NewStateSQLite(db),
	}
}
