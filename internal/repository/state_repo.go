package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"thermoclient/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	thermostatStateRowID = 1

	insertOrUpdateStateSQL = `
		INSERT INTO thermostat_state (id, thermostat_id, current_temp_c, sensor_ok, target_temp_c, heater_on, program_points, cycle_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			thermostat_id=excluded.thermostat_id,
			current_temp_c=excluded.current_temp_c,
			sensor_ok=excluded.sensor_ok,
			target_temp_c=excluded.target_temp_c,
			heater_on=excluded.heater_on,
			program_points=excluded.program_points,
			cycle_id=excluded.cycle_id,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT id, thermostat_id, current_temp_c, sensor_ok, target_temp_c, heater_on, program_points, cycle_id, updated_at
		FROM thermostat_state WHERE id=?
	`
)

// Save upserts the thermostat_state row (id always 1). Only the latest
// snapshot is kept.
func (r *StateSQLite) Save(ctx context.Context, state models.ThermostatState) error {
	tsUTC := state.UpdatedAt
	if tsUTC.IsZero() {
		tsUTC = time.Now().UTC()
	} else {
		tsUTC = tsUTC.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertOrUpdateStateSQL,
		thermostatStateRowID,
		state.ThermostatID,
		state.CurrentTempC,
		state.SensorOK,
		state.TargetTempC,
		state.HeaterOn,
		state.ProgramPoints,
		state.CycleID,
		tsUTC,
	)
	return err
}

// Load fetches the single thermostat_state row. A database that has never
// seen a cycle yields the zero state and no error.
func (r *StateSQLite) Load(ctx context.Context) (models.ThermostatState, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, thermostatStateRowID)

	var s models.ThermostatState
	if err := row.Scan(
		&s.ID,
		&s.ThermostatID,
		&s.CurrentTempC,
		&s.SensorOK,
		&s.TargetTempC,
		&s.HeaterOn,
		&s.ProgramPoints,
		&s.CycleID,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ThermostatState{}, nil
		}
		return models.ThermostatState{}, err
	}
	s.UpdatedAt = s.UpdatedAt.UTC()

	return s, nil
}
