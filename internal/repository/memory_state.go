package repository

import (
	"context"
	"sync"

	"thermoclient/internal/models"
)

// MemoryState keeps the snapshot in process memory. It backs the status API
// when no database path is configured.
type MemoryState struct {
	mu    sync.RWMutex
	state models.ThermostatState
}

func NewMemoryState() *MemoryState {
	return &MemoryState{}
}

func (m *MemoryState) Save(_ context.Context, s models.ThermostatState) error {
	s.ID = thermostatStateRowID
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryState) Load(_ context.Context) (models.ThermostatState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, nil
}
