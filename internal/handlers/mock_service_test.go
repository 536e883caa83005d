package handlers

import (
	"context"
	"errors"
	"sync"

	"thermoclient/internal/models"
	"thermoclient/internal/service"

	"github.com/gin-gonic/gin"
)

type mockMonitoring struct {
	state models.ThermostatState
	err   error
	calls int
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.ThermostatState, error) {
	m.calls++
	return m.state, m.err
}

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, nil)
	return h.InitRoutes()
}

// flakyMonitoring succeeds on the first call and fails afterwards.
type flakyMonitoring struct {
	mu    sync.Mutex
	state models.ThermostatState
	calls int
}

func (m *flakyMonitoring) GetState(ctx context.Context) (models.ThermostatState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls > 1 {
		return models.ThermostatState{}, errors.New("db locked")
	}
	return m.state, nil
}
