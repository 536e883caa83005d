package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"thermoclient/internal/metrics"
	"thermoclient/internal/models"
	"thermoclient/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func TestHealth(t *testing.T) {
	r := newTestRouter(&service.Service{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != statusOK {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestGetState(t *testing.T) {
	updated := time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)
	mon := &mockMonitoring{state: models.ThermostatState{
		ID:            1,
		ThermostatID:  "t1",
		CurrentTempC:  17,
		SensorOK:      true,
		TargetTempC:   20,
		HeaterOn:      true,
		ProgramPoints: 2,
		UpdatedAt:     updated,
	}}
	r := newTestRouter(&service.Service{Monitoring: mon})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/thermostat/state", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("state status=%d, body=%s", w.Code, w.Body.String())
	}
	var st models.ThermostatState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if st.ThermostatID != "t1" || !st.HeaterOn || st.TargetTempC != 20 || !st.UpdatedAt.Equal(updated) {
		t.Fatalf("unexpected state: %+v", st)
	}
	if mon.calls != 1 {
		t.Fatalf("expected one GetState call, got %d", mon.calls)
	}
}

func TestGetState_ServiceError(t *testing.T) {
	mon := &mockMonitoring{err: errors.New("db locked")}
	r := newTestRouter(&service.Service{Monitoring: mon})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/thermostat/state", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), errGetState) {
		t.Fatalf("error body should not leak internals, got %s", w.Body.String())
	}
}

func TestWriteRoutesAreNotRegistered(t *testing.T) {
	r := newTestRouter(&service.Service{Monitoring: &mockMonitoring{}})

	for _, path := range []string{"/api/v1/thermostat/state", "/api/v1/thermostat/heater"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
		if w.Code == http.StatusOK {
			t.Fatalf("POST %s must not succeed", path)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New(prometheus.NewRegistry())
	m.SetHeater(true)
	m.ObserveCycle(metrics.OutcomeOK, 10*time.Millisecond)

	r := NewHandler(&service.Service{}, m, nil).InitRoutes()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		"thermoclient_heater_on 1",
		`thermoclient_cycles_total{outcome="ok"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, body)
		}
	}
}

func TestSwaggerDoc(t *testing.T) {
	r := newTestRouter(&service.Service{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("swagger doc status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "/api/v1/thermostat/state") {
		t.Fatalf("swagger doc does not describe the state route")
	}
}
