package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConf(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "thermostat.conf")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const fullConf = `# thermostat daemon
SERVER_URL=http://10.0.0.5:5031
THERMOSTAT_ID=65f1c0ffee
TEMP_FILE=/tmp/temp
STATUS_FILE=/tmp/status
`

func TestLoad_AllKeys(t *testing.T) {
	path := writeConf(t, fullConf)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := AppConfig{
		ServerURL:    "http://10.0.0.5:5031",
		ThermostatID: "65f1c0ffee",
		TempFile:     "/tmp/temp",
		StatusFile:   "/tmp/status",
	}
	if cfg != want {
		t.Fatalf("got %+v, want %+v", cfg, want)
	}
}

func TestLoad_MissingKeys(t *testing.T) {
	path := writeConf(t, "SERVER_URL=http://x\nTEMP_FILE=/tmp/temp\n")

	_, err := Load(path)
	if !errors.Is(err, ErrMissingKeys) {
		t.Fatalf("expected ErrMissingKeys, got %v", err)
	}
	for _, k := range []string{KeyThermostatID, KeyStatusFile} {
		if !strings.Contains(err.Error(), k) {
			t.Fatalf("error %q should name %s", err, k)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.conf"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoad_ReReadsFileEveryCall(t *testing.T) {
	path := writeConf(t, fullConf)
	src := FileSource{Path: path}

	first, err := src.Load()
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	updated := strings.Replace(fullConf, "65f1c0ffee", "other-id", 1)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	second, err := src.Load()
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if first.ThermostatID == second.ThermostatID || second.ThermostatID != "other-id" {
		t.Fatalf("reload not observed: first=%q second=%q", first.ThermostatID, second.ThermostatID)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConf(t, fullConf)
	t.Setenv("THERMO_SERVER_URL", "http://override:1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerURL != "http://override:1" {
		t.Fatalf("env override ignored: %q", cfg.ServerURL)
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	path := writeConf(t, fullConf)

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Hysteresis != 0.5 || s.DefaultTarget != 20 || s.MaxPoints != 3 {
		t.Fatalf("unexpected control defaults: %+v", s)
	}
	if s.CycleInterval != 5*time.Second || s.RetryInterval != 10*time.Second || s.HTTPTimeout != 10*time.Second {
		t.Fatalf("unexpected interval defaults: %+v", s)
	}
	if s.RelayEnabled() {
		t.Fatalf("relay should be disabled by default")
	}
	if s.MQTTTopic != "thermostat/state" || s.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	loc, err := s.Location()
	if err != nil || loc != time.Local {
		t.Fatalf("expected local zone, got %v, %v", loc, err)
	}
}

func TestLoadSettings_Overrides(t *testing.T) {
	path := writeConf(t, fullConf+`HYSTERESIS=0.25
MAX_PROGRAM_POINTS=6
CYCLE_INTERVAL=2s
RETRY_INTERVAL=30s
TIMEZONE=UTC
RELAY_PIN=17
HTTP_ADDR=:8080
LOG_LEVEL=DEBUG
`)

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Hysteresis != 0.25 || s.MaxPoints != 6 {
		t.Fatalf("unexpected: %+v", s)
	}
	if s.CycleInterval != 2*time.Second || s.RetryInterval != 30*time.Second {
		t.Fatalf("unexpected intervals: %+v", s)
	}
	if !s.RelayEnabled() || s.RelayPin != 17 || s.HTTPAddr != ":8080" || s.LogLevel != "debug" {
		t.Fatalf("unexpected: %+v", s)
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	cases := map[string]string{
		"negative hysteresis": "HYSTERESIS=-1\n",
		"zero points":         "MAX_PROGRAM_POINTS=0\n",
		"zero cycle":          "CYCLE_INTERVAL=0s\n",
		"bad timezone":        "TIMEZONE=Mars/Olympus\n",
	}
	for name, extra := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConf(t, fullConf+extra)
			if _, err := LoadSettings(path); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestDefaultSettings(t *testing.T) {
	t.Setenv("THERMO_CYCLE_INTERVAL", "2s")

	s := DefaultSettings()
	if s.CycleInterval != 2*time.Second {
		t.Fatalf("CycleInterval = %v, want env override 2s", s.CycleInterval)
	}
	if s.Hysteresis != 0.5 || s.MaxPoints != 3 || s.RelayEnabled() {
		t.Fatalf("unexpected defaults: %+v", s)
	}
}

func TestLoadSettings_MissingFileIsNotExist(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "absent.conf"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected a not-exist error, got %v", err)
	}
}
