// Package config loads the thermostat configuration file.
//
// The file is a flat KEY=VALUE list (the format the daemon has always used),
// read through viper's dotenv support. Environment variables prefixed with
// THERMO_ override file values, e.g. THERMO_SERVER_URL.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "/etc/thermostat.conf"

// Keys understood in the configuration file.
const (
	KeyServerURL     = "SERVER_URL"
	KeyThermostatID  = "THERMOSTAT_ID"
	KeyTempFile      = "TEMP_FILE"
	KeyStatusFile    = "STATUS_FILE"
	KeyHysteresis    = "HYSTERESIS"
	KeyDefaultTarget = "DEFAULT_TARGET"
	KeyMaxPoints     = "MAX_PROGRAM_POINTS"
	KeyCycleInterval = "CYCLE_INTERVAL"
	KeyRetryInterval = "RETRY_INTERVAL"
	KeyHTTPTimeout   = "HTTP_TIMEOUT"
	KeyTimezone      = "TIMEZONE"
	KeyLogLevel      = "LOG_LEVEL"
	KeyHTTPAddr      = "HTTP_ADDR"
	KeyDBPath        = "DB_PATH"
	KeyMQTTBroker    = "MQTT_BROKER"
	KeyMQTTTopic     = "MQTT_TOPIC"
	KeyRelayChip     = "RELAY_CHIP"
	KeyRelayPin      = "RELAY_PIN"
	KeySimAmbient    = "SIM_AMBIENT"
	KeySimHeatRate   = "SIM_HEAT_RATE"
)

const envPrefix = "THERMO"

// ErrMissingKeys is returned when a required key is absent or empty.
var ErrMissingKeys = errors.New("config file is missing required keys")

// AppConfig holds the values re-read on every control cycle.
type AppConfig struct {
	ServerURL    string
	ThermostatID string
	TempFile     string
	StatusFile   string
}

// Settings holds tuning values read once at startup. They are never
// changed by a reload.
type Settings struct {
	Hysteresis    float64
	DefaultTarget float64
	MaxPoints     int
	CycleInterval time.Duration
	RetryInterval time.Duration
	HTTPTimeout   time.Duration
	Timezone      string
	LogLevel      string

	HTTPAddr   string
	DBPath     string
	MQTTBroker string
	MQTTTopic  string
	RelayChip  string
	RelayPin   int

	SimAmbient  float64
	SimHeatRate float64
}

// Location resolves Timezone; empty means the process local zone.
func (s Settings) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// RelayEnabled reports whether a GPIO line should drive the heater.
func (s Settings) RelayEnabled() bool {
	return s.RelayPin >= 0
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyHysteresis, 0.5)
	v.SetDefault(KeyDefaultTarget, 20.0)
	v.SetDefault(KeyMaxPoints, 3)
	v.SetDefault(KeyCycleInterval, 5*time.Second)
	v.SetDefault(KeyRetryInterval, 10*time.Second)
	v.SetDefault(KeyHTTPTimeout, 10*time.Second)
	v.SetDefault(KeyTimezone, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyHTTPAddr, "")
	v.SetDefault(KeyDBPath, "")
	v.SetDefault(KeyMQTTBroker, "")
	v.SetDefault(KeyMQTTTopic, "thermostat/state")
	v.SetDefault(KeyRelayChip, "gpiochip0")
	v.SetDefault(KeyRelayPin, -1)
	v.SetDefault(KeySimAmbient, 12.0)
	v.SetDefault(KeySimHeatRate, 0.05)
}

// read returns a fresh viper instance loaded from path, so that every call
// observes the file as it is now.
func read(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	return v, nil
}

// Load reads the per-cycle configuration from path. All four keys are
// required.
func Load(path string) (AppConfig, error) {
	v, err := read(path)
	if err != nil {
		return AppConfig{}, err
	}

	cfg := AppConfig{
		ServerURL:    strings.TrimSpace(v.GetString(KeyServerURL)),
		ThermostatID: strings.TrimSpace(v.GetString(KeyThermostatID)),
		TempFile:     strings.TrimSpace(v.GetString(KeyTempFile)),
		StatusFile:   strings.TrimSpace(v.GetString(KeyStatusFile)),
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every required key has a value.
func (c AppConfig) Validate() error {
	var missing []string
	for _, kv := range []struct{ key, val string }{
		{KeyServerURL, c.ServerURL},
		{KeyThermostatID, c.ThermostatID},
		{KeyTempFile, c.TempFile},
		{KeyStatusFile, c.StatusFile},
	} {
		if kv.val == "" {
			missing = append(missing, kv.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingKeys, strings.Join(missing, ", "))
	}
	return nil
}

// LoadSettings reads the startup-only settings from path.
func LoadSettings(path string) (Settings, error) {
	v, err := read(path)
	if err != nil {
		return Settings{}, err
	}

	s := settingsFrom(v)
	if err := s.validate(); err != nil {
		return Settings{}, fmt.Errorf("config %q: %w", path, err)
	}
	return s, nil
}

// DefaultSettings returns the built-in settings with THERMO_ environment
// overrides applied. It is used when the file does not exist yet at startup.
func DefaultSettings() Settings {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)
	return settingsFrom(v)
}

func settingsFrom(v *viper.Viper) Settings {
	return Settings{
		Hysteresis:    v.GetFloat64(KeyHysteresis),
		DefaultTarget: v.GetFloat64(KeyDefaultTarget),
		MaxPoints:     v.GetInt(KeyMaxPoints),
		CycleInterval: v.GetDuration(KeyCycleInterval),
		RetryInterval: v.GetDuration(KeyRetryInterval),
		HTTPTimeout:   v.GetDuration(KeyHTTPTimeout),
		Timezone:      strings.TrimSpace(v.GetString(KeyTimezone)),
		LogLevel:      strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		HTTPAddr:      strings.TrimSpace(v.GetString(KeyHTTPAddr)),
		DBPath:        strings.TrimSpace(v.GetString(KeyDBPath)),
		MQTTBroker:    strings.TrimSpace(v.GetString(KeyMQTTBroker)),
		MQTTTopic:     strings.TrimSpace(v.GetString(KeyMQTTTopic)),
		RelayChip:     strings.TrimSpace(v.GetString(KeyRelayChip)),
		RelayPin:      v.GetInt(KeyRelayPin),
		SimAmbient:    v.GetFloat64(KeySimAmbient),
		SimHeatRate:   v.GetFloat64(KeySimHeatRate),
	}
}

func (s Settings) validate() error {
	switch {
	case s.Hysteresis < 0:
		return fmt.Errorf("%s must be >= 0", KeyHysteresis)
	case s.MaxPoints < 1:
		return fmt.Errorf("%s must be >= 1", KeyMaxPoints)
	case s.CycleInterval <= 0:
		return fmt.Errorf("%s must be > 0", KeyCycleInterval)
	case s.RetryInterval <= 0:
		return fmt.Errorf("%s must be > 0", KeyRetryInterval)
	case s.HTTPTimeout <= 0:
		return fmt.Errorf("%s must be > 0", KeyHTTPTimeout)
	}
	if _, err := s.Location(); err != nil {
		return err
	}
	return nil
}

// FileSource reloads AppConfig from the same path on every call.
type FileSource struct {
	Path string
}

// Load implements the control loop's configuration source.
func (s FileSource) Load() (AppConfig, error) {
	return Load(s.Path)
}
