package control

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"thermoclient/internal/config"
	"thermoclient/internal/logger"
	"thermoclient/internal/metrics"
	"thermoclient/internal/models"
	"thermoclient/internal/schedule"
)

// Default timings of the loop.
const (
	DefaultCycleInterval = 5 * time.Second
	DefaultRetryInterval = 10 * time.Second
)

var errNonFiniteReading = errors.New("non-finite temperature reading")

// Options tunes the loop. Band is used as given, so zero means no dead
// zone. A nil DefaultTargetC and non-positive counts or durations fall back
// to the package defaults.
type Options struct {
	Band           float64
	DefaultTargetC *float64
	MaxPoints      int
	CycleInterval  time.Duration
	RetryInterval  time.Duration
	Location       *time.Location
}

// TargetC returns a pointer to c for Options.DefaultTargetC.
func TargetC(c float64) *float64 { return &c }

func (o Options) withDefaults() Options {
	if o.DefaultTargetC == nil {
		o.DefaultTargetC = TargetC(schedule.DefaultTargetC)
	}
	if o.MaxPoints <= 0 {
		o.MaxPoints = schedule.DefaultMaxPoints
	}
	if o.CycleInterval <= 0 {
		o.CycleInterval = DefaultCycleInterval
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = DefaultRetryInterval
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	return o
}

// Deps are the collaborators of the loop. Config, Sensor, Program, Status
// and Reporter are required.
type Deps struct {
	Config   ConfigSource
	Sensor   Sensor
	Program  ProgramClient
	Status   StatusWriter
	Reporter Reporter
	Sinks    []NamedSink
	Metrics  *metrics.Metrics
	Log      *logger.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// CycleResult describes what one cycle did.
type CycleResult struct {
	CycleID  string
	Outcome  string
	Decided  bool
	Reported bool
	State    models.ThermostatState
}

// Loop owns the controller state and runs cycles until cancelled.
type Loop struct {
	deps   Deps
	opts   Options
	target float64
	parser schedule.Parser
	log    *logger.Logger
	now    func() time.Time

	state ControllerState
}

// NewLoop builds a Loop. The heater starts OFF.
func NewLoop(deps Deps, opts Options) *Loop {
	opts = opts.withDefaults()
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Loop{
		deps:   deps,
		opts:   opts,
		target: *opts.DefaultTargetC,
		parser: schedule.NewParser(opts.MaxPoints),
		log:    log,
		now:    now,
		state:  ControllerState{LastTargetC: *opts.DefaultTargetC},
	}
}

// State returns the current controller state.
func (l *Loop) State() ControllerState {
	return l.state
}

// Run executes cycles until ctx is cancelled. Cancellation is observed
// between cycle steps and while waiting, never inside a network call.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Infow("control_loop_started",
		"cycle_interval", l.opts.CycleInterval,
		"retry_interval", l.opts.RetryInterval,
		"band", l.opts.Band,
	)
	for {
		res, wait := l.RunCycle(ctx)
		if res.Outcome == metrics.OutcomeInterrupted || !sleep(ctx, wait) {
			l.log.Infow("control_loop_stopped", "heater_on", l.state.HeaterOn)
			return nil
		}
	}
}

// RunCycle performs one cycle and returns its result together with how long
// to wait before the next one.
func (l *Loop) RunCycle(ctx context.Context) (CycleResult, time.Duration) {
	start := l.now()
	res := CycleResult{CycleID: uuid.NewString()}
	log := l.log.With("cycle_id", res.CycleID)

	finish := func(outcome string, wait time.Duration) (CycleResult, time.Duration) {
		res.Outcome = outcome
		l.deps.Metrics.ObserveCycle(outcome, l.now().Sub(start))
		return res, wait
	}

	// 1. configuration
	cfg, err := l.deps.Config.Load()
	if err != nil {
		log.Errorw("config_load_failed", "err", err, "retry_in", l.opts.RetryInterval)
		return finish(metrics.OutcomeConfigFailed, l.opts.RetryInterval)
	}
	log.Infow("config_loaded", "server_url", cfg.ServerURL, "thermostat_id", cfg.ThermostatID)
	if ctx.Err() != nil {
		return finish(metrics.OutcomeInterrupted, 0)
	}

	// 2. sensor
	current, sensorErr := l.deps.Sensor.ReadTemperature(cfg.TempFile)
	if sensorErr == nil && (math.IsNaN(current) || math.IsInf(current, 0)) {
		sensorErr = fmt.Errorf("%w: %v", errNonFiniteReading, current)
	}
	if sensorErr != nil {
		current = 0
		log.Errorw("sensor_read_failed", "err", sensorErr, "path", cfg.TempFile)
	} else {
		log.Infow("sensor_read", "current_temp_c", current)
		l.deps.Metrics.SetCurrentTemp(current)
	}
	if ctx.Err() != nil {
		return finish(metrics.OutcomeInterrupted, 0)
	}

	// 3. program; the request is not tied to ctx so shutdown never cuts it short
	raw, err := l.deps.Program.GetProgram(context.WithoutCancel(ctx), cfg.ServerURL, cfg.ThermostatID)
	if err != nil {
		log.Errorw("program_fetch_failed", "err", err, "retry_in", l.opts.RetryInterval)
		return finish(metrics.OutcomeProgramFailed, l.opts.RetryInterval)
	}
	if ctx.Err() != nil {
		return finish(metrics.OutcomeInterrupted, 0)
	}

	// 4. parse, resolve, decide
	target, points := l.resolve(raw, start, log)
	l.deps.Metrics.SetTarget(target)

	prev := l.state.HeaterOn
	if sensorErr == nil {
		l.state.HeaterOn = Decide(current, target, prev, l.opts.Band)
		res.Decided = true
	} else {
		log.Warnw("decision_skipped", "reason", "no valid sensor reading", "heater_on", prev)
	}
	l.state.LastTargetC = target
	if l.state.HeaterOn != prev {
		log.Infow("heater_switched", "from", onOff(prev), "to", onOff(l.state.HeaterOn),
			"current_temp_c", current, "target_temp_c", target)
	}
	l.deps.Metrics.SetHeater(l.state.HeaterOn)

	res.State = models.ThermostatState{
		ID:            1,
		ThermostatID:  cfg.ThermostatID,
		CurrentTempC:  current,
		SensorOK:      sensorErr == nil,
		TargetTempC:   target,
		HeaterOn:      l.state.HeaterOn,
		ProgramPoints: points,
		CycleID:       res.CycleID,
		UpdatedAt:     l.now().UTC(),
	}

	// 5. persist and report, best effort
	l.persist(ctx, cfg, res.State, log)
	if sensorErr == nil {
		res.Reported = l.report(ctx, cfg, current, log)
	}

	outcome := metrics.OutcomeOK
	if sensorErr != nil {
		outcome = metrics.OutcomeSensorFailed
	}
	log.Infow("cycle_completed",
		"outcome", outcome,
		"current_temp_c", current,
		"target_temp_c", target,
		"heater_on", l.state.HeaterOn,
	)
	return finish(outcome, l.opts.CycleInterval)
}

func (l *Loop) resolve(raw string, at time.Time, log *logger.Logger) (float64, int) {
	sched := l.parser.Parse(raw)
	now := schedule.ClockOf(at, l.opts.Location)
	if len(sched) == 0 {
		log.Warnw("program_unparsed", "fallback_target_c", l.target, "payload_bytes", len(raw))
		return l.target, 0
	}
	target := schedule.Resolve(sched, now, l.target)
	log.Infow("setpoint_resolved", "now", now.String(), "points", len(sched), "target_temp_c", target)
	return target, len(sched)
}

func (l *Loop) persist(ctx context.Context, cfg config.AppConfig, st models.ThermostatState, log *logger.Logger) {
	if err := l.deps.Status.WriteStatus(cfg.StatusFile, st.HeaterOn, st.UpdatedAt); err != nil {
		log.Errorw("status_write_failed", "err", err, "path", cfg.StatusFile)
	} else {
		log.Debugw("status_written", "path", cfg.StatusFile, "heater", st.HeaterLabel())
	}
	for _, s := range l.deps.Sinks {
		if err := s.Sink.Record(context.WithoutCancel(ctx), st); err != nil {
			log.Errorw("sink_record_failed", "sink", s.Name, "err", err)
		}
	}
}

func (l *Loop) report(ctx context.Context, cfg config.AppConfig, current float64, log *logger.Logger) bool {
	err := l.deps.Reporter.PostStatus(context.WithoutCancel(ctx), cfg.ServerURL, cfg.ThermostatID, current, l.state.HeaterOn)
	if err != nil {
		l.deps.Metrics.ReportFailed()
		log.Errorw("status_report_failed", "err", err)
		return false
	}
	return true
}

// sleep waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
