package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"thermoclient/internal/cloud"
	"thermoclient/internal/config"
	"thermoclient/internal/control"
	"thermoclient/internal/device"
	"thermoclient/internal/handlers"
	"thermoclient/internal/logger"
	"thermoclient/internal/metrics"
	"thermoclient/internal/repository"
	"thermoclient/internal/repository/db"
	"thermoclient/internal/server"
	"thermoclient/internal/service"
)

const shutdownTimeout = 10 * time.Second

func runDaemon(parent context.Context, opts *rootOptions) error {
	settings, missing, err := loadSettings(opts.configPath)
	if err != nil {
		return err
	}
	log := logger.Get(resolveLevel(opts.logLevel, settings.LogLevel))
	if missing {
		log.Warnw("config_file_missing", "path", opts.configPath, "using", "built-in defaults")
	}

	loc, err := settings.Location()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	store, closeStore, err := openStore(settings.DBPath, log)
	if err != nil {
		return err
	}
	defer closeStore()

	sinks, closeSinks, err := buildSinks(settings, store, log)
	if err != nil {
		return err
	}
	defer closeSinks()

	client := cloud.NewClient(settings.HTTPTimeout)
	loop := control.NewLoop(control.Deps{
		Config:   config.FileSource{Path: opts.configPath},
		Sensor:   device.SensorFile{},
		Program:  client,
		Status:   device.StatusFile{},
		Reporter: client,
		Sinks:    sinks,
		Metrics:  m,
		Log:      log,
	}, control.Options{
		Band:           settings.Hysteresis,
		DefaultTargetC: control.TargetC(settings.DefaultTarget),
		MaxPoints:      settings.MaxPoints,
		CycleInterval:  settings.CycleInterval,
		RetryInterval:  settings.RetryInterval,
		Location:       loc,
	})

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	srv, err := startStatusServer(settings, store, m, log)
	if err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sig)
	go handleSignals(ctx, sig, cancel, log)

	log.Infow("daemon_started", "config", opts.configPath, "http_addr", settings.HTTPAddr, "db_path", settings.DBPath)
	runErr := loop.Run(ctx)

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorw("status_server_shutdown_failed", "err", err)
		}
	}
	log.Infow("daemon_stopped")
	return runErr
}

// loadSettings reads the startup settings. A file that does not exist yet is
// not fatal: the defaults apply and the loop keeps retrying the per-cycle
// configuration until the file appears.
func loadSettings(path string) (config.Settings, bool, error) {
	s, err := config.LoadSettings(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.DefaultSettings(), true, nil
	}
	if err != nil {
		return config.Settings{}, false, err
	}
	return s, false, nil
}

func resolveLevel(flagLevel, fileLevel string) string {
	if flagLevel != "" {
		return flagLevel
	}
	return fileLevel
}

// openStore returns the snapshot store: SQLite when a path is configured,
// process memory otherwise.
func openStore(path string, log *logger.Logger) (repository.StateRepo, func(), error) {
	if path == "" {
		return repository.NewMemoryState(), func() {}, nil
	}
	conn, err := db.InitDB(path)
	if err != nil {
		return nil, nil, fmt.Errorf("init sqlite: %w", err)
	}
	log.Infow("snapshot_store_opened", "path", path)
	closeFn := func() {
		if err := conn.Close(); err != nil {
			log.Errorw("snapshot_store_close_failed", "err", err)
		}
	}
	return repository.NewRepository(conn).StateRepo, closeFn, nil
}

// startStatusServer binds the read-only status API when HTTP_ADDR is set.
// A bind failure is a startup error.
func startStatusServer(settings config.Settings, store repository.StateRepo, m *metrics.Metrics, log *logger.Logger) (*server.Server, error) {
	if settings.HTTPAddr == "" {
		return nil, nil
	}
	ln, err := server.Listen(settings.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on %q: %w", settings.HTTPAddr, err)
	}
	gin.SetMode(gin.ReleaseMode)

	services := service.NewService(&repository.Repository{StateRepo: store}, settings.DefaultTarget)
	h := handlers.NewHandler(services, m, log)

	srv := &server.Server{}
	go func() {
		log.Infow("status_server_listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln, h.InitRoutes()); err != nil {
			log.Errorw("status_server_failed", "err", err)
		}
	}()
	return srv, nil
}

// handleSignals cancels the loop on SIGINT or SIGTERM. SIGHUP needs no
// action because the configuration is re-read at the start of every cycle.
func handleSignals(ctx context.Context, sig <-chan os.Signal, cancel context.CancelFunc, log *logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-sig:
			if s == syscall.SIGHUP {
				log.Infow("reload_requested", "signal", s.String(), "applies", "next cycle")
				continue
			}
			log.Infow("shutdown_requested", "signal", s.String())
			cancel()
			return
		}
	}
}
