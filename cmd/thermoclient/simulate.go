package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"thermoclient/internal/config"
	"thermoclient/internal/logger"
	"thermoclient/internal/service"
)

const defaultSimTick = 1 * time.Second

func newSimulateCmd(root *rootOptions) *cobra.Command {
	var tick time.Duration

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate the room and its sensor for local testing",
		Long: `simulate plays the part of the heated room: it follows the heater state in
STATUS_FILE and writes the resulting temperature to TEMP_FILE, so the daemon
can be exercised without hardware.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd.Context(), root, tick)
		},
	}
	cmd.Flags().DurationVar(&tick, "tick", defaultSimTick, "Simulation step")
	return cmd
}

func runSimulate(parent context.Context, root *rootOptions, tick time.Duration) error {
	settings, _, err := loadSettings(root.configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(root.configPath)
	if err != nil {
		return err
	}
	log := logger.Get(resolveLevel(root.logLevel, settings.LogLevel))

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sim := service.NewSimulatorService(service.RoomConfig{
		TempFile:   cfg.TempFile,
		StatusFile: cfg.StatusFile,
		AmbientC:   settings.SimAmbient,
		HeatRate:   settings.SimHeatRate,
	}, log)
	sim.Run(ctx, tick)
	return nil
}
