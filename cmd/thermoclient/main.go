// Command thermoclient runs the thermostat control daemon: it follows a
// time-of-day program fetched from the server and switches the heater with
// hysteresis.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"thermoclient/internal/config"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "thermoclient",
		Short: "Thermostat control daemon",
		Long: `thermoclient reads the room temperature, fetches the heating program from
the server, decides the heater state with hysteresis, writes it to the status
file and reports it upstream. The configuration file is re-read every cycle.

Run it under a process supervisor (systemd, runit); it stays in the foreground.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Path to the configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	root.AddCommand(newSimulateCmd(opts))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
