package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <config.yaml>",
	Short: "Validate a config file and print the effective settings.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(args[0], envFile)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "config ok: %s\n", args[0])
		fmt.Fprintf(w, "  instances: %d\n", cfg.Manager.MaxInstances)
		fmt.Fprintf(w, "  registers: %s %s\n", cfg.Registers.Bus, cfg.Registers.Endpoint)
		fmt.Fprintf(w, "  memory:    %d bytes\n", cfg.Memory.Capacity)
		if cfg.Status.Enabled {
			fmt.Fprintf(w, "  status:    %s %s slot %d\n", cfg.Status.Transport, cfg.Status.Endpoint, cfg.Status.BaseSlot)
		}
		if cfg.Trace.Enabled {
			fmt.Fprintf(w, "  trace:     %s\n", cfg.Trace.Dir)
		}
		if cfg.Monitor.Enabled {
			fmt.Fprintf(w, "  monitor:   %s\n", cfg.Monitor.Listen)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
