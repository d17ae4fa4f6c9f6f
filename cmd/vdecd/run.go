package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var runCmd = &cobra.Command{
	Use:   "run <config.yaml>",
	Short: "Attach to the decode core and serve until interrupted.",
	Long: "`run` holds one open reference on the decode core for its lifetime, " +
		"so the core stays powered and its status block stays current.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := setupLogger()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(args[0], envFile)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(cfg, log)
		if err != nil {
			return err
		}
		if err := a.start(ctx); err != nil {
			_ = a.shutdown(context.Background())
			return err
		}
		if err := a.mgr.Open(); err != nil {
			_ = a.shutdown(context.Background())
			return err
		}

		log.Info("vdecd running",
			"session", a.mgr.Session(),
			"bus", cfg.Registers.Bus,
			"instances", cfg.Manager.MaxInstances,
		)

		<-ctx.Done()
		log.Info("shutting down", "timeout", shutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := a.mgr.Close(shutdownCtx); err != nil {
			log.Warn("close failed", "err", err)
		}
		return a.shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
