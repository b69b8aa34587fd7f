package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"birthday_reminder/internal/infra/logger"
	"birthday_reminder/internal/infra/scheduler"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const daemonRunTimeout = 5 * time.Minute

// NewDaemonCommand creates the daemon command.
func NewDaemonCommand(rootOpts *RootOptions) *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run reminders on the CRON_SPEC schedule until interrupted",
		Long: `Keep running and perform a reminder run on every CRON_SPEC tick, using the
current date in TIMEZONE. Stops gracefully on SIGINT or SIGTERM.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, rootOpts)
			if err != nil {
				return err
			}
			a, err := newApplication(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			log := logger.Component("main")
			if cfg.ReferenceDate != "" {
				log.Warn("REFERENCE_DATE is ignored by the daemon; each run uses the current date")
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			sched := scheduler.NewReminderScheduler(a.service, a.location, cfg.CronSpec, daemonRunTimeout, logrus.NewEntry(logger.Log))
			if runNow {
				sched.RunOnce()
			}
			if err := sched.Start(); err != nil {
				return err
			}

			select {
			case <-quit:
			case <-cmd.Context().Done():
			}

			log.Info("Shutting down...")
			sched.Stop()
			log.Info("Shut down gracefully")
			return nil
		},
	}

	cmd.Flags().BoolVar(&runNow, "run-now", false, "perform one run immediately on startup")
	return cmd
}
