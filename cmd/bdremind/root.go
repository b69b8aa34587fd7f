package main

import (
	"fmt"

	"birthday_reminder/internal/infra/config"
	"birthday_reminder/internal/infra/logger"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands. Set flags override the
// matching environment variables.
type RootOptions struct {
	File      string
	Lookahead int
	Date      string
}

// NewRootCommand creates the bdremind command tree. Without a subcommand it
// behaves like "run".
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "bdremind",
		Short: "Birthday reminders",
		Long: `bdremind reads a list of birthdays and sends one reminder per upcoming
birthday within the lookahead window. Sent reminders are recorded, so running
it repeatedly (from cron or the built-in daemon) never notifies twice.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReminders(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.File, "file", "f", "", "birthday file (overrides BIRTHDAY_FILE and selects the file source)")
	cmd.PersistentFlags().IntVarP(&opts.Lookahead, "lookahead", "l", 0, "days ahead to remind about (overrides LOOKAHEAD_DAYS)")
	cmd.PersistentFlags().StringVar(&opts.Date, "date", "", "reference date YYYY-MM-DD instead of today (overrides REFERENCE_DATE)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewDaemonCommand(opts))
	cmd.AddCommand(NewPruneCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))

	return cmd
}

// loadConfig reads the environment, applies flag overrides and initializes logging.
func loadConfig(cmd *cobra.Command, opts *RootOptions) (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("file") {
		cfg.BirthdaySource = "file"
		cfg.BirthdayFile = opts.File
	}
	if flags.Changed("lookahead") {
		cfg.LookaheadDays = opts.Lookahead
	}
	if flags.Changed("date") {
		cfg.ReferenceDate = opts.Date
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	logger.Init(cfg)
	return cfg, nil
}
