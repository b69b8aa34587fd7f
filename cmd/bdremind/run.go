package main

import (
	"fmt"

	"birthday_reminder/internal/domain/reminder"

	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Send reminders for upcoming birthdays once",
		Long: `Evaluate the birthday list against the reference date and notify every
birthday within the lookahead window that has not been reminded about yet.

The command exits non-zero when a notification could not be delivered. The
reminder stays unsent and is retried on the next run.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReminders(cmd, rootOpts)
		},
	}
}

func runReminders(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	a, err := newApplication(cmd.Context(), cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.service.Run(cmd.Context(), a.reference)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, occ := range report.Sent {
		fmt.Fprintf(out, "sent: %s\n", reminder.Render(occ))
	}
	for _, f := range report.Failed {
		fmt.Fprintf(out, "failed: %s\n", reminder.Render(f.Occurrence))
	}
	fmt.Fprintf(out, "%d sent, %d already sent, %d failed, %d invalid\n",
		len(report.Sent), len(report.AlreadySent), len(report.Failed), len(report.Invalid))

	return report.Err()
}
