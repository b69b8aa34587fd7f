package main

import (
	"fmt"
	"strconv"

	"birthday_reminder/internal/domain/reminder"

	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [days...]",
		Short: "Print upcoming birthdays without sending anything",
		Long: `Print the birthdays within the lookahead window, soonest first. Nothing is
sent and the sent-reminder state is not touched.

With day arguments only birthdays exactly that many days away are printed.

Example:
  bdremind list
  bdremind list 0 1 7`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := parseDays(args)
			if err != nil {
				return err
			}
			return listReminders(cmd, rootOpts, days)
		},
	}
}

func parseDays(args []string) ([]int, error) {
	days := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid day count %q: must be a non-negative integer", arg)
		}
		days = append(days, n)
	}
	return days, nil
}

func listReminders(cmd *cobra.Command, opts *RootOptions, days []int) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	a, err := newApplication(cmd.Context(), cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	due, _, err := a.service.Preview(cmd.Context(), a.reference, days)
	if err != nil {
		return err
	}
	for _, occ := range due {
		fmt.Fprintln(cmd.OutOrStdout(), reminder.Render(occ))
	}
	return nil
}
