package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPruneCommand creates the prune command.
func NewPruneCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete sent-reminder records from past years",
		Long: `Delete sent-reminder records whose birthday year is before the reference
year. Records for the current and next year are kept.`,
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

			removed, err := a.service.Prune(cmd.Context(), a.reference)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d records before %d\n", removed, a.reference.Year)
			return nil
		},
	}
}
