package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"birthday_reminder/internal/app"
	"birthday_reminder/internal/domain/birthday"
	"birthday_reminder/internal/infra/config"
	idb "birthday_reminder/internal/infra/database"
	"birthday_reminder/internal/infra/logger"
	"birthday_reminder/internal/infra/source"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var errNotEditable = errors.New("only the postgres birthday source can be edited; set BIRTHDAY_SOURCE=postgres or edit the file directly")

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <YYYY-MM-DD|MM-DD> <name>",
		Short: "Add a birthday to the database",
		Long: `Add a birthday to the postgres birthday source. The rest of the arguments
form the name.

Example:
  bdremind add 1990-12-10 Ada Lovelace
  bdremind add 02-29 Leap`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := source.NewEntry(args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return withAdminService(cmd, rootOpts, func(svc *app.AdminService, reference birthday.Date) error {
				added, err := svc.AddBirthday(cmd.Context(), entry, reference)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", added.Name)
				return nil
			})
		},
	}
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <name>",
		Short:         "Remove a birthday from the database",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return withAdminService(cmd, rootOpts, func(svc *app.AdminService, _ birthday.Date) error {
				removed, err := svc.RemoveBirthday(cmd.Context(), name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", removed.Name)
				return nil
			})
		},
	}
}

func withAdminService(cmd *cobra.Command, opts *RootOptions, fn func(svc *app.AdminService, reference birthday.Date) error) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	if cfg.BirthdaySource != "postgres" {
		return errNotEditable
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	reference, err := resolveReference(cfg, loc)
	if err != nil {
		return err
	}

	store, closeStore, err := openBirthdayStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	return fn(app.NewAdminService(store, logrus.NewEntry(logger.Log)), reference)
}

func openBirthdayStore(ctx context.Context, cfg *config.AppConfig) (birthday.Store, func() error, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	db, err := idb.NewPostgresConnection(connectCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to database: %w", err)
	}
	return idb.NewPostgresBirthdaySource(db), db.Close, nil
}
