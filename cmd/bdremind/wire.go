package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"birthday_reminder/internal/app"
	"birthday_reminder/internal/domain/birthday"
	"birthday_reminder/internal/domain/reminder"
	"birthday_reminder/internal/infra/config"
	idb "birthday_reminder/internal/infra/database"
	"birthday_reminder/internal/infra/logger"
	"birthday_reminder/internal/infra/memory"
	"birthday_reminder/internal/infra/notifier"
	"birthday_reminder/internal/infra/source"
	"birthday_reminder/internal/infra/telegram"

	"github.com/sirupsen/logrus"
)

const connectTimeout = 30 * time.Second

// application is the wired object graph for one command invocation.
type application struct {
	cfg       *config.AppConfig
	service   *app.ReminderService
	location  *time.Location
	reference birthday.Date
	closers   []func() error
}

// newApplication builds source, state store, notifier and service from cfg.
// A preview application keeps state in memory and only logs notifications.
func newApplication(ctx context.Context, cfg *config.AppConfig, preview bool) (_ *application, err error) {
	log := logger.Component("main")
	a := &application{cfg: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.location, err = cfg.Location()
	if err != nil {
		return nil, err
	}
	a.reference, err = resolveReference(cfg, a.location)
	if err != nil {
		return nil, err
	}
	policy, err := birthday.ParseLeapDayPolicy(cfg.LeapDayPolicy)
	if err != nil {
		return nil, err
	}

	var pg *sql.DB
	if cfg.BirthdaySource == "postgres" || (!preview && cfg.StateBackend == "postgres") {
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		pg, err = idb.NewPostgresConnection(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("could not connect to database: %w", err)
		}
		a.closers = append(a.closers, pg.Close)
		log.Debug("Database connection established successfully")
	}

	src, err := newSource(cfg, pg)
	if err != nil {
		return nil, err
	}

	var repo reminder.Repository
	var notify reminder.Notifier
	if preview {
		repo = memory.NewMarkerRepository()
		notify = notifier.NewLog(logrus.NewEntry(logger.Log))
	} else {
		repo, err = a.newRepository(ctx, pg)
		if err != nil {
			return nil, err
		}
		notify, err = newNotifier(cfg)
		if err != nil {
			return nil, err
		}
	}

	base := logrus.NewEntry(logger.Log)
	a.service = app.NewReminderService(
		src,
		reminder.NewEvaluator(policy),
		app.NewTracker(repo, base),
		notify,
		cfg.LookaheadDays,
		cfg.PruneOnRun,
		base,
	)
	log.WithFields(logrus.Fields{
		"source":   cfg.BirthdaySource,
		"state":    cfg.StateBackend,
		"notifier": cfg.Notifier,
		"preview":  preview,
	}).Debug("Application initialized")
	return a, nil
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Component("main").WithError(err).Warn("Close failed")
		}
	}
	a.closers = nil
}

func newSource(cfg *config.AppConfig, pg *sql.DB) (birthday.Source, error) {
	switch cfg.BirthdaySource {
	case "file":
		return source.NewFile(cfg.BirthdayFile), nil
	case "env":
		return source.NewEnv("BIRTHDAYS", cfg.BirthdaysInline), nil
	case "postgres":
		return idb.NewPostgresBirthdaySource(pg), nil
	default:
		return nil, fmt.Errorf("unknown birthday source %q", cfg.BirthdaySource)
	}
}

func (a *application) newRepository(ctx context.Context, pg *sql.DB) (reminder.Repository, error) {
	switch a.cfg.StateBackend {
	case "memory":
		return memory.NewMarkerRepository(), nil
	case "sqlite":
		db, err := idb.NewSQLiteConnection(ctx, a.cfg.StatePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return idb.NewSQLiteMarkerRepository(db), nil
	case "postgres":
		return idb.NewPostgresMarkerRepository(pg), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", a.cfg.StateBackend)
	}
}

func newNotifier(cfg *config.AppConfig) (reminder.Notifier, error) {
	switch cfg.Notifier {
	case "log":
		return notifier.NewLog(logrus.NewEntry(logger.Log)), nil
	case "webhook":
		return notifier.NewWebhook(cfg.WebhookURL, cfg.WebhookTimeout, cfg.WebhookRatePerSecond), nil
	case "telegram":
		bot, err := telegram.NewBot(cfg.TelegramToken)
		if err != nil {
			return nil, err
		}
		return telegram.NewNotifier(telegram.NewTelebotAdapter(bot), cfg.TelegramChatID), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}
}

// resolveReference returns REFERENCE_DATE when set, otherwise today in loc.
func resolveReference(cfg *config.AppConfig, loc *time.Location) (birthday.Date, error) {
	if cfg.ReferenceDate == "" {
		return birthday.Today(loc), nil
	}
	d, err := birthday.ParseDate(cfg.ReferenceDate)
	if err != nil {
		return birthday.Date{}, fmt.Errorf("invalid REFERENCE_DATE: %w", err)
	}
	return d, nil
}
