package repository

import (
	"cf_tracker/internal/domain/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SettingsRepository persists the single configuration row consumed by the
// scheduler and the inactivity scanner.
type SettingsRepository interface {
	Get(ctx context.Context) (*model.Settings, error)
	Save(ctx context.Context, settings *model.Settings) error
}

type pgSettingsRepository struct {
	db       *sql.DB
	defaults model.Settings
}

func NewPgSettingsRepository(db *sql.DB, defaults model.Settings) SettingsRepository {
	return &pgSettingsRepository{db: db, defaults: defaults}
}

func (r *pgSettingsRepository) Get(ctx context.Context) (*model.Settings, error) {
	query := `SELECT cron_schedule, email_enabled, inactivity_days, updated_at
	          FROM settings WHERE id = 1`
	s := &model.Settings{}
	err := r.db.QueryRowContext(ctx, query).Scan(&s.CronSchedule, &s.EmailEnabled, &s.InactivityDays, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// First run: fall back to configured defaults until a save happens.
			defaults := r.defaults
			return &defaults, nil
		}
		return nil, fmt.Errorf("pgSettingsRepository.Get: %w", err)
	}
	return s, nil
}

func (r *pgSettingsRepository) Save(ctx context.Context, settings *model.Settings) error {
	query := `INSERT INTO settings (id, cron_schedule, email_enabled, inactivity_days, updated_at)
	          VALUES (1, $1, $2, $3, NOW())
	          ON CONFLICT (id) DO UPDATE SET
	            cron_schedule = EXCLUDED.cron_schedule,
	            email_enabled = EXCLUDED.email_enabled,
	            inactivity_days = EXCLUDED.inactivity_days,
	            updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, settings.CronSchedule, settings.EmailEnabled, settings.InactivityDays); err != nil {
		return fmt.Errorf("pgSettingsRepository.Save: %w", err)
	}
	return nil
}
