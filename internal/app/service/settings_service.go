package service

import (
	"cf_tracker/internal/common"
	"cf_tracker/internal/domain/model"
	"cf_tracker/internal/domain/repository"
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// Rescheduler lets the settings service swap the scheduler's cron entry after
// a schedule change without importing the worker package.
type Rescheduler interface {
	Reschedule(spec string) error
}

type SettingsService struct {
	settingsRepo repository.SettingsRepository
	scheduler    Rescheduler
}

func NewSettingsService(settingsRepo repository.SettingsRepository, scheduler Rescheduler) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo, scheduler: scheduler}
}

func (s *SettingsService) Get(ctx context.Context) (*model.Settings, error) {
	return s.settingsRepo.Get(ctx)
}

// UpdateSettingsRequest carries partial updates; nil fields keep their current
// value.
type UpdateSettingsRequest struct {
	CronSchedule   *string `json:"cronSchedule"`
	EmailEnabled   *bool   `json:"emailEnabled"`
	InactivityDays *int    `json:"inactivityDays"`
}

func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (*model.Settings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	scheduleChanged := false
	if req.CronSchedule != nil && *req.CronSchedule != settings.CronSchedule {
		if _, err := cron.ParseStandard(*req.CronSchedule); err != nil {
			return nil, common.Errorf("invalid cron schedule %q: %v: %w", *req.CronSchedule, err, common.ErrBadRequest)
		}
		settings.CronSchedule = *req.CronSchedule
		scheduleChanged = true
	}
	if req.EmailEnabled != nil {
		settings.EmailEnabled = *req.EmailEnabled
	}
	if req.InactivityDays != nil {
		if *req.InactivityDays < 1 {
			return nil, common.Errorf("inactivity days must be at least 1: %w", common.ErrBadRequest)
		}
		settings.InactivityDays = *req.InactivityDays
	}

	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, err
	}

	if scheduleChanged && s.scheduler != nil {
		if err := s.scheduler.Reschedule(settings.CronSchedule); err != nil {
			// The new schedule is persisted and validated; it will apply on the
			// next process start even if the live swap failed.
			log.Printf("ERROR: Failed to reschedule sync job: %v", err)
		}
	}
	return settings, nil
}
