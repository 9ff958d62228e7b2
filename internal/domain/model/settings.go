package model

import (
	"time"
)

// Settings is the single persisted configuration record consumed by the
// scheduler (CronSchedule) and the inactivity scanner (EmailEnabled,
// InactivityDays).
type Settings struct {
	CronSchedule   string    `json:"cronSchedule"`
	EmailEnabled   bool      `json:"emailEnabled"`
	InactivityDays int       `json:"inactivityDays"`
	UpdatedAt      time.Time `json:"updated_at"`
}
