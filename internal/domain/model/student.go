package model

import (
	"time"
)

// Student is the identity record managed by the CRUD layer. The sync pipeline
// owns the rating fields, LastUpdated and LastSubmissionDate; the notifier
// owns EmailsSent and LastEmailDate.
type Student struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	Handle             string     `json:"codeforcesHandle"`
	CurrentRating      int        `json:"currentRating"`
	MaxRating          int        `json:"maxRating"`
	LastUpdated        time.Time  `json:"lastUpdated"`
	EmailEnabled       bool       `json:"emailEnabled"`
	EmailsSent         int        `json:"emailsSent"`
	LastEmailDate      *time.Time `json:"lastEmailDate"`
	LastSubmissionDate *time.Time `json:"lastSubmissionDate"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// InactiveSince reports whether the student should be flagged by the
// inactivity scanner: notifications enabled and no submission seen since the
// cutoff (a student who never submitted counts as inactive).
func (s *Student) InactiveSince(cutoff time.Time) bool {
	if !s.EmailEnabled {
		return false
	}
	return s.LastSubmissionDate == nil || s.LastSubmissionDate.Before(cutoff)
}

// SyncStatus is the reporting projection returned by the sync status endpoint.
type SyncStatus struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Handle      string    `json:"codeforcesHandle"`
	LastUpdated time.Time `json:"lastUpdated"`
}
