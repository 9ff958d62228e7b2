package model

import (
	"time"
)

// ContestResult is one rated contest appearance for a student. A row is keyed
// by (StudentID, ContestID); re-syncing the same contest overwrites it in place.
type ContestResult struct {
	ID                      string    `json:"id"`
	StudentID               string    `json:"studentId"`
	ContestID               int       `json:"contestId"`
	ContestName             string    `json:"contestName"`
	Handle                  string    `json:"handle"`
	Rank                    int       `json:"rank"`
	OldRating               int       `json:"oldRating"`
	NewRating               int       `json:"newRating"`
	RatingChange            int       `json:"ratingChange"`
	RatingUpdateTimeSeconds int64     `json:"ratingUpdateTimeSeconds"`
	ContestDate             time.Time `json:"date"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}
