package model

import (
	"time"
)

const (
	VerdictOK = "OK"

	DefaultProblemIndex    = "?"
	DefaultProblemName     = "Unknown"
	DefaultProblemType     = "PROGRAMMING"
	DefaultTestset         = "TESTS"
	DefaultParticipantType = "UNKNOWN"
	DefaultMemberHandle    = "unknown"
)

// Problem is the nested problem descriptor attached to a submission, stored as
// a jsonb column.
type Problem struct {
	ContestID int      `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Points    float64  `json:"points"`
	Rating    int      `json:"rating"`
	Tags      []string `json:"tags"`
}

type Member struct {
	Handle string `json:"handle"`
}

// Author is the nested participation descriptor attached to a submission,
// stored as a jsonb column.
type Author struct {
	ContestID        int      `json:"contestId"`
	Members          []Member `json:"members"`
	ParticipantType  string   `json:"participantType"`
	Ghost            bool     `json:"ghost"`
	Room             int      `json:"room"`
	StartTimeSeconds int64    `json:"startTimeSeconds"`
}

// SubmissionRecord is one judged submission for a student. A row is keyed by
// (StudentID, SubmissionID); re-syncing overwrites it in place, which also
// refreshes verdicts that changed after the first sync (system tests, hacks).
type SubmissionRecord struct {
	ID                  string    `json:"id"`
	StudentID           string    `json:"studentId"`
	SubmissionID        int64     `json:"submissionId"`
	ContestID           int       `json:"contestId"`
	CreationTimeSeconds int64     `json:"creationTimeSeconds"`
	RelativeTimeSeconds int64     `json:"relativeTimeSeconds"`
	Problem             Problem   `json:"problem"`
	Author              Author    `json:"author"`
	ProgrammingLanguage string    `json:"programmingLanguage"`
	Verdict             string    `json:"verdict"`
	Testset             string    `json:"testset"`
	PassedTestCount     int       `json:"passedTestCount"`
	TimeConsumedMillis  int       `json:"timeConsumedMillis"`
	MemoryConsumedBytes int64     `json:"memoryConsumedBytes"`
	SubmissionDate      time.Time `json:"submissionDate"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
