package service

import (
	"cf_tracker/internal/domain/model"
	"cf_tracker/internal/platform/codeforces"
	"time"

	"github.com/google/uuid"
)

// normalizeSubmission maps a raw judge submission onto a SubmissionRecord,
// defaulting every optional field so a sparse upstream row never aborts the
// batch.
func normalizeSubmission(studentID string, sub codeforces.Submission) *model.SubmissionRecord {
	record := &model.SubmissionRecord{
		ID:                  uuid.NewString(),
		StudentID:           studentID,
		SubmissionID:        sub.ID,
		ContestID:           intOr(sub.ContestID, 0),
		CreationTimeSeconds: sub.CreationTimeSeconds,
		RelativeTimeSeconds: sub.RelativeTimeSeconds,
		Problem:             normalizeProblem(sub.Problem),
		Author:              normalizeAuthor(sub.Author),
		ProgrammingLanguage: strOr(sub.ProgrammingLanguage, ""),
		Verdict:             strOr(sub.Verdict, ""),
		Testset:             strOr(sub.Testset, model.DefaultTestset),
		PassedTestCount:     intOr(sub.PassedTestCount, 0),
		TimeConsumedMillis:  intOr(sub.TimeConsumedMillis, 0),
		MemoryConsumedBytes: int64Or(sub.MemoryConsumedBytes, 0),
		SubmissionDate:      time.Unix(sub.CreationTimeSeconds, 0).UTC(),
	}
	return record
}

func normalizeProblem(p *codeforces.Problem) model.Problem {
	if p == nil {
		p = &codeforces.Problem{}
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return model.Problem{
		ContestID: intOr(p.ContestID, 0),
		Index:     strOr(p.Index, model.DefaultProblemIndex),
		Name:      strOr(p.Name, model.DefaultProblemName),
		Type:      strOr(p.Type, model.DefaultProblemType),
		Points:    floatOr(p.Points, 0),
		Rating:    intOr(p.Rating, 0),
		Tags:      tags,
	}
}

func normalizeAuthor(a *codeforces.Author) model.Author {
	if a == nil {
		a = &codeforces.Author{}
	}
	members := make([]model.Member, 0, len(a.Members))
	for _, m := range a.Members {
		members = append(members, model.Member{Handle: strOr(m.Handle, model.DefaultMemberHandle)})
	}
	return model.Author{
		ContestID:        intOr(a.ContestID, 0),
		Members:          members,
		ParticipantType:  strOr(a.ParticipantType, model.DefaultParticipantType),
		Ghost:            boolOr(a.Ghost, false),
		Room:             intOr(a.Room, 0),
		StartTimeSeconds: int64Or(a.StartTimeSeconds, 0),
	}
}

func strOr(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func int64Or(v *int64, fallback int64) int64 {
	if v == nil {
		return fallback
	}
	return *v
}

func floatOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
