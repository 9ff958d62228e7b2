package service

import (
	"cf_tracker/internal/domain/model"
	"cf_tracker/internal/domain/repository"
	"context"
	"math"
	"time"
)

type StatsService struct {
	studentRepo    repository.StudentRepository
	contestRepo    repository.ContestResultRepository
	submissionRepo repository.SubmissionRecordRepository
}

func NewStatsService(
	studentRepo repository.StudentRepository,
	contestRepo repository.ContestResultRepository,
	submissionRepo repository.SubmissionRecordRepository,
) *StatsService {
	return &StatsService{
		studentRepo:    studentRepo,
		contestRepo:    contestRepo,
		submissionRepo: submissionRepo,
	}
}

// StudentStats summarizes a student's accepted submissions over a period.
type StudentStats struct {
	TotalProblems     int            `json:"totalProblems"`
	AvgRating         int            `json:"avgRating"`
	MostDifficult     *model.Problem `json:"mostDifficult"`
	AvgProblemsPerDay float64        `json:"avgProblemsPerDay"`
	RatingBuckets     map[int]int    `json:"ratingBuckets"`
	HeatmapData       map[string]int `json:"heatmapData"`
}

type StudentProfile struct {
	Student     *model.Student           `json:"student"`
	Contests    []model.ContestResult    `json:"contests"`
	Submissions []model.SubmissionRecord `json:"submissions"`
}

func (s *StatsService) StudentStats(ctx context.Context, studentID string, periodDays int) (*StudentStats, error) {
	if _, err := s.studentRepo.FindByID(ctx, studentID); err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -periodDays)
	solved, err := s.submissionRepo.ListSolvedByStudentSince(ctx, studentID, since)
	if err != nil {
		return nil, err
	}
	return summarize(solved, periodDays), nil
}

func (s *StatsService) StudentProfile(ctx context.Context, studentID string, periodDays int) (*StudentProfile, error) {
	student, err := s.studentRepo.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -periodDays)
	contests, err := s.contestRepo.ListByStudentSince(ctx, studentID, since)
	if err != nil {
		return nil, err
	}
	solved, err := s.submissionRepo.ListSolvedByStudentSince(ctx, studentID, since)
	if err != nil {
		return nil, err
	}

	return &StudentProfile{Student: student, Contests: contests, Submissions: solved}, nil
}

func summarize(solved []model.SubmissionRecord, periodDays int) *StudentStats {
	stats := &StudentStats{
		TotalProblems: len(solved),
		RatingBuckets: map[int]int{},
		HeatmapData:   map[string]int{},
	}

	ratingSum := 0
	for i := range solved {
		sub := &solved[i]
		rating := sub.Problem.Rating
		ratingSum += rating

		if stats.MostDifficult == nil || rating > stats.MostDifficult.Rating {
			p := sub.Problem
			stats.MostDifficult = &p
		}

		bucket := (rating / 100) * 100
		stats.RatingBuckets[bucket]++

		day := sub.SubmissionDate.UTC().Format("2006-01-02")
		stats.HeatmapData[day]++
	}

	if len(solved) > 0 {
		stats.AvgRating = int(math.Round(float64(ratingSum) / float64(len(solved))))
	}
	if periodDays > 0 {
		stats.AvgProblemsPerDay = math.Round(float64(len(solved))/float64(periodDays)*100) / 100
	}
	return stats
}
