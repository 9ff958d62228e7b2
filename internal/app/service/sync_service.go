package service

import (
	"cf_tracker/internal/common"
	"cf_tracker/internal/domain/model"
	"cf_tracker/internal/domain/repository"
	"cf_tracker/internal/platform/codeforces"
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

// FleetLocker guards "fleet sync in progress" so a scheduled run and an
// on-demand trigger cannot interleave on the same student rows.
type FleetLocker interface {
	Acquire(ctx context.Context, token string) (bool, error)
	Release(ctx context.Context, token string)
}

// StoragePinger is the liveness probe run before any sync writes; *sql.DB
// satisfies it.
type StoragePinger interface {
	PingContext(ctx context.Context) error
}

type SyncService struct {
	db             StoragePinger
	studentRepo    repository.StudentRepository
	contestRepo    repository.ContestResultRepository
	submissionRepo repository.SubmissionRecordRepository
	judge          codeforces.Client
	notifications  *NotificationService
	fleetLock      FleetLocker

	syncDelay time.Duration
	pageSize  int
}

func NewSyncService(
	db StoragePinger,
	studentRepo repository.StudentRepository,
	contestRepo repository.ContestResultRepository,
	submissionRepo repository.SubmissionRecordRepository,
	judge codeforces.Client,
	notifications *NotificationService,
	fleetLock FleetLocker,
	syncDelay time.Duration,
	pageSize int,
) *SyncService {
	return &SyncService{
		db:             db,
		studentRepo:    studentRepo,
		contestRepo:    contestRepo,
		submissionRepo: submissionRepo,
		judge:          judge,
		notifications:  notifications,
		fleetLock:      fleetLock,
		syncDelay:      syncDelay,
		pageSize:       pageSize,
	}
}

// SyncReport counts what one student's sync actually wrote. Per-row errors are
// absorbed, so the counts are the only visibility into partial success.
type SyncReport struct {
	ContestsSaved    int
	ContestErrors    int
	SubmissionsSaved int
	SubmissionErrors int
}

func (s *SyncService) SyncStudentByID(ctx context.Context, id string) (*SyncReport, error) {
	student, err := s.studentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.SyncStudent(ctx, student)
}

// SyncStudent runs the per-student pipeline: profile fetch (hard dependency),
// rating history and submission history (soft dependencies), then one commit of
// the derived student fields. Soft-step failures are logged and absorbed;
// whatever was upserted before a failure stays written.
func (s *SyncService) SyncStudent(ctx context.Context, student *model.Student) (*SyncReport, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return nil, common.Errorf("database not reachable: %v: %w", err, common.ErrStorageUnavailable)
	}

	log.Printf("INFO: Starting sync for %s...", student.Handle)

	info, err := s.judge.UserInfo(ctx, student.Handle)
	if err != nil {
		return nil, common.Errorf("fetching profile for %s: %w", student.Handle, err)
	}
	currentRating := 0
	if info.Rating != nil {
		currentRating = *info.Rating
	}
	maxRating := 0
	if info.MaxRating != nil {
		maxRating = *info.MaxRating
	}

	report := &SyncReport{}
	s.syncContests(ctx, student, report)
	lastSubmissionDate := s.syncSubmissions(ctx, student, report)

	if err := s.studentRepo.UpdateSyncState(ctx, student.ID, currentRating, maxRating, lastSubmissionDate, time.Now()); err != nil {
		return nil, common.Errorf("committing sync state for %s: %w", student.Handle, err)
	}

	student.CurrentRating = currentRating
	student.MaxRating = maxRating
	student.LastSubmissionDate = lastSubmissionDate

	log.Printf("INFO: Completed sync for %s (contests: %d saved/%d errors, submissions: %d saved/%d errors)",
		student.Handle, report.ContestsSaved, report.ContestErrors, report.SubmissionsSaved, report.SubmissionErrors)
	return report, nil
}

func (s *SyncService) syncContests(ctx context.Context, student *model.Student, report *SyncReport) {
	changes, err := s.judge.UserRating(ctx, student.Handle)
	if err != nil {
		log.Printf("ERROR: Contest history fetch failed for %s: %v", student.Handle, err)
		return
	}
	log.Printf("INFO: Found %d contests for %s", len(changes), student.Handle)

	for _, change := range changes {
		result := &model.ContestResult{
			ID:                      uuid.NewString(),
			StudentID:               student.ID,
			ContestID:               change.ContestID,
			ContestName:             change.ContestName,
			Handle:                  change.Handle,
			Rank:                    change.Rank,
			OldRating:               change.OldRating,
			NewRating:               change.NewRating,
			RatingChange:            change.NewRating - change.OldRating,
			RatingUpdateTimeSeconds: change.RatingUpdateTimeSeconds,
			ContestDate:             time.Unix(change.RatingUpdateTimeSeconds, 0).UTC(),
		}
		if err := s.contestRepo.Upsert(ctx, result); err != nil {
			report.ContestErrors++
			log.Printf("ERROR: Contest %d upsert failed for %s: %v", change.ContestID, student.Handle, err)
			continue
		}
		report.ContestsSaved++
	}
}

// syncSubmissions returns the new last-submission timestamp when the fetch
// succeeded, or the student's previous value on a soft failure. The maximum is
// taken over everything fetched, including rows whose upsert later failed: the
// activity signal comes from the judge, not from our write succeeding.
func (s *SyncService) syncSubmissions(ctx context.Context, student *model.Student, report *SyncReport) *time.Time {
	submissions, err := s.judge.UserStatus(ctx, student.Handle, 1, s.pageSize)
	if err != nil {
		log.Printf("ERROR: Submissions fetch failed for %s: %v", student.Handle, err)
		return student.LastSubmissionDate
	}
	log.Printf("INFO: Found %d submissions for %s", len(submissions), student.Handle)

	var lastSubmissionDate *time.Time
	for _, sub := range submissions {
		submissionDate := time.Unix(sub.CreationTimeSeconds, 0).UTC()
		if lastSubmissionDate == nil || submissionDate.After(*lastSubmissionDate) {
			d := submissionDate
			lastSubmissionDate = &d
		}

		record := normalizeSubmission(student.ID, sub)
		if err := s.submissionRepo.Upsert(ctx, record); err != nil {
			report.SubmissionErrors++
			log.Printf("ERROR: Submission %d upsert failed for %s: %v", sub.ID, student.Handle, err)
			continue
		}
		report.SubmissionsSaved++
	}
	return lastSubmissionDate
}

// SyncAll iterates the whole fleet sequentially with a fixed inter-student
// delay, isolating per-student failures. It returns once the iteration
// completed; "returned nil" does not mean every student succeeded.
func (s *SyncService) SyncAll(ctx context.Context) error {
	token := uuid.NewString()
	acquired, err := s.fleetLock.Acquire(ctx, token)
	if err != nil {
		return common.Errorf("acquiring fleet sync lock: %w", err)
	}
	if !acquired {
		return common.ErrSyncInProgress
	}
	defer s.fleetLock.Release(ctx, token)

	students, err := s.studentRepo.ListAll(ctx)
	if err != nil {
		return common.Errorf("listing students for fleet sync: %w", err)
	}
	log.Printf("INFO: Starting fleet sync for %d students...", len(students))

	for i := range students {
		student := &students[i]
		log.Printf("INFO: Processing student %d/%d: %s", i+1, len(students), student.Handle)
		if _, err := s.SyncStudent(ctx, student); err != nil {
			// Storage being down dooms every remaining student too; abort the
			// loop and let the invocation boundary log it.
			if errors.Is(err, common.ErrStorageUnavailable) {
				return common.Errorf("fleet sync aborted at %s: %w", student.Handle, err)
			}
			log.Printf("ERROR: Failed to sync %s: %v", student.Handle, err)
		}

		// Inter-student throttle against the judge API's rate limits.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.syncDelay):
		}
	}

	if err := s.notifications.CheckInactiveStudents(ctx); err != nil {
		log.Printf("ERROR: Inactivity check failed: %v", err)
	}

	log.Println("INFO: Fleet sync completed")
	return nil
}

func (s *SyncService) ListSyncStatus(ctx context.Context) ([]model.SyncStatus, error) {
	return s.studentRepo.ListSyncStatus(ctx)
}
