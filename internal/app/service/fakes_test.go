package service_test

import (
	"cf_tracker/internal/common"
	"cf_tracker/internal/domain/model"
	"cf_tracker/internal/platform/codeforces"
	"cf_tracker/internal/platform/email"
	"context"
	"errors"
	"sort"
	"time"
)

// In-memory fakes over the repository and platform interfaces, mirroring the
// compound upsert keys the postgres implementations enforce.

type fakeStudentRepo struct {
	students      map[string]*model.Student
	order         []string
	recordFailFor map[string]bool
	listErr       error
}

func newFakeStudentRepo(students ...*model.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{
		students:      map[string]*model.Student{},
		recordFailFor: map[string]bool{},
	}
	for _, s := range students {
		repo.students[s.ID] = s
		repo.order = append(repo.order, s.ID)
	}
	return repo
}

func (r *fakeStudentRepo) FindByID(_ context.Context, id string) (*model.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *fakeStudentRepo) ListAll(_ context.Context) ([]model.Student, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := []model.Student{}
	for _, id := range r.order {
		out = append(out, *r.students[id])
	}
	return out, nil
}

func (r *fakeStudentRepo) ListSyncStatus(_ context.Context) ([]model.SyncStatus, error) {
	out := []model.SyncStatus{}
	for _, id := range r.order {
		s := r.students[id]
		out = append(out, model.SyncStatus{ID: s.ID, Name: s.Name, Handle: s.Handle, LastUpdated: s.LastUpdated})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUpdated.After(out[j].LastUpdated) })
	return out, nil
}

func (r *fakeStudentRepo) ListInactive(_ context.Context, cutoff time.Time) ([]model.Student, error) {
	out := []model.Student{}
	for _, id := range r.order {
		if s := r.students[id]; s.InactiveSince(cutoff) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeStudentRepo) UpdateSyncState(_ context.Context, id string, currentRating, maxRating int, lastSubmissionDate *time.Time, lastUpdated time.Time) error {
	s, ok := r.students[id]
	if !ok {
		return common.ErrNotFound
	}
	s.CurrentRating = currentRating
	s.MaxRating = maxRating
	s.LastSubmissionDate = lastSubmissionDate
	s.LastUpdated = lastUpdated
	return nil
}

func (r *fakeStudentRepo) RecordNotification(_ context.Context, id string, sentAt time.Time) error {
	if r.recordFailFor[id] {
		return errors.New("record notification failed")
	}
	s, ok := r.students[id]
	if !ok {
		return common.ErrNotFound
	}
	s.EmailsSent++
	s.LastEmailDate = &sentAt
	return nil
}

type contestKey struct {
	studentID string
	contestID int
}

type fakeContestRepo struct {
	rows          map[contestKey]model.ContestResult
	failContestID int
}

func newFakeContestRepo() *fakeContestRepo {
	return &fakeContestRepo{rows: map[contestKey]model.ContestResult{}}
}

func (r *fakeContestRepo) Upsert(_ context.Context, result *model.ContestResult) error {
	if r.failContestID != 0 && result.ContestID == r.failContestID {
		return errors.New("contest write failed")
	}
	r.rows[contestKey{result.StudentID, result.ContestID}] = *result
	return nil
}

func (r *fakeContestRepo) ListByStudentSince(_ context.Context, studentID string, since time.Time) ([]model.ContestResult, error) {
	out := []model.ContestResult{}
	for k, v := range r.rows {
		if k.studentID == studentID && !v.ContestDate.Before(since) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContestDate.After(out[j].ContestDate) })
	return out, nil
}

func (r *fakeContestRepo) DeleteByStudent(_ context.Context, studentID string) error {
	for k := range r.rows {
		if k.studentID == studentID {
			delete(r.rows, k)
		}
	}
	return nil
}

type submissionKey struct {
	studentID    string
	submissionID int64
}

type fakeSubmissionRepo struct {
	rows              map[submissionKey]model.SubmissionRecord
	failSubmissionIDs map[int64]bool
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{
		rows:              map[submissionKey]model.SubmissionRecord{},
		failSubmissionIDs: map[int64]bool{},
	}
}

func (r *fakeSubmissionRepo) Upsert(_ context.Context, record *model.SubmissionRecord) error {
	if r.failSubmissionIDs[record.SubmissionID] {
		return errors.New("submission write failed")
	}
	r.rows[submissionKey{record.StudentID, record.SubmissionID}] = *record
	return nil
}

func (r *fakeSubmissionRepo) ListSolvedByStudentSince(_ context.Context, studentID string, since time.Time) ([]model.SubmissionRecord, error) {
	out := []model.SubmissionRecord{}
	for k, v := range r.rows {
		if k.studentID == studentID && v.Verdict == model.VerdictOK && !v.SubmissionDate.Before(since) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmissionDate.After(out[j].SubmissionDate) })
	return out, nil
}

func (r *fakeSubmissionRepo) DeleteByStudent(_ context.Context, studentID string) error {
	for k := range r.rows {
		if k.studentID == studentID {
			delete(r.rows, k)
		}
	}
	return nil
}

type fakeSettingsRepo struct {
	settings model.Settings
	getErr   error
	saved    []model.Settings
}

func (r *fakeSettingsRepo) Get(_ context.Context) (*model.Settings, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	clone := r.settings
	return &clone, nil
}

func (r *fakeSettingsRepo) Save(_ context.Context, settings *model.Settings) error {
	r.settings = *settings
	r.saved = append(r.saved, *settings)
	return nil
}

type fakeJudge struct {
	info        map[string]*codeforces.UserInfo
	infoErr     map[string]error
	ratings     map[string][]codeforces.RatingChange
	ratingsErr  map[string]error
	status      map[string][]codeforces.Submission
	statusErr   map[string]error
	statusCalls int
}

func newFakeJudge() *fakeJudge {
	return &fakeJudge{
		info:       map[string]*codeforces.UserInfo{},
		infoErr:    map[string]error{},
		ratings:    map[string][]codeforces.RatingChange{},
		ratingsErr: map[string]error{},
		status:     map[string][]codeforces.Submission{},
		statusErr:  map[string]error{},
	}
}

func (j *fakeJudge) UserInfo(_ context.Context, handle string) (*codeforces.UserInfo, error) {
	if err := j.infoErr[handle]; err != nil {
		return nil, err
	}
	if info, ok := j.info[handle]; ok {
		return info, nil
	}
	return nil, common.ErrUpstream
}

func (j *fakeJudge) UserRating(_ context.Context, handle string) ([]codeforces.RatingChange, error) {
	if err := j.ratingsErr[handle]; err != nil {
		return nil, err
	}
	return j.ratings[handle], nil
}

func (j *fakeJudge) UserStatus(_ context.Context, handle string, _, _ int) ([]codeforces.Submission, error) {
	j.statusCalls++
	if err := j.statusErr[handle]; err != nil {
		return nil, err
	}
	return j.status[handle], nil
}

type fakeMailer struct {
	sent    []email.Message
	failFor map[string]bool
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{failFor: map[string]bool{}}
}

func (m *fakeMailer) Send(msg email.Message) error {
	if m.failFor[msg.ToAddress] {
		return errors.New("smtp rejected")
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeLock struct {
	held     bool
	acquires int
	releases int
}

func (l *fakeLock) Acquire(_ context.Context, _ string) (bool, error) {
	l.acquires++
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *fakeLock) Release(_ context.Context, _ string) {
	l.held = false
	l.releases++
}

type fakePinger struct {
	err error
}

func (p *fakePinger) PingContext(_ context.Context) error {
	return p.err
}

func intPtr(v int) *int              { return &v }
func int64Ptr(v int64) *int64        { return &v }
func strPtr(v string) *string        { return &v }
func timePtr(t time.Time) *time.Time { return &t }
