package service_test

import (
	"cf_tracker/internal/app/service"
	"cf_tracker/internal/common"
	"cf_tracker/internal/domain/model"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotificationFixture(settings model.Settings, students ...*model.Student) (*service.NotificationService, *fakeStudentRepo, *fakeMailer) {
	studentRepo := newFakeStudentRepo(students...)
	settingsRepo := &fakeSettingsRepo{settings: settings}
	mailer := newFakeMailer()
	return service.NewNotificationService(studentRepo, settingsRepo, mailer), studentRepo, mailer
}

func defaultSettings() model.Settings {
	return model.Settings{CronSchedule: "0 2 * * *", EmailEnabled: true, InactivityDays: 7}
}

func TestCheckInactiveStudentsSelection(t *testing.T) {
	tenDaysAgo := testStudent("s1", "stale")
	tenDaysAgo.LastSubmissionDate = timePtr(time.Now().AddDate(0, 0, -10))
	threeDaysAgo := testStudent("s2", "active")
	threeDaysAgo.LastSubmissionDate = timePtr(time.Now().AddDate(0, 0, -3))
	never := testStudent("s3", "silent")

	svc, _, mailer := newNotificationFixture(defaultSettings(), tenDaysAgo, threeDaysAgo, never)
	require.NoError(t, svc.CheckInactiveStudents(context.Background()))

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "stale@example.com", mailer.sent[0].ToAddress)
	assert.Equal(t, "silent@example.com", mailer.sent[1].ToAddress)
}

func TestCheckInactiveStudentsRespectsPerStudentOptOut(t *testing.T) {
	optedOut := testStudent("s1", "optout")
	optedOut.EmailEnabled = false

	svc, _, mailer := newNotificationFixture(defaultSettings(), optedOut)
	require.NoError(t, svc.CheckInactiveStudents(context.Background()))
	assert.Empty(t, mailer.sent)
}

func TestCheckInactiveStudentsGlobalToggleOff(t *testing.T) {
	stale := testStudent("s1", "stale")
	settings := defaultSettings()
	settings.EmailEnabled = false

	svc, _, mailer := newNotificationFixture(settings, stale)
	require.NoError(t, svc.CheckInactiveStudents(context.Background()))
	assert.Empty(t, mailer.sent)
}

func TestNotificationSideEffects(t *testing.T) {
	stale := testStudent("s1", "stale")
	stale.EmailsSent = 3

	svc, studentRepo, _ := newNotificationFixture(defaultSettings(), stale)
	before := time.Now()
	require.NoError(t, svc.CheckInactiveStudents(context.Background()))

	updated := studentRepo.students["s1"]
	assert.Equal(t, 4, updated.EmailsSent)
	require.NotNil(t, updated.LastEmailDate)
	assert.WithinDuration(t, before, *updated.LastEmailDate, 5*time.Second)
}

func TestFailedSendLeavesCounterUnchanged(t *testing.T) {
	stale := testStudent("s1", "stale")
	stale.EmailsSent = 3

	svc, studentRepo, mailer := newNotificationFixture(defaultSettings(), stale)
	mailer.failFor["stale@example.com"] = true
	require.NoError(t, svc.CheckInactiveStudents(context.Background()))

	updated := studentRepo.students["s1"]
	assert.Equal(t, 3, updated.EmailsSent)
	assert.Nil(t, updated.LastEmailDate)
}

func TestScanContinuesAfterNotificationFailure(t *testing.T) {
	first := testStudent("s1", "first")
	second := testStudent("s2", "second")

	svc, studentRepo, mailer := newNotificationFixture(defaultSettings(), first, second)
	mailer.failFor["first@example.com"] = true
	require.NoError(t, svc.CheckInactiveStudents(context.Background()))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "second@example.com", mailer.sent[0].ToAddress)
	assert.Equal(t, 1, studentRepo.students["s2"].EmailsSent)
}

func TestNotifyStudentMessageContent(t *testing.T) {
	stale := testStudent("s1", "stale")
	stale.CurrentRating = 1500
	stale.MaxRating = 1800

	svc, _, mailer := newNotificationFixture(defaultSettings(), stale)
	require.NoError(t, svc.NotifyStudent(context.Background(), stale, 7))

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "stale@example.com", msg.ToAddress)
	// Suggested practice band is currentRating-100 to currentRating+200.
	assert.Contains(t, msg.TextBody, "1400 - 1700")
	assert.Contains(t, msg.HTMLBody, "1400 - 1700")
	assert.Contains(t, msg.TextBody, "stale")
	assert.Contains(t, msg.TextBody, "Current Rating: 1500")
	assert.Contains(t, msg.TextBody, "Max Rating: 1800")
}

func TestNotifyStudentSendFailureWraps(t *testing.T) {
	stale := testStudent("s1", "stale")
	svc, _, mailer := newNotificationFixture(defaultSettings(), stale)
	mailer.failFor["stale@example.com"] = true

	err := svc.NotifyStudent(context.Background(), stale, 7)
	assert.ErrorIs(t, err, common.ErrNotificationFailed)
}

func TestCheckInactiveStudentsSettingsLoadFailure(t *testing.T) {
	studentRepo := newFakeStudentRepo(testStudent("s1", "stale"))
	settingsRepo := &fakeSettingsRepo{getErr: errors.New("db down")}
	svc := service.NewNotificationService(studentRepo, settingsRepo, newFakeMailer())

	assert.Error(t, svc.CheckInactiveStudents(context.Background()))
}
