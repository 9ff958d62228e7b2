package service

import (
	"cf_tracker/internal/common"
	"cf_tracker/internal/domain/model"
	"cf_tracker/internal/domain/repository"
	"cf_tracker/internal/platform/email"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

type NotificationService struct {
	studentRepo  repository.StudentRepository
	settingsRepo repository.SettingsRepository
	mailer       email.Service
}

func NewNotificationService(
	studentRepo repository.StudentRepository,
	settingsRepo repository.SettingsRepository,
	mailer email.Service,
) *NotificationService {
	return &NotificationService{
		studentRepo:  studentRepo,
		settingsRepo: settingsRepo,
		mailer:       mailer,
	}
}

// CheckInactiveStudents selects every student whose last submission is absent
// or older than the configured threshold and sends each one an inactivity
// email. A failure for one student never aborts the scan of the rest.
func (s *NotificationService) CheckInactiveStudents(ctx context.Context) error {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return common.Errorf("loading settings for inactivity check: %w", err)
	}
	if !settings.EmailEnabled {
		log.Println("INFO: Inactivity emails are disabled, skipping check")
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -settings.InactivityDays)
	inactive, err := s.studentRepo.ListInactive(ctx, cutoff)
	if err != nil {
		return common.Errorf("listing inactive students: %w", err)
	}
	log.Printf("INFO: Found %d inactive students", len(inactive))

	for i := range inactive {
		student := &inactive[i]
		if err := s.NotifyStudent(ctx, student, settings.InactivityDays); err != nil {
			log.Printf("ERROR: Email failed for %s: %v", student.Email, err)
			continue
		}
		log.Printf("INFO: Sent inactivity email to %s", student.Email)
	}
	return nil
}

// NotifyStudent sends one inactivity email and, only after a successful send,
// records it on the student row. Delivery is at-least-once: a crash between
// send and record loses the counter update, not the email. Each attempt is
// logged with its own id so sends can be audited independently of the counter.
func (s *NotificationService) NotifyStudent(ctx context.Context, student *model.Student, inactivityDays int) error {
	attemptID := uuid.NewString()
	log.Printf("INFO: Notification attempt %s for student %s (%s)", attemptID, student.ID, student.Email)

	msg := buildInactivityMessage(student, inactivityDays)
	if err := s.mailer.Send(msg); err != nil {
		return common.Errorf("attempt %s: %v: %w", attemptID, err, common.ErrNotificationFailed)
	}

	if err := s.studentRepo.RecordNotification(ctx, student.ID, time.Now()); err != nil {
		// The email is already out; only the counter update was lost.
		return common.Errorf("attempt %s: recording sent notification: %w", attemptID, err)
	}
	return nil
}

func buildInactivityMessage(student *model.Student, inactivityDays int) email.Message {
	lowBand := student.CurrentRating - 100
	highBand := student.CurrentRating + 200

	text := fmt.Sprintf(
		"Hi %s!\n\n"+
			"We noticed you haven't made any submissions on Codeforces in the last %d days. "+
			"Consistent practice is key to improving your programming skills!\n\n"+
			"Your current stats:\n"+
			"- Current Rating: %d\n"+
			"- Max Rating: %d\n"+
			"- Codeforces Handle: %s\n\n"+
			"Why not solve a problem today? Try problems around your rating level (%d - %d), "+
			"focus on topics you want to improve, and participate in upcoming contests.\n\n"+
			"Keep pushing your limits!\n",
		student.Name, inactivityDays, student.CurrentRating, student.MaxRating,
		student.Handle, lowBand, highBand,
	)

	html := fmt.Sprintf(
		`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2563eb;">Hi %s!</h2>
  <p>We noticed you haven't made any submissions on Codeforces in the last %d days.
  Consistent practice is key to improving your programming skills!</p>
  <p><strong>Your current stats:</strong></p>
  <ul>
    <li>Current Rating: %d</li>
    <li>Max Rating: %d</li>
    <li>Codeforces Handle: %s</li>
  </ul>
  <p>Why not solve a problem today? Here are some suggestions:</p>
  <ul>
    <li>Try problems around your rating level (%d - %d)</li>
    <li>Focus on topics you want to improve</li>
    <li>Participate in upcoming contests</li>
  </ul>
  <div style="text-align: center; margin: 30px 0;">
    <a href="https://codeforces.com/problemset"
       style="background-color: #2563eb; color: white; padding: 12px 24px;
              text-decoration: none; border-radius: 5px;">Solve Problems Now</a>
  </div>
  <p>Keep pushing your limits!</p>
</div>`,
		student.Name, inactivityDays, student.CurrentRating, student.MaxRating,
		student.Handle, lowBand, highBand,
	)

	return email.Message{
		ToName:    student.Name,
		ToAddress: student.Email,
		Subject:   "Time to get back to problem solving!",
		TextBody:  text,
		HTMLBody:  html,
	}
}
