package repository

import (
	"cf_tracker/internal/common"
	"cf_tracker/internal/domain/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type StudentRepository interface {
	FindByID(ctx context.Context, id string) (*model.Student, error)
	ListAll(ctx context.Context) ([]model.Student, error)
	ListSyncStatus(ctx context.Context) ([]model.SyncStatus, error)
	// ListInactive returns students with email notifications enabled whose last
	// submission is absent or older than the cutoff.
	ListInactive(ctx context.Context, cutoff time.Time) ([]model.Student, error)
	// UpdateSyncState commits the fields the sync pipeline owns in one write.
	UpdateSyncState(ctx context.Context, id string, currentRating, maxRating int, lastSubmissionDate *time.Time, lastUpdated time.Time) error
	// RecordNotification increments the sent counter and stamps the send time.
	RecordNotification(ctx context.Context, id string, sentAt time.Time) error
}

type pgStudentRepository struct {
	db *sql.DB
}

func NewPgStudentRepository(db *sql.DB) StudentRepository {
	return &pgStudentRepository{db: db}
}

const studentColumns = `id, name, email, phone, handle, current_rating, max_rating,
	last_updated, email_enabled, emails_sent, last_email_date, last_submission_date,
	created_at, updated_at`

func (r *pgStudentRepository) FindByID(ctx context.Context, id string) (*model.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	student, err := scanStudent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgStudentRepository.FindByID: %w", err)
	}
	return student, nil
}

func (r *pgStudentRepository) ListAll(ctx context.Context) ([]model.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgStudentRepository.ListAll: %w", err)
	}
	defer rows.Close()

	return collectStudents(rows, "pgStudentRepository.ListAll")
}

func (r *pgStudentRepository) ListSyncStatus(ctx context.Context) ([]model.SyncStatus, error) {
	query := `SELECT id, name, handle, last_updated FROM students ORDER BY last_updated DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgStudentRepository.ListSyncStatus: %w", err)
	}
	defer rows.Close()

	statuses := []model.SyncStatus{}
	for rows.Next() {
		var s model.SyncStatus
		if err := rows.Scan(&s.ID, &s.Name, &s.Handle, &s.LastUpdated); err != nil {
			return nil, fmt.Errorf("pgStudentRepository.ListSyncStatus: %w", err)
		}
		statuses = append(statuses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgStudentRepository.ListSyncStatus: %w", err)
	}
	return statuses, nil
}

func (r *pgStudentRepository) ListInactive(ctx context.Context, cutoff time.Time) ([]model.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students
	          WHERE email_enabled = TRUE
	            AND (last_submission_date IS NULL OR last_submission_date < $1)
	          ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("pgStudentRepository.ListInactive: %w", err)
	}
	defer rows.Close()

	return collectStudents(rows, "pgStudentRepository.ListInactive")
}

func (r *pgStudentRepository) UpdateSyncState(ctx context.Context, id string, currentRating, maxRating int, lastSubmissionDate *time.Time, lastUpdated time.Time) error {
	query := `UPDATE students
	          SET current_rating = $2, max_rating = $3, last_submission_date = $4,
	              last_updated = $5, updated_at = NOW()
	          WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, currentRating, maxRating, nullTime(lastSubmissionDate), lastUpdated)
	if err != nil {
		return fmt.Errorf("pgStudentRepository.UpdateSyncState: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgStudentRepository) RecordNotification(ctx context.Context, id string, sentAt time.Time) error {
	query := `UPDATE students
	          SET emails_sent = emails_sent + 1, last_email_date = $2, updated_at = NOW()
	          WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, sentAt)
	if err != nil {
		return fmt.Errorf("pgStudentRepository.RecordNotification: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStudent(row rowScanner) (*model.Student, error) {
	student := &model.Student{}
	var lastEmail, lastSubmission sql.NullTime
	err := row.Scan(
		&student.ID, &student.Name, &student.Email, &student.Phone, &student.Handle,
		&student.CurrentRating, &student.MaxRating, &student.LastUpdated,
		&student.EmailEnabled, &student.EmailsSent, &lastEmail, &lastSubmission,
		&student.CreatedAt, &student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastEmail.Valid {
		student.LastEmailDate = &lastEmail.Time
	}
	if lastSubmission.Valid {
		student.LastSubmissionDate = &lastSubmission.Time
	}
	return student, nil
}

func collectStudents(rows *sql.Rows, op string) ([]model.Student, error) {
	students := []model.Student{}
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		students = append(students, *student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return students, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
