package repository

import (
	"cf_tracker/internal/common"
	"cf_tracker/internal/domain/model"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

type SubmissionRecordRepository interface {
	// Upsert inserts or overwrites the row keyed by (student_id, submission_id).
	Upsert(ctx context.Context, record *model.SubmissionRecord) error
	// ListSolvedByStudentSince returns accepted submissions in the period,
	// newest first.
	ListSolvedByStudentSince(ctx context.Context, studentID string, since time.Time) ([]model.SubmissionRecord, error)
	DeleteByStudent(ctx context.Context, studentID string) error
}

type pgSubmissionRecordRepository struct {
	db *sql.DB
}

func NewPgSubmissionRecordRepository(db *sql.DB) SubmissionRecordRepository {
	return &pgSubmissionRecordRepository{db: db}
}

func (r *pgSubmissionRecordRepository) Upsert(ctx context.Context, record *model.SubmissionRecord) error {
	problemJSON, err := json.Marshal(record.Problem)
	if err != nil {
		return fmt.Errorf("pgSubmissionRecordRepository.Upsert: marshal problem: %w", err)
	}
	authorJSON, err := json.Marshal(record.Author)
	if err != nil {
		return fmt.Errorf("pgSubmissionRecordRepository.Upsert: marshal author: %w", err)
	}

	query := `INSERT INTO submission_records
	            (id, student_id, submission_id, contest_id, creation_time_seconds,
	             relative_time_seconds, problem, author, programming_language, verdict,
	             testset, passed_test_count, time_consumed_millis, memory_consumed_bytes,
	             submission_date)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	          ON CONFLICT (student_id, submission_id) DO UPDATE SET
	            contest_id = EXCLUDED.contest_id,
	            creation_time_seconds = EXCLUDED.creation_time_seconds,
	            relative_time_seconds = EXCLUDED.relative_time_seconds,
	            problem = EXCLUDED.problem,
	            author = EXCLUDED.author,
	            programming_language = EXCLUDED.programming_language,
	            verdict = EXCLUDED.verdict,
	            testset = EXCLUDED.testset,
	            passed_test_count = EXCLUDED.passed_test_count,
	            time_consumed_millis = EXCLUDED.time_consumed_millis,
	            memory_consumed_bytes = EXCLUDED.memory_consumed_bytes,
	            submission_date = EXCLUDED.submission_date,
	            updated_at = NOW()`
	_, err = r.db.ExecContext(ctx, query,
		record.ID, record.StudentID, record.SubmissionID, record.ContestID,
		record.CreationTimeSeconds, record.RelativeTimeSeconds, problemJSON, authorJSON,
		record.ProgrammingLanguage, record.Verdict, record.Testset, record.PassedTestCount,
		record.TimeConsumedMillis, record.MemoryConsumedBytes, record.SubmissionDate,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("student %s no longer exists: %w", record.StudentID, common.ErrNotFound)
		}
		return fmt.Errorf("pgSubmissionRecordRepository.Upsert: %w", err)
	}
	return nil
}

func (r *pgSubmissionRecordRepository) ListSolvedByStudentSince(ctx context.Context, studentID string, since time.Time) ([]model.SubmissionRecord, error) {
	query := `SELECT id, student_id, submission_id, contest_id, creation_time_seconds,
	                 relative_time_seconds, problem, author, programming_language, verdict,
	                 testset, passed_test_count, time_consumed_millis, memory_consumed_bytes,
	                 submission_date, created_at, updated_at
	          FROM submission_records
	          WHERE student_id = $1 AND submission_date >= $2 AND verdict = $3
	          ORDER BY submission_date DESC`
	rows, err := r.db.QueryContext(ctx, query, studentID, since, model.VerdictOK)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRecordRepository.ListSolvedByStudentSince: %w", err)
	}
	defer rows.Close()

	records := []model.SubmissionRecord{}
	for rows.Next() {
		var rec model.SubmissionRecord
		var problemJSON, authorJSON []byte
		if err := rows.Scan(
			&rec.ID, &rec.StudentID, &rec.SubmissionID, &rec.ContestID,
			&rec.CreationTimeSeconds, &rec.RelativeTimeSeconds, &problemJSON, &authorJSON,
			&rec.ProgrammingLanguage, &rec.Verdict, &rec.Testset, &rec.PassedTestCount,
			&rec.TimeConsumedMillis, &rec.MemoryConsumedBytes, &rec.SubmissionDate,
			&rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgSubmissionRecordRepository.ListSolvedByStudentSince: %w", err)
		}
		if err := json.Unmarshal(problemJSON, &rec.Problem); err != nil {
			return nil, fmt.Errorf("pgSubmissionRecordRepository.ListSolvedByStudentSince: unmarshal problem: %w", err)
		}
		if err := json.Unmarshal(authorJSON, &rec.Author); err != nil {
			return nil, fmt.Errorf("pgSubmissionRecordRepository.ListSolvedByStudentSince: unmarshal author: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRecordRepository.ListSolvedByStudentSince: %w", err)
	}
	return records, nil
}

func (r *pgSubmissionRecordRepository) DeleteByStudent(ctx context.Context, studentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM submission_records WHERE student_id = $1`, studentID); err != nil {
		return fmt.Errorf("pgSubmissionRecordRepository.DeleteByStudent: %w", err)
	}
	return nil
}
