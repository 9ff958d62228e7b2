package repository

import (
	"cf_tracker/internal/common"
	"cf_tracker/internal/domain/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

type ContestResultRepository interface {
	// Upsert inserts or overwrites the row keyed by (student_id, contest_id).
	Upsert(ctx context.Context, result *model.ContestResult) error
	ListByStudentSince(ctx context.Context, studentID string, since time.Time) ([]model.ContestResult, error)
	DeleteByStudent(ctx context.Context, studentID string) error
}

type pgContestResultRepository struct {
	db *sql.DB
}

func NewPgContestResultRepository(db *sql.DB) ContestResultRepository {
	return &pgContestResultRepository{db: db}
}

func (r *pgContestResultRepository) Upsert(ctx context.Context, result *model.ContestResult) error {
	query := `INSERT INTO contest_results
	            (id, student_id, contest_id, contest_name, handle, rank, old_rating,
	             new_rating, rating_change, rating_update_time_seconds, contest_date)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          ON CONFLICT (student_id, contest_id) DO UPDATE SET
	            contest_name = EXCLUDED.contest_name,
	            handle = EXCLUDED.handle,
	            rank = EXCLUDED.rank,
	            old_rating = EXCLUDED.old_rating,
	            new_rating = EXCLUDED.new_rating,
	            rating_change = EXCLUDED.rating_change,
	            rating_update_time_seconds = EXCLUDED.rating_update_time_seconds,
	            contest_date = EXCLUDED.contest_date,
	            updated_at = NOW()`
	_, err := r.db.ExecContext(ctx, query,
		result.ID, result.StudentID, result.ContestID, result.ContestName, result.Handle,
		result.Rank, result.OldRating, result.NewRating, result.RatingChange,
		result.RatingUpdateTimeSeconds, result.ContestDate,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // FK violation: student was deleted mid-sync
			return fmt.Errorf("student %s no longer exists: %w", result.StudentID, common.ErrNotFound)
		}
		return fmt.Errorf("pgContestResultRepository.Upsert: %w", err)
	}
	return nil
}

func (r *pgContestResultRepository) ListByStudentSince(ctx context.Context, studentID string, since time.Time) ([]model.ContestResult, error) {
	query := `SELECT id, student_id, contest_id, contest_name, handle, rank, old_rating,
	                 new_rating, rating_change, rating_update_time_seconds, contest_date,
	                 created_at, updated_at
	          FROM contest_results
	          WHERE student_id = $1 AND contest_date >= $2
	          ORDER BY contest_date DESC`
	rows, err := r.db.QueryContext(ctx, query, studentID, since)
	if err != nil {
		return nil, fmt.Errorf("pgContestResultRepository.ListByStudentSince: %w", err)
	}
	defer rows.Close()

	results := []model.ContestResult{}
	for rows.Next() {
		var c model.ContestResult
		if err := rows.Scan(
			&c.ID, &c.StudentID, &c.ContestID, &c.ContestName, &c.Handle, &c.Rank,
			&c.OldRating, &c.NewRating, &c.RatingChange, &c.RatingUpdateTimeSeconds,
			&c.ContestDate, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgContestResultRepository.ListByStudentSince: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgContestResultRepository.ListByStudentSince: %w", err)
	}
	return results, nil
}

func (r *pgContestResultRepository) DeleteByStudent(ctx context.Context, studentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM contest_results WHERE student_id = $1`, studentID); err != nil {
		return fmt.Errorf("pgContestResultRepository.DeleteByStudent: %w", err)
	}
	return nil
}
