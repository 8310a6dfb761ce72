package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/serendigo/serendigo-backend-go/internal/models"
)

// AttemptRepository handles database operations for the detour attempt log
type AttemptRepository struct {
	db *sql.DB
}

// NewAttemptRepository creates a new attempt repository
func NewAttemptRepository(db *sql.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Insert appends one attempt and sets its ID.
func (r *AttemptRepository) Insert(ctx context.Context, rec *models.AttemptRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	res, err := r.db.ExecContext(ctx, `INSERT INTO detour_attempts
		(session_id, user_id, mode, duration_min, detour_type,
		 attempts, manual, widened, radius_m, result_count,
		 fallback, error, seed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.UserID, rec.Mode, rec.DurationMin, rec.DetourType,
		rec.Attempts, rec.Manual, rec.Widened, rec.RadiusM, rec.ResultCount,
		rec.Fallback, rec.Error, rec.Seed, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert attempt: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read attempt id: %w", err)
	}
	rec.ID = id
	return nil
}

// List retrieves attempts with filtering and pagination, oldest first
func (r *AttemptRepository) List(ctx context.Context, filter models.AttemptFilter) ([]models.AttemptRecord, int64, error) {
	var conditions []string
	var args []interface{}

	if filter.SessionID != "" {
		conditions = append(conditions, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Mode != "" {
		conditions = append(conditions, "mode = ?")
		args = append(args, filter.Mode)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM detour_attempts"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attempts: %w", err)
	}

	// Add pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	if filter.PageSize > 1000 {
		filter.PageSize = 1000
	}

	query := `SELECT id, session_id, user_id, mode, duration_min, detour_type,
		attempts, manual, widened, radius_m, result_count,
		fallback, error, seed, created_at
		FROM detour_attempts` + where + " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	records := []models.AttemptRecord{}
	for rows.Next() {
		var rec models.AttemptRecord
		err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.UserID, &rec.Mode, &rec.DurationMin, &rec.DetourType,
			&rec.Attempts, &rec.Manual, &rec.Widened, &rec.RadiusM, &rec.ResultCount,
			&rec.Fallback, &rec.Error, &rec.Seed, &rec.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attempt: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attempts: %w", err)
	}

	return records, total, nil
}

// DeleteBefore prunes attempts older than cutoff and returns how many rows
// were removed.
func (r *AttemptRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM detour_attempts WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune attempts: %w", err)
	}
	return res.RowsAffected()
}
