package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/daprotis-api/internal/models"
)

// EnrollmentRepository provides database access for class enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new instance of EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindActive returns the oldest active enrollment of userID in scheduleID.
func (r *EnrollmentRepository) FindActive(ctx context.Context, userID, scheduleID string) (*models.Enrollment, error) {
	const query = `SELECT id, user_id, schedule_id, status, enrolled_at FROM enrollments WHERE user_id = $1 AND schedule_id = $2 AND status = $3 ORDER BY enrolled_at LIMIT 1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, userID, scheduleID, models.EnrollmentStatusActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find active enrollment: %w", err)
	}
	return &enrollment, nil
}

// Create inserts an active enrollment stamped with the server clock.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollments (id, user_id, schedule_id, status, enrolled_at) VALUES (:id, :user_id, :schedule_id, :status, :enrolled_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Delete hard-deletes exactly the enrollment with the given id.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return expectAffected(res, "delete enrollment")
}

// ListActiveByUser returns the member's active enrollments with slot details.
func (r *EnrollmentRepository) ListActiveByUser(ctx context.Context, userID string) ([]models.EnrollmentDetail, error) {
	query := `SELECT e.id, e.user_id, e.schedule_id, e.status, e.enrolled_at, s.day_of_week, s.time_slot
FROM enrollments e
JOIN training_schedules s ON s.id = e.schedule_id
WHERE e.user_id = $1 AND e.status = $2
ORDER BY ` + buildWeekdayOrder("s.day_of_week") + `, s.time_slot`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, userID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list user enrollments: %w", err)
	}
	return enrollments, nil
}

// CountActiveInWindow counts the member's active enrollments created in [start, end).
func (r *EnrollmentRepository) CountActiveInWindow(ctx context.Context, userID string, start, end time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE user_id = $1 AND status = $2 AND enrolled_at >= $3 AND enrolled_at < $4`
	var total int
	if err := r.db.GetContext(ctx, &total, query, userID, models.EnrollmentStatusActive, start, end); err != nil {
		return 0, fmt.Errorf("count weekly enrollments: %w", err)
	}
	return total, nil
}

// ListRoster returns active enrollments joined with student and slot,
// oldest first, optionally limited to one slot.
func (r *EnrollmentRepository) ListRoster(ctx context.Context, filter models.RosterFilter) ([]models.RosterEntry, error) {
	query := `SELECT e.id AS enrollment_id, e.user_id, p.first_name, p.last_name, p.phone, e.schedule_id, s.day_of_week, s.time_slot, e.enrolled_at
FROM enrollments e
JOIN profiles p ON p.id = e.user_id
JOIN training_schedules s ON s.id = e.schedule_id
WHERE e.status = $1`
	args := []interface{}{models.EnrollmentStatusActive}
	if filter.ScheduleID != "" {
		query += ` AND e.schedule_id = $2`
		args = append(args, filter.ScheduleID)
	}
	query += ` ORDER BY e.enrolled_at ASC`

	var roster []models.RosterEntry
	if err := r.db.SelectContext(ctx, &roster, query, args...); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return roster, nil
}
