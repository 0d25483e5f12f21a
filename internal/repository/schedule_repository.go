package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/daprotis-api/internal/models"
)

const scheduleColumns = `id, day_of_week, time_slot, max_capacity, is_active, created_at, updated_at`

// weekdayOrderExpr sorts day names in calendar order instead of alphabetically.
var weekdayOrderExpr = buildWeekdayOrder("day_of_week")

func buildWeekdayOrder(column string) string {
	var b strings.Builder
	b.WriteString("CASE " + column)
	for i, day := range models.Weekdays {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", day, i)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(models.Weekdays))
	return b.String()
}

// ScheduleRepository provides database access for training schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new instance of ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// FindByID returns a schedule by identifier.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.TrainingSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM training_schedules WHERE id = $1 LIMIT 1`
	var schedule models.TrainingSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find schedule by id: %w", err)
	}
	return &schedule, nil
}

// ListActive returns active slots ordered by weekday then time.
func (r *ScheduleRepository) ListActive(ctx context.Context) ([]models.TrainingSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM training_schedules WHERE is_active = TRUE ORDER BY ` + weekdayOrderExpr + `, time_slot`
	var schedules []models.TrainingSchedule
	if err := r.db.SelectContext(ctx, &schedules, query); err != nil {
		return nil, fmt.Errorf("list active schedules: %w", err)
	}
	return schedules, nil
}

// ListWithOccupancy returns every slot with its count of active enrollments
// computed in a single grouped query.
func (r *ScheduleRepository) ListWithOccupancy(ctx context.Context) ([]models.ScheduleOccupancy, error) {
	query := `SELECT s.id, s.day_of_week, s.time_slot, s.max_capacity, s.is_active, s.created_at, s.updated_at, COUNT(e.id) AS enrolled
FROM training_schedules s
LEFT JOIN enrollments e ON e.schedule_id = s.id AND e.status = $1
GROUP BY s.id
ORDER BY ` + buildWeekdayOrder("s.day_of_week") + `, s.time_slot`
	var rows []models.ScheduleOccupancy
	if err := r.db.SelectContext(ctx, &rows, query, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list schedule occupancy: %w", err)
	}
	return rows, nil
}

// Create inserts a new schedule.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.TrainingSchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	schedule.CreatedAt, schedule.UpdatedAt = now, now
	const query = `INSERT INTO training_schedules (id, day_of_week, time_slot, max_capacity, is_active, created_at, updated_at) VALUES (:id, :day_of_week, :time_slot, :max_capacity, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// Update persists every mutable field of the schedule.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.TrainingSchedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE training_schedules SET day_of_week = :day_of_week, time_slot = :time_slot, max_capacity = :max_capacity, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, schedule)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return expectAffected(res, "update schedule")
}

// Delete removes the enrollments referencing the slot and then the slot
// itself inside one transaction. It returns the number of enrollments removed.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) (removed int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete schedule: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE schedule_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete schedule enrollments: %w", err)
	}
	if removed, err = res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("delete schedule enrollments rows affected: %w", err)
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM training_schedules WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete schedule: %w", err)
	}
	if err = expectAffected(res, "delete schedule"); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete schedule: %w", err)
	}
	return removed, nil
}
