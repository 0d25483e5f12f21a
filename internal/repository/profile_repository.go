package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/daprotis-api/internal/models"
)

const profileColumns = `id, first_name, last_name, phone, date_of_birth, address, role, last_payment_date, cant_por_semana, created_at, updated_at`

// ProfileRepository provides database access for member profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new instance of ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByID returns a profile by identifier.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1 LIMIT 1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find profile by id: %w", err)
	}
	return &profile, nil
}

// UpdatePersonal saves the self-service fields of a profile.
func (r *ProfileRepository) UpdatePersonal(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE profiles SET first_name = :first_name, last_name = :last_name, phone = :phone, date_of_birth = :date_of_birth, address = :address, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, profile)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return expectAffected(res, "update profile")
}

// SetLastPaymentDate stores or clears the member's last payment date.
func (r *ProfileRepository) SetLastPaymentDate(ctx context.Context, id string, date *models.Date) error {
	const query = `UPDATE profiles SET last_payment_date = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, date, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set last payment date: %w", err)
	}
	return expectAffected(res, "set last payment date")
}

// SetWeeklyAllowance stores or clears the number of classes allowed per week.
func (r *ProfileRepository) SetWeeklyAllowance(ctx context.Context, id string, allowance *int) error {
	const query = `UPDATE profiles SET cant_por_semana = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, allowance, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set weekly allowance: %w", err)
	}
	return expectAffected(res, "set weekly allowance")
}

// List returns profiles with their login email, newest first, plus the total count.
func (r *ProfileRepository) List(ctx context.Context, filter models.ProfileFilter) ([]models.ProfileWithEmail, int, error) {
	baseQuery := `FROM profiles p JOIN users u ON u.id = p.id WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("p.role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(p.first_name) LIKE $%d OR LOWER(p.last_name) LIKE $%d OR LOWER(u.email) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT p.id, p.first_name, p.last_name, p.phone, p.date_of_birth, p.address, p.role, p.last_payment_date, p.cant_por_semana, p.created_at, p.updated_at, u.email %s ORDER BY p.created_at DESC LIMIT %d OFFSET %d`, baseQuery, pageSize, offset)

	var profiles []models.ProfileWithEmail
	if err := r.db.SelectContext(ctx, &profiles, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}

	return profiles, total, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
