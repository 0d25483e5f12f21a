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

const paymentColumns = `id, user_id, amount, status, note, created_at, verified_at, verified_by`

// PaymentRepository provides database access for transfer notices.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new instance of PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a pending notice.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO payments (id, user_id, amount, status, note, created_at) VALUES (:id, :user_id, :amount, :status, :note, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// FindByID returns a notice by identifier.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 LIMIT 1`
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find payment by id: %w", err)
	}
	return &payment, nil
}

// ListByUser returns the member's notices, newest first.
func (r *PaymentRepository) ListByUser(ctx context.Context, userID string) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, userID); err != nil {
		return nil, fmt.Errorf("list user payments: %w", err)
	}
	return payments, nil
}

// List returns the review queue joined with member names, newest first.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	baseQuery := `FROM payments pay JOIN profiles p ON p.id = pay.user_id WHERE 1=1`
	var args []interface{}
	if filter.Status != nil {
		baseQuery += " AND pay.status = $1"
		args = append(args, *filter.Status)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	listQuery := fmt.Sprintf(`SELECT pay.id, pay.user_id, pay.amount, pay.status, pay.note, pay.created_at, pay.verified_at, pay.verified_by, p.first_name, p.last_name %s ORDER BY pay.created_at DESC LIMIT %d OFFSET %d`, baseQuery, pageSize, (page-1)*pageSize)

	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	return payments, total, nil
}

// Review stores the admin decision on a notice. When paidOn is set the
// owner's last payment date is updated in the same transaction.
func (r *PaymentRepository) Review(ctx context.Context, payment *models.Payment, paidOn *models.Date) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin review payment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE payments SET status = :status, verified_at = :verified_at, verified_by = :verified_by WHERE id = :id`
	res, err := tx.NamedExecContext(ctx, query, payment)
	if err != nil {
		return fmt.Errorf("review payment: %w", err)
	}
	if err = expectAffected(res, "review payment"); err != nil {
		return err
	}

	if paidOn != nil {
		const profileQuery = `UPDATE profiles SET last_payment_date = $2, updated_at = $3 WHERE id = $1`
		if _, err = tx.ExecContext(ctx, profileQuery, payment.UserID, paidOn, time.Now().UTC()); err != nil {
			return fmt.Errorf("stamp last payment date: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit review payment: %w", err)
	}
	return nil
}
