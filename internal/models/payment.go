package models

import "time"

// PaymentStatus is the review state of a transfer notice.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusVerified PaymentStatus = "verified"
	PaymentStatusRejected PaymentStatus = "rejected"
)

// Payment is a transfer reported by a member and reviewed by an admin.
type Payment struct {
	ID         string        `db:"id" json:"id"`
	UserID     string        `db:"user_id" json:"user_id"`
	Amount     float64       `db:"amount" json:"amount"`
	Status     PaymentStatus `db:"status" json:"status"`
	Note       string        `db:"note" json:"note"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	VerifiedAt *time.Time    `db:"verified_at" json:"verified_at,omitempty"`
	VerifiedBy *string       `db:"verified_by" json:"verified_by,omitempty"`
}

// PaymentDetail adds the member's name for the review queue.
type PaymentDetail struct {
	Payment
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
}

// PaymentFilter narrows the admin review queue.
type PaymentFilter struct {
	Status   *PaymentStatus
	Page     int
	PageSize int
}

// CreatePaymentRequest reports a transfer.
type CreatePaymentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Note   string  `json:"note" validate:"max=500"`
}

// ReviewPaymentRequest settles a pending notice.
type ReviewPaymentRequest struct {
	Status PaymentStatus `json:"status" validate:"required,oneof=verified rejected"`
}

// PaymentInstructions are the bank transfer details shown to members.
type PaymentInstructions struct {
	CBU       string `json:"cbu"`
	Alias     string `json:"alias"`
	Holder    string `json:"holder"`
	Contact   string `json:"contact"`
	Reference string `json:"reference"`
}
