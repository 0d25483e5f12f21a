package models

import "time"

// Role is the profile role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Profile holds a member's personal data, payment status and weekly allowance.
type Profile struct {
	ID              string    `db:"id" json:"id"`
	FirstName       string    `db:"first_name" json:"first_name"`
	LastName        string    `db:"last_name" json:"last_name"`
	Phone           string    `db:"phone" json:"phone"`
	DateOfBirth     *Date     `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Address         *string   `db:"address" json:"address,omitempty"`
	Role            Role      `db:"role" json:"role"`
	LastPaymentDate *Date     `db:"last_payment_date" json:"last_payment_date"`
	WeeklyAllowance *int      `db:"cant_por_semana" json:"cant_por_semana"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (p Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// ProfileWithEmail is the admin listing row.
type ProfileWithEmail struct {
	Profile
	Email string `db:"email" json:"email"`
}

// ProfileFilter captures filtering criteria for listing profiles.
type ProfileFilter struct {
	Role     *Role
	Search   string
	Page     int
	PageSize int
}

// UpdateProfileRequest is the self-service profile form.
type UpdateProfileRequest struct {
	FirstName   string  `json:"first_name" validate:"required,max=100"`
	LastName    string  `json:"last_name" validate:"required,max=100"`
	Phone       string  `json:"phone" validate:"required,phone"`
	DateOfBirth string  `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Address     *string `json:"address" validate:"omitempty,max=255"`
}

// SetPaymentDateRequest sets or clears a member's last payment date.
type SetPaymentDateRequest struct {
	LastPaymentDate *string `json:"last_payment_date" validate:"omitempty,datetime=2006-01-02"`
}

// SetWeeklyAllowanceRequest sets or clears a member's weekly class allowance.
type SetWeeklyAllowanceRequest struct {
	WeeklyAllowance *int `json:"cant_por_semana" validate:"omitempty,gt=0"`
}
