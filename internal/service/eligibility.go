package service

import (
	"time"

	"github.com/noah-isme/daprotis-api/internal/models"
	appErrors "github.com/noah-isme/daprotis-api/pkg/errors"
)

// EligibilityReason explains an eligibility verdict.
type EligibilityReason string

const (
	ReasonGracePeriod        EligibilityReason = "grace_period"
	ReasonWithinLimit        EligibilityReason = "within_limit"
	ReasonPaymentOverdue     EligibilityReason = "payment_overdue"
	ReasonNoValidPlan        EligibilityReason = "no_valid_plan"
	ReasonWeeklyLimitReached EligibilityReason = "weekly_limit_reached"
)

// DefaultGracePeriodDays is the number of days at the start of each month in
// which enrollment is allowed regardless of payment or allowance.
const DefaultGracePeriodDays = 7

// EligibilityInput is everything the rules look at. Now must already be in
// the school's time zone and WeeklyCount must cover WeekWindow(Now).
type EligibilityInput struct {
	LastPaymentDate *models.Date
	WeeklyAllowance *int
	Now             time.Time
	WeeklyCount     int
}

// Verdict is the outcome of an eligibility evaluation.
type Verdict struct {
	Approved bool              `json:"approved"`
	Reason   EligibilityReason `json:"reason"`
	Message  string            `json:"message"`
}

// Err returns the typed rejection, or nil for approvals.
func (v Verdict) Err() error {
	if v.Approved {
		return nil
	}
	switch v.Reason {
	case ReasonPaymentOverdue:
		return appErrors.Clone(appErrors.ErrPaymentOverdue, v.Message)
	case ReasonNoValidPlan:
		return appErrors.Clone(appErrors.ErrNoValidPlan, v.Message)
	case ReasonWeeklyLimitReached:
		return appErrors.Clone(appErrors.ErrWeeklyLimitReached, v.Message)
	default:
		return appErrors.Clone(appErrors.ErrForbidden, v.Message)
	}
}

// EligibilityEvaluator decides whether a member may take one more class.
type EligibilityEvaluator struct {
	graceDays int
}

// NewEligibilityEvaluator builds an evaluator. A negative graceDays falls
// back to the default; zero disables the grace period.
func NewEligibilityEvaluator(graceDays int) *EligibilityEvaluator {
	if graceDays < 0 {
		graceDays = DefaultGracePeriodDays
	}
	return &EligibilityEvaluator{graceDays: graceDays}
}

// Evaluate applies the rules in order: grace period, payment for the current
// month, a positive weekly allowance, then the weekly count.
func (e *EligibilityEvaluator) Evaluate(in EligibilityInput) Verdict {
	if in.Now.Day() <= e.graceDays {
		return Verdict{Approved: true, Reason: ReasonGracePeriod, Message: "período de gracia de inicio de mes"}
	}
	if in.LastPaymentDate == nil || !in.LastPaymentDate.SameMonth(in.Now) {
		return Verdict{Reason: ReasonPaymentOverdue, Message: "tu cuota del mes no está registrada; regularizá el pago para inscribirte"}
	}
	if in.WeeklyAllowance == nil || *in.WeeklyAllowance <= 0 {
		return Verdict{Reason: ReasonNoValidPlan, Message: "no tenés un plan semanal asignado; consultá con la administración"}
	}
	if in.WeeklyCount >= *in.WeeklyAllowance {
		return Verdict{Reason: ReasonWeeklyLimitReached, Message: "ya alcanzaste la cantidad de clases de tu plan para esta semana"}
	}
	return Verdict{Approved: true, Reason: ReasonWithinLimit, Message: "inscripción habilitada"}
}

// WeekWindow returns the half-open week containing now: from Monday 00:00 in
// now's location up to the following Monday 00:00.
func WeekWindow(now time.Time) (time.Time, time.Time) {
	offset := (int(now.Weekday()) + 6) % 7
	y, m, d := now.Date()
	start := time.Date(y, m, d-offset, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 7)
}

// MonthRange returns the first day of now's month and of the next month.
func MonthRange(now time.Time) (models.Date, models.Date) {
	y, m, _ := now.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return models.Date{Time: first}, models.Date{Time: first.AddDate(0, 1, 0)}
}
