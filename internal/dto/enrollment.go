package dto

import "github.com/noah-isme/daprotis-api/internal/models"

// ToggleAction describes which transition a toggle performed.
type ToggleAction string

const (
	ActionEnrolled   ToggleAction = "enrolled"
	ActionUnenrolled ToggleAction = "unenrolled"
)

// ToggleEnrollmentResponse returns the transition and the member's enrollments
// as re-read from storage afterwards.
type ToggleEnrollmentResponse struct {
	Action      ToggleAction              `json:"action"`
	ScheduleID  string                    `json:"scheduleId"`
	Message     string                    `json:"message"`
	Enrollments []models.EnrollmentDetail `json:"enrollments"`
}

// StudentDashboardResponse is the member landing page payload.
type StudentDashboardResponse struct {
	Profile     *models.Profile           `json:"profile"`
	Eligibility EligibilitySummary        `json:"eligibility"`
	Schedules   []models.TrainingSchedule `json:"schedules"`
	Enrollments []models.EnrollmentDetail `json:"enrollments"`
}

// EligibilitySummary tells the member whether a new enrollment would be accepted.
type EligibilitySummary struct {
	CanEnroll       bool   `json:"canEnroll"`
	Reason          string `json:"reason,omitempty"`
	Message         string `json:"message,omitempty"`
	GracePeriod     bool   `json:"gracePeriod"`
	PaidThisMonth   bool   `json:"paidThisMonth"`
	WeeklyAllowance *int   `json:"weeklyAllowance"`
	WeeklyUsed      int    `json:"weeklyUsed"`
	WeekStart       string `json:"weekStart"`
}
