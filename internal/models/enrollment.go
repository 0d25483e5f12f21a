package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment. Removal is a
// hard delete, so active is the only stored state.
type EnrollmentStatus string

const EnrollmentStatusActive EnrollmentStatus = "active"

// Enrollment links a profile to a training schedule.
type Enrollment struct {
	ID         string           `db:"id" json:"id"`
	UserID     string           `db:"user_id" json:"user_id"`
	ScheduleID string           `db:"schedule_id" json:"schedule_id"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt time.Time        `db:"enrolled_at" json:"enrolled_at"`
}

// EnrollmentDetail enriches an enrollment with its slot.
type EnrollmentDetail struct {
	Enrollment
	DayOfWeek string `db:"day_of_week" json:"day_of_week"`
	TimeSlot  string `db:"time_slot" json:"time_slot"`
}

// RosterEntry is an enrollment joined with the student and the slot.
type RosterEntry struct {
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	UserID       string    `db:"user_id" json:"user_id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Phone        string    `db:"phone" json:"phone"`
	ScheduleID   string    `db:"schedule_id" json:"schedule_id"`
	DayOfWeek    string    `db:"day_of_week" json:"day_of_week"`
	TimeSlot     string    `db:"time_slot" json:"time_slot"`
	EnrolledAt   time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// RosterFilter narrows roster queries to one slot when ScheduleID is set.
type RosterFilter struct {
	ScheduleID string
}
