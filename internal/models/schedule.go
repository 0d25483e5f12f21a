package models

import "time"

// Weekdays lists the days classes can be held on, in calendar order.
var Weekdays = []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}

// WeekdayOrder returns the position of day within Weekdays, or -1.
func WeekdayOrder(day string) int {
	for i, d := range Weekdays {
		if d == day {
			return i
		}
	}
	return -1
}

// TrainingSchedule is a recurring weekly class slot.
type TrainingSchedule struct {
	ID          string    `db:"id" json:"id"`
	DayOfWeek   string    `db:"day_of_week" json:"day_of_week"`
	TimeSlot    string    `db:"time_slot" json:"time_slot"`
	MaxCapacity int       `db:"max_capacity" json:"max_capacity"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleOccupancy is a slot with its current count of active enrollments.
// OverCapacity is a display flag only; enrollment never checks capacity.
type ScheduleOccupancy struct {
	TrainingSchedule
	Enrolled     int  `db:"enrolled" json:"enrolled"`
	OverCapacity bool `db:"-" json:"over_capacity"`
}

// CreateScheduleRequest is the admin form for a new slot.
type CreateScheduleRequest struct {
	DayOfWeek   string `json:"day_of_week" validate:"required,weekday"`
	TimeSlot    string `json:"time_slot" validate:"required,max=20"`
	MaxCapacity *int   `json:"max_capacity" validate:"omitempty,gt=0"`
	IsActive    *bool  `json:"is_active"`
}

// UpdateScheduleRequest is a partial update; nil fields are left unchanged.
type UpdateScheduleRequest struct {
	DayOfWeek   *string `json:"day_of_week" validate:"omitempty,weekday"`
	TimeSlot    *string `json:"time_slot" validate:"omitempty,min=1,max=20"`
	MaxCapacity *int    `json:"max_capacity" validate:"omitempty,gt=0"`
	IsActive    *bool   `json:"is_active"`
}
