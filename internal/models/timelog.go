package models

import "time"

// Timelog is one recorded training session of a learner.
type Timelog struct {
	ID              string    `db:"id" json:"id"`
	LearnerID       string    `db:"learner_id" json:"learner_id"`
	LearnerName     string    `db:"learner_name" json:"learner_name"`
	CourseID        string    `db:"course_id" json:"course_id"`
	CourseName      string    `db:"course_name" json:"course_name"`
	SessionTypeName string    `db:"session_type_name" json:"session_type_name"`
	ActivityDate    time.Time `db:"activity_date" json:"activity_date"`
	Duration        string    `db:"duration" json:"duration"`
	IsOffTheJob     bool      `db:"is_off_the_job" json:"is_off_the_job"`
	Activity        string    `db:"activity" json:"activity"`
	Description     string    `db:"description" json:"description"`
}

// TimelogFilter narrows timelogs for export. Dates are inclusive.
type TimelogFilter struct {
	LearnerID     string
	CourseID      string
	DateFrom      *time.Time
	DateTo        *time.Time
	OffTheJobOnly bool
}

// HasRangeOrCourse reports whether a date or course filter is set.
func (f TimelogFilter) HasRangeOrCourse() bool {
	return f.DateFrom != nil || f.DateTo != nil || f.CourseID != ""
}
