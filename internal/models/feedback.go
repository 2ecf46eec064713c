package models

import "time"

// Feedback is a learner's rating and comment on a course.
type Feedback struct {
	ID          string    `db:"id" json:"id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	CourseName  string    `db:"course_name" json:"course_name"`
	LearnerName string    `db:"learner_name" json:"learner_name"`
	Rating      int       `db:"rating" json:"rating"`
	Comment     string    `db:"comment" json:"comment"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
