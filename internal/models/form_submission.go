package models

import "time"

// FormSubmission is a completed form with its answers.
type FormSubmission struct {
	ID           string       `db:"id" json:"id"`
	FormID       string       `db:"form_id" json:"form_id"`
	FormName     string       `db:"form_name" json:"form_name"`
	LearnerID    string       `db:"learner_id" json:"learner_id"`
	LearnerName  string       `db:"learner_name" json:"learner_name"`
	SubmittedBy  string       `db:"submitted_by" json:"submitted_by"`
	SubmittedAt  time.Time    `db:"submitted_at" json:"submitted_at"`
	SnapshotPath *string      `db:"snapshot_path" json:"-"`
	Answers      []FormAnswer `db:"-" json:"answers"`
}

// FormAnswer is one question/answer pair of a submission.
type FormAnswer struct {
	SubmissionID string `db:"submission_id" json:"-"`
	Section      string `db:"section" json:"section"`
	Question     string `db:"question" json:"question"`
	Answer       string `db:"answer" json:"answer"`
	Position     int    `db:"position" json:"position"`
}
