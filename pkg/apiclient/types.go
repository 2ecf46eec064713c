package apiclient

import "time"

// SamplePlan groups a course with its assigned IQA.
type SamplePlan struct {
	ID         string    `json:"plan_id"`
	CourseID   string    `json:"course_id"`
	CourseName string    `json:"course_name"`
	IQAID      string    `json:"iqa_id"`
	IQAName    string    `json:"iqa_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// Unit is a course unit and whether it is sampled.
type Unit struct {
	UnitCode   string `json:"unit_code"`
	UnitName   string `json:"unit_name"`
	IsSelected bool   `json:"is_selected"`
}

// PlanLearner is one row of a plan's learner matrix.
type PlanLearner struct {
	DetailID      string     `json:"detail_id,omitempty"`
	PlanID        string     `json:"plan_id"`
	LearnerID     string     `json:"learner_id"`
	LearnerName   string     `json:"learner_name"`
	AssessorID    string     `json:"assessor_id"`
	AssessorName  string     `json:"assessor_name"`
	RiskLevel     string     `json:"risk_level"`
	SampleType    string     `json:"sample_type,omitempty"`
	PlannedDate   *time.Time `json:"planned_date,omitempty"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	Status        string     `json:"status,omitempty"`
	Units         []Unit     `json:"units"`
}

// PlanDetail is the sampling record of one learner.
type PlanDetail struct {
	ID                      string     `json:"id"`
	PlanID                  string     `json:"plan_id"`
	LearnerID               string     `json:"learner_id"`
	SampleType              string     `json:"sample_type"`
	PlannedDate             *time.Time `json:"planned_date,omitempty"`
	CompletedDate           *time.Time `json:"completed_date,omitempty"`
	AssessmentMethods       []string   `json:"assessment_methods"`
	AssessmentProcesses     string     `json:"assessment_processes"`
	Feedback                string     `json:"feedback"`
	IQAConclusion           []string   `json:"iqa_conclusion"`
	AssessorDecisionCorrect string     `json:"assessor_decision_correct"`
	Status                  string     `json:"status"`
}

// IQAQuestion is an entry of the question bank.
type IQAQuestion struct {
	ID           string `json:"id"`
	Question     string `json:"question"`
	QuestionType string `json:"question_type"`
	IsActive     bool   `json:"is_active"`
}

// SessionType classifies timelog sessions.
type SessionType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsOffTheJob bool   `json:"is_off_the_job"`
	IsActive    bool   `json:"is_active"`
	Order       int    `json:"order"`
}

// Severity ranks an acknowledgement. The server treats an empty value as Info.
type Severity string

const (
	SeverityInfo     Severity = "Info"
	SeverityWarning  Severity = "Warning"
	SeverityCritical Severity = "Critical"
)

// Acknowledgement is a notice with an optional attachment.
type Acknowledgement struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	FileName  string    `json:"file_name,omitempty"`
	FileURL   string    `json:"file_url,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
