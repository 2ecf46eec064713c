package models

import (
	"time"

	"github.com/lib/pq"
)

// SamplePlan groups a course with the IQA who samples its learners.
type SamplePlan struct {
	ID         string    `db:"id" json:"plan_id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	CourseName string    `db:"course_name" json:"course_name"`
	IQAID      string    `db:"iqa_id" json:"iqa_id"`
	IQAName    string    `db:"iqa_name" json:"iqa_name"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// SamplePlanFilter narrows plan listings. Empty fields are ignored.
type SamplePlanFilter struct {
	CourseID string
	IQAID    string
}

// Unit is a qualification unit and whether it is sampled for a learner.
type Unit struct {
	UnitCode   string `db:"unit_code" json:"unit_code"`
	UnitName   string `db:"unit_name" json:"unit_name"`
	IsSelected bool   `db:"is_selected" json:"is_selected"`
}

// CourseUnit is a unit that belongs to a course.
type CourseUnit struct {
	CourseID string `db:"course_id" json:"course_id"`
	UnitCode string `db:"unit_code" json:"unit_code"`
	UnitName string `db:"unit_name" json:"unit_name"`
}

// LearnerCandidate is a learner enrolled on the plan's course with their assessor.
type LearnerCandidate struct {
	LearnerID    string    `db:"learner_id" json:"learner_id"`
	LearnerName  string    `db:"learner_name" json:"learner_name"`
	AssessorID   string    `db:"assessor_id" json:"assessor_id"`
	AssessorName string    `db:"assessor_name" json:"assessor_name"`
	RiskLevel    RiskLevel `db:"risk_level" json:"risk_level"`
}

// SampledUnit links a plan detail to one of its selected units.
type SampledUnit struct {
	DetailID string `db:"detail_id" json:"detail_id"`
	UnitCode string `db:"unit_code" json:"unit_code"`
}

// SamplePlanLearner is one row of the plan learner matrix. DetailID is empty for unsampled candidates.
type SamplePlanLearner struct {
	DetailID      string       `json:"detail_id,omitempty"`
	PlanID        string       `json:"plan_id"`
	LearnerID     string       `json:"learner_id"`
	LearnerName   string       `json:"learner_name"`
	AssessorID    string       `json:"assessor_id"`
	AssessorName  string       `json:"assessor_name"`
	RiskLevel     RiskLevel    `json:"risk_level"`
	SampleType    SampleType   `json:"sample_type,omitempty"`
	PlannedDate   *time.Time   `json:"planned_date,omitempty"`
	CompletedDate *time.Time   `json:"completed_date,omitempty"`
	Status        SampleStatus `json:"status,omitempty"`
	Units         []Unit       `json:"units"`
}

// PlanDetail records the sampling of one learner under a plan.
type PlanDetail struct {
	ID                      string          `db:"id" json:"id"`
	PlanID                  string          `db:"plan_id" json:"plan_id"`
	LearnerID               string          `db:"learner_id" json:"learner_id"`
	SampleType              SampleType      `db:"sample_type" json:"sample_type"`
	PlannedDate             *time.Time      `db:"planned_date" json:"planned_date,omitempty"`
	CompletedDate           *time.Time      `db:"completed_date" json:"completed_date,omitempty"`
	AssessmentMethods       pq.StringArray  `db:"assessment_methods" json:"assessment_methods"`
	AssessmentProcesses     string          `db:"assessment_processes" json:"assessment_processes"`
	Feedback                string          `db:"feedback" json:"feedback"`
	IQAConclusion           pq.StringArray  `db:"iqa_conclusion" json:"iqa_conclusion"`
	AssessorDecisionCorrect DecisionCorrect `db:"assessor_decision_correct" json:"assessor_decision_correct"`
	Status                  SampleStatus    `db:"status" json:"status"`
	CreatedAt               time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time       `db:"updated_at" json:"updated_at"`
}

// PlanDetailPatch lists the columns to change on a plan detail. Nil fields are left untouched.
type PlanDetailPatch struct {
	SampleType              *SampleType
	PlannedDate             *time.Time
	CompletedDate           *time.Time
	AssessmentMethods       *[]string
	AssessmentProcesses     *string
	Feedback                *string
	IQAConclusion           *[]string
	AssessorDecisionCorrect *DecisionCorrect
	Status                  *SampleStatus
}

// Empty reports whether the patch changes nothing.
func (p PlanDetailPatch) Empty() bool {
	return p.SampleType == nil && p.PlannedDate == nil && p.CompletedDate == nil &&
		p.AssessmentMethods == nil && p.AssessmentProcesses == nil && p.Feedback == nil &&
		p.IQAConclusion == nil && p.AssessorDecisionCorrect == nil && p.Status == nil
}

// SampledLearnerInput is one learner written by the apply operation.
type SampledLearnerInput struct {
	LearnerID   string
	PlannedDate *time.Time
	UnitCodes   []string
}

// SampleApplication is the validated input of the apply operation.
type SampleApplication struct {
	PlanID            string
	SampleType        SampleType
	AssessmentMethods []AssessmentMethod
	Learners          []SampledLearnerInput
}

// SampleAction is a follow-up action raised during sampling.
type SampleAction struct {
	ID               string       `db:"id" json:"id"`
	PlanDetailID     string       `db:"plan_detail_id" json:"plan_detail_id"`
	ActionRequired   string       `db:"action_required" json:"action_required"`
	TargetDate       *time.Time   `db:"target_date" json:"target_date,omitempty"`
	Status           ActionStatus `db:"status" json:"status"`
	ActionWith       string       `db:"action_with" json:"action_with"`
	AssessorFeedback string       `db:"assessor_feedback" json:"assessor_feedback"`
	CreatedBy        string       `db:"created_by" json:"created_by"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`
}

// SampleDocument is an evidence file attached to a plan detail.
type SampleDocument struct {
	ID           string    `db:"id" json:"id"`
	PlanDetailID string    `db:"plan_detail_id" json:"plan_detail_id"`
	FileName     string    `db:"file_name" json:"file_name"`
	FilePath     string    `db:"file_path" json:"-"`
	MimeType     string    `db:"mime_type" json:"mime_type"`
	SizeBytes    int64     `db:"size_bytes" json:"size_bytes"`
	Description  string    `db:"description" json:"description"`
	UploadedBy   string    `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
	DownloadURL  string    `db:"-" json:"download_url,omitempty"`
}

// SampleQuestion is a question asked during sampling with its answer.
type SampleQuestion struct {
	ID           string         `db:"id" json:"id"`
	PlanDetailID string         `db:"plan_detail_id" json:"plan_detail_id"`
	Question     string         `db:"question" json:"question"`
	Answer       QuestionAnswer `db:"answer" json:"answer"`
	Notes        string         `db:"notes" json:"notes"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// SampleAllocatedForm is a form allocated to a plan detail for completion.
type SampleAllocatedForm struct {
	ID           string     `db:"id" json:"id"`
	PlanDetailID string     `db:"plan_detail_id" json:"plan_detail_id"`
	FormID       string     `db:"form_id" json:"form_id"`
	FormName     string     `db:"form_name" json:"form_name"`
	Description  string     `db:"description" json:"description"`
	Completed    bool       `db:"completed" json:"completed"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
