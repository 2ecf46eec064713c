package dto

// CreateSamplePlanRequest assigns an IQA to a course.
type CreateSamplePlanRequest struct {
	CourseID string `json:"course_id" validate:"required"`
	IQAID    string `json:"iqa_id" validate:"required"`
}

// SamplePlanQuery captures list filters from the query string.
type SamplePlanQuery struct {
	CourseID string `form:"course_id"`
	IQAID    string `form:"iqa_id"`
}

// SampledUnitRequest marks one unit of a learner as sampled or not.
type SampledUnitRequest struct {
	UnitCode   string `json:"unit_code" validate:"required"`
	IsSelected bool   `json:"is_selected"`
}

// SampledLearnerRequest is one learner in an apply request.
type SampledLearnerRequest struct {
	LearnerID string               `json:"learner_id" validate:"required"`
	PlanDate  *string              `json:"plan_date"`
	Units     []SampledUnitRequest `json:"units" validate:"dive"`
}

// ApplySampledLearnersRequest bulk-adds learners to a plan.
type ApplySampledLearnersRequest struct {
	PlanID            string                  `json:"plan_id" validate:"required"`
	SampleType        string                  `json:"sample_type" validate:"required"`
	AssessmentMethods []string                `json:"assessment_methods"`
	Learners          []SampledLearnerRequest `json:"learners" validate:"required,min=1,dive"`
}

// UpdatePlanDetailRequest carries a partial plan detail update. Absent keys stay untouched.
type UpdatePlanDetailRequest struct {
	SampleType              *string   `json:"sample_type"`
	PlannedDate             *string   `json:"planned_date"`
	CompletedDate           *string   `json:"completed_date"`
	AssessmentMethods       *[]string `json:"assessment_methods"`
	AssessmentProcesses     *string   `json:"assessment_processes"`
	Feedback                *string   `json:"feedback"`
	IQAConclusion           *[]string `json:"iqa_conclusion"`
	AssessorDecisionCorrect *string   `json:"assessor_decision_correct"`
}

// SampleActionRequest creates or replaces a follow-up action.
type SampleActionRequest struct {
	ActionRequired   string  `json:"action_required" validate:"required,max=2000"`
	TargetDate       *string `json:"target_date"`
	Status           string  `json:"status"`
	ActionWith       string  `json:"action_with" validate:"max=255"`
	AssessorFeedback string  `json:"assessor_feedback" validate:"max=4000"`
}

// SampleQuestionRequest creates or replaces a sampling question.
type SampleQuestionRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
	Answer   string `json:"answer" validate:"required"`
	Notes    string `json:"notes" validate:"max=4000"`
}

// SampleFormRequest allocates or edits a form for a plan detail.
type SampleFormRequest struct {
	FormID      string `json:"form_id" validate:"required"`
	FormName    string `json:"form_name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
	Completed   bool   `json:"completed"`
}

// SampleDocumentMeta holds the non-file fields of a document upload.
type SampleDocumentMeta struct {
	Description string `form:"description" json:"description" validate:"max=2000"`
}

// UpdateSampleDocumentRequest renames a document or edits its description.
type UpdateSampleDocumentRequest struct {
	FileName    string `json:"file_name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
}
