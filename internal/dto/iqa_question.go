package dto

// IQAQuestionQuery captures the list filter. Empty or "All" selects every type.
type IQAQuestionQuery struct {
	Type string `form:"type"`
}

// CreateIQAQuestionRequest adds a question to the bank.
type CreateIQAQuestionRequest struct {
	Question     string `json:"question" validate:"required,max=2000"`
	QuestionType string `json:"question_type"`
	IsActive     *bool  `json:"is_active"`
}

// UpdateIQAQuestionRequest edits a question. Absent keys stay untouched.
type UpdateIQAQuestionRequest struct {
	Question     *string `json:"question" validate:"omitempty,max=2000"`
	QuestionType *string `json:"question_type"`
	IsActive     *bool   `json:"is_active"`
}

// BulkCreateIQAQuestionsRequest creates several questions of one type at once.
type BulkCreateIQAQuestionsRequest struct {
	QuestionType string   `json:"question_type"`
	Questions    []string `json:"questions" validate:"required,min=1,max=100,dive,required,max=2000"`
	IsActive     *bool    `json:"is_active"`
}
