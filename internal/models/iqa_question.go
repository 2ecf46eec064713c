package models

import (
	"fmt"
	"strings"
	"time"
)

// QuestionType is the concrete category an IQA question belongs to.
type QuestionType string

const (
	QuestionObserveAssessor   QuestionType = "Observe Assessor"
	QuestionLearnerInterview  QuestionType = "Learner Interview"
	QuestionEmployerInterview QuestionType = "Employer Interview"
	QuestionFinalCheck        QuestionType = "Final Check"

	// QuestionTypeAll selects every type in listings. It is never stored.
	QuestionTypeAll = "All"
)

// QuestionTypes lists the concrete types in display order.
var QuestionTypes = []QuestionType{QuestionObserveAssessor, QuestionLearnerInterview, QuestionEmployerInterview, QuestionFinalCheck}

// ParseQuestionType accepts only concrete types; "All" and empty values are rejected.
func ParseQuestionType(raw string) (QuestionType, error) {
	trimmed := strings.TrimSpace(raw)
	for _, v := range QuestionTypes {
		if strings.EqualFold(trimmed, string(v)) {
			return v, nil
		}
	}
	if trimmed == "" || strings.EqualFold(trimmed, QuestionTypeAll) {
		return "", fmt.Errorf("a concrete question type is required")
	}
	return "", fmt.Errorf("unknown question type %q", raw)
}

// ParseQuestionTypeFilter resolves a list filter. all is true for empty input or "All".
func ParseQuestionTypeFilter(raw string) (qt QuestionType, all bool, err error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, QuestionTypeAll) {
		return "", true, nil
	}
	qt, err = ParseQuestionType(trimmed)
	return qt, false, err
}

// IQAQuestion is an entry of the IQA question bank.
type IQAQuestion struct {
	ID           string       `db:"id" json:"id"`
	Question     string       `db:"question" json:"question"`
	QuestionType QuestionType `db:"question_type" json:"question_type"`
	IsActive     bool         `db:"is_active" json:"is_active"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// IQAQuestionFilter narrows question listings.
type IQAQuestionFilter struct {
	Type       *QuestionType
	ActiveOnly bool
}
