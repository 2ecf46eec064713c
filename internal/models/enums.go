package models

import (
	"fmt"
	"strings"
)

// RiskLevel grades how likely a learner's assessment needs intervention.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// ParseRiskLevel matches case-insensitively and rejects unknown values.
func ParseRiskLevel(raw string) (RiskLevel, error) {
	for _, v := range []RiskLevel{RiskLow, RiskMedium, RiskHigh} {
		if strings.EqualFold(raw, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown risk level %q", raw)
}

// SampleType is the stage of assessment being sampled.
type SampleType string

const (
	SampleFormative SampleType = "Formative"
	SampleSummative SampleType = "Summative"
	SampleInterim   SampleType = "Interim"
	SampleFinal     SampleType = "Final"
)

// SampleTypes lists every sample type in display order.
var SampleTypes = []SampleType{SampleFormative, SampleSummative, SampleInterim, SampleFinal}

// ParseSampleType matches case-insensitively and rejects unknown values.
func ParseSampleType(raw string) (SampleType, error) {
	for _, v := range SampleTypes {
		if strings.EqualFold(strings.TrimSpace(raw), string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown sample type %q", raw)
}

// AssessmentMethod is a short code for the evidence method used by the assessor.
type AssessmentMethod string

const (
	MethodObservation          AssessmentMethod = "WO"
	MethodWorkProducts         AssessmentMethod = "WP"
	MethodProfessionalDiscuss  AssessmentMethod = "PW"
	MethodVideo                AssessmentMethod = "VI"
	MethodLearnerLog           AssessmentMethod = "LB"
	MethodQuestioning          AssessmentMethod = "QA"
	MethodWitnessTestimony     AssessmentMethod = "WT"
	MethodExpertStatement      AssessmentMethod = "ES"
	MethodRecognisedPriorLearn AssessmentMethod = "RPL"
	MethodOther                AssessmentMethod = "OT"
)

var assessmentMethodNames = map[AssessmentMethod]string{
	MethodObservation:          "Observation",
	MethodWorkProducts:         "Work Products",
	MethodProfessionalDiscuss:  "Professional Discussion",
	MethodVideo:                "Video",
	MethodLearnerLog:           "Learner Log",
	MethodQuestioning:          "Questioning",
	MethodWitnessTestimony:     "Witness Testimony",
	MethodExpertStatement:      "Expert Statement",
	MethodRecognisedPriorLearn: "Recognition of Prior Learning",
	MethodOther:                "Other",
}

// ParseAssessmentMethod accepts a code in any case.
func ParseAssessmentMethod(raw string) (AssessmentMethod, error) {
	m := AssessmentMethod(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := assessmentMethodNames[m]; !ok {
		return "", fmt.Errorf("unknown assessment method %q", raw)
	}
	return m, nil
}

// Label returns the human readable method name.
func (m AssessmentMethod) Label() string {
	return assessmentMethodNames[m]
}

// SampleStatus tracks whether a sampled learner has been reviewed.
type SampleStatus string

const (
	SampleStatusPlanned   SampleStatus = "Planned"
	SampleStatusCompleted SampleStatus = "Completed"
)

// ActionStatus is the state of a follow-up action. Any status may follow any other.
type ActionStatus string

const (
	ActionPending    ActionStatus = "Pending"
	ActionInProgress ActionStatus = "In Progress"
	ActionCompleted  ActionStatus = "Completed"
	ActionClosed     ActionStatus = "Closed"
)

// ParseActionStatus matches case-insensitively and rejects unknown values.
func ParseActionStatus(raw string) (ActionStatus, error) {
	for _, v := range []ActionStatus{ActionPending, ActionInProgress, ActionCompleted, ActionClosed} {
		if strings.EqualFold(strings.TrimSpace(raw), string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown action status %q", raw)
}

// DecisionCorrect is the IQA verdict on the assessor's decision. Empty means not yet judged.
type DecisionCorrect string

const (
	DecisionUnset DecisionCorrect = ""
	DecisionYes   DecisionCorrect = "Yes"
	DecisionNo    DecisionCorrect = "No"
)

// ParseDecisionCorrect accepts Yes, No or an empty string.
func ParseDecisionCorrect(raw string) (DecisionCorrect, error) {
	switch {
	case strings.TrimSpace(raw) == "":
		return DecisionUnset, nil
	case strings.EqualFold(raw, string(DecisionYes)):
		return DecisionYes, nil
	case strings.EqualFold(raw, string(DecisionNo)):
		return DecisionNo, nil
	}
	return "", fmt.Errorf("unknown decision %q", raw)
}

// AcknowledgementSeverity ranks how prominently a notice is shown to learners.
type AcknowledgementSeverity string

const (
	SeverityInfo     AcknowledgementSeverity = "Info"
	SeverityWarning  AcknowledgementSeverity = "Warning"
	SeverityCritical AcknowledgementSeverity = "Critical"
)

// ParseAcknowledgementSeverity defaults an empty value to Info and rejects unknown values.
func ParseAcknowledgementSeverity(raw string) (AcknowledgementSeverity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SeverityInfo, nil
	}
	for _, v := range []AcknowledgementSeverity{SeverityInfo, SeverityWarning, SeverityCritical} {
		if strings.EqualFold(raw, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown severity %q", raw)
}

// QuestionAnswer is the answer recorded against a sample question.
type QuestionAnswer string

const (
	AnswerYes QuestionAnswer = "Yes"
	AnswerNo  QuestionAnswer = "No"
	AnswerNA  QuestionAnswer = "N/A"
)

// ParseQuestionAnswer matches case-insensitively and rejects unknown values.
func ParseQuestionAnswer(raw string) (QuestionAnswer, error) {
	for _, v := range []QuestionAnswer{AnswerYes, AnswerNo, AnswerNA} {
		if strings.EqualFold(strings.TrimSpace(raw), string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown answer %q", raw)
}
