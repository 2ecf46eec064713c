package apiclient

import (
	"context"
	"net/http"
)

// SamplePlans wraps the sample-plan endpoints.
type SamplePlans struct {
	c *Client
}

// PlanFilter narrows List. Empty values are not sent.
type PlanFilter struct {
	CourseID string
	IQAID    string
}

// SampledUnit marks a unit as sampled.
type SampledUnit struct {
	UnitCode   string `json:"unit_code"`
	IsSelected bool   `json:"is_selected"`
}

// SampledLearner is one learner of an apply request.
type SampledLearner struct {
	LearnerID string        `json:"learner_id"`
	PlanDate  *string       `json:"plan_date,omitempty"`
	Units     []SampledUnit `json:"units"`
}

// ApplyRequest adds learners to a plan.
type ApplyRequest struct {
	PlanID            string           `json:"plan_id"`
	SampleType        string           `json:"sample_type"`
	AssessmentMethods []string         `json:"assessment_methods"`
	Learners          []SampledLearner `json:"learners"`
}

// DetailUpdate is a partial update. Nil fields are omitted from the body and left untouched.
type DetailUpdate struct {
	SampleType              *string   `json:"sample_type,omitempty"`
	PlannedDate             *string   `json:"planned_date,omitempty"`
	CompletedDate           *string   `json:"completed_date,omitempty"`
	AssessmentMethods       *[]string `json:"assessment_methods,omitempty"`
	AssessmentProcesses     *string   `json:"assessment_processes,omitempty"`
	Feedback                *string   `json:"feedback,omitempty"`
	IQAConclusion           *[]string `json:"iqa_conclusion,omitempty"`
	AssessorDecisionCorrect *string   `json:"assessor_decision_correct,omitempty"`
}

// List returns the plans matching filter.
func (s *SamplePlans) List(ctx context.Context, filter PlanFilter) ([]SamplePlan, error) {
	var out []SamplePlan
	query := Query(map[string]interface{}{"course_id": filter.CourseID, "iqa_id": filter.IQAID})
	err := s.c.cachedGet(ctx, TagSamplePlans, "sample-plan/list", query, &out)
	return out, err
}

// Learners returns the learner matrix of a plan.
func (s *SamplePlans) Learners(ctx context.Context, planID string) ([]PlanLearner, error) {
	var out []PlanLearner
	err := s.c.cachedGet(ctx, TagPlanLearners, "sample-plan/"+Path(planID)+"/learners", nil, &out)
	return out, err
}

// ApplySampledLearners stores the learners in one transaction.
func (s *SamplePlans) ApplySampledLearners(ctx context.Context, req ApplyRequest) ([]PlanDetail, error) {
	var out []PlanDetail
	if _, err := s.c.do(ctx, request{method: http.MethodPost, path: "sample-plan/add-sampled-learners", body: req}, &out); err != nil {
		return nil, err
	}
	s.c.Invalidate(TagPlanLearners, TagSamplePlans)
	return out, nil
}

// UpdateDetail sends only the fields set on update.
func (s *SamplePlans) UpdateDetail(ctx context.Context, detailID string, update DetailUpdate) (*PlanDetail, error) {
	var out PlanDetail
	if _, err := s.c.do(ctx, request{method: http.MethodPatch, path: "sample-plan/deatil/" + Path(detailID), body: update}, &out); err != nil {
		return nil, err
	}
	s.c.Invalidate(TagPlanLearners)
	return &out, nil
}

// RemoveSampledLearner deletes a learner's sampling record.
func (s *SamplePlans) RemoveSampledLearner(ctx context.Context, detailID string) error {
	if _, err := s.c.do(ctx, request{method: http.MethodDelete, path: "sample-plan/remove-sampled-learner/" + Path(detailID)}, nil); err != nil {
		return err
	}
	s.c.Invalidate(TagPlanLearners, TagSamplePlans)
	return nil
}
