package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// QuestionTypeAll is the list filter that selects every type. It cannot be stored.
const QuestionTypeAll = "All"

// Questions wraps the IQA question bank endpoints.
type Questions struct {
	c *Client
}

// QuestionInput creates a question.
type QuestionInput struct {
	Question     string `json:"question"`
	QuestionType string `json:"question_type"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

// QuestionUpdate changes the set fields of a question.
type QuestionUpdate struct {
	Question     *string `json:"question,omitempty"`
	QuestionType *string `json:"question_type,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

type bulkQuestionInput struct {
	QuestionType string   `json:"question_type"`
	Questions    []string `json:"questions"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

func concreteType(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, QuestionTypeAll) {
		return ErrQuestionTypeRequired
	}
	return nil
}

// List returns questions of questionType, or all of them for "" or "All".
func (s *Questions) List(ctx context.Context, questionType string) ([]IQAQuestion, error) {
	var out []IQAQuestion
	err := s.c.cachedGet(ctx, TagIQAQuestions, "iqa-questions/admin/questions", Query(map[string]interface{}{"type": questionType}), &out)
	return out, err
}

// Create adds a question. A missing or "All" type fails without a request.
func (s *Questions) Create(ctx context.Context, in QuestionInput) (*IQAQuestion, error) {
	if err := concreteType(in.QuestionType); err != nil {
		return nil, err
	}
	var out IQAQuestion
	if _, err := s.c.do(ctx, request{method: http.MethodPost, path: "iqa-questions/admin/questions", body: in}, &out); err != nil {
		return nil, err
	}
	s.c.Invalidate(TagIQAQuestions)
	return &out, nil
}

// CreateMany adds several questions of one type in one request.
func (s *Questions) CreateMany(ctx context.Context, questionType string, texts []string, active *bool) ([]IQAQuestion, error) {
	if err := concreteType(questionType); err != nil {
		return nil, err
	}
	var out []IQAQuestion
	body := bulkQuestionInput{QuestionType: questionType, Questions: texts, IsActive: active}
	if _, err := s.c.do(ctx, request{method: http.MethodPost, path: "iqa-questions/admin/questions/bulk", body: body}, &out); err != nil {
		return nil, err
	}
	s.c.Invalidate(TagIQAQuestions)
	return out, nil
}

// Update changes a question. Setting the type to "" or "All" fails without a request.
func (s *Questions) Update(ctx context.Context, id string, in QuestionUpdate) (*IQAQuestion, error) {
	if in.QuestionType != nil {
		if err := concreteType(*in.QuestionType); err != nil {
			return nil, err
		}
	}
	var out IQAQuestion
	if _, err := s.c.do(ctx, request{method: http.MethodPatch, path: "iqa-questions/admin/questions/" + Path(id), body: in}, &out); err != nil {
		return nil, err
	}
	s.c.Invalidate(TagIQAQuestions)
	return &out, nil
}

// Delete removes a persisted question.
func (s *Questions) Delete(ctx context.Context, id string) error {
	if _, err := s.c.do(ctx, request{method: http.MethodDelete, path: "iqa-questions/admin/questions/" + Path(id)}, nil); err != nil {
		return err
	}
	s.c.Invalidate(TagIQAQuestions)
	return nil
}

// RowRef identifies a row of a QuestionDraftSet: either Persisted or Draft.
type RowRef interface {
	rowRef()
}

// Persisted refers to a question stored on the server.
type Persisted struct {
	ID string
}

// Draft refers to a row that only exists locally.
type Draft struct {
	LocalKey string
}

func (Persisted) rowRef() {}
func (Draft) rowRef()     {}

// QuestionRow is one editable row.
type QuestionRow struct {
	Ref      RowRef
	Question string
	IsActive bool
}

// QuestionDraftSet edits the questions of one concrete type, staging new rows locally until Save.
type QuestionDraftSet struct {
	questions    *Questions
	questionType string

	mu   sync.Mutex
	rows []QuestionRow
	seq  int
}

// NewDraftSet loads the persisted questions of questionType.
func (s *Questions) NewDraftSet(ctx context.Context, questionType string) (*QuestionDraftSet, error) {
	if err := concreteType(questionType); err != nil {
		return nil, err
	}
	items, err := s.List(ctx, questionType)
	if err != nil {
		return nil, err
	}
	set := &QuestionDraftSet{questions: s, questionType: questionType}
	for _, q := range items {
		set.rows = append(set.rows, QuestionRow{Ref: Persisted{ID: q.ID}, Question: q.Question, IsActive: q.IsActive})
	}
	return set, nil
}

// Rows returns a copy of the current rows.
func (d *QuestionDraftSet) Rows() []QuestionRow {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]QuestionRow(nil), d.rows...)
}

// Add stages a new row and returns its reference.
func (d *QuestionDraftSet) Add(question string) Draft {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	ref := Draft{LocalKey: fmt.Sprintf("draft-%d", d.seq)}
	d.rows = append(d.rows, QuestionRow{Ref: ref, Question: question, IsActive: true})
	return ref
}

// Delete removes a row. Drafts are dropped locally; persisted rows are deleted on the server first.
func (d *QuestionDraftSet) Delete(ctx context.Context, ref RowRef) error {
	switch r := ref.(type) {
	case Draft:
		d.remove(r)
		return nil
	case Persisted:
		if err := d.questions.Delete(ctx, r.ID); err != nil {
			return err
		}
		d.remove(r)
		return nil
	default:
		return fmt.Errorf("unknown row reference %T", ref)
	}
}

func (d *QuestionDraftSet) remove(ref RowRef) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, row := range d.rows {
		if row.Ref == ref {
			d.rows = append(d.rows[:i], d.rows[i+1:]...)
			return
		}
	}
}

// Save creates every draft in one bulk request and turns them into persisted rows.
func (d *QuestionDraftSet) Save(ctx context.Context) error {
	d.mu.Lock()
	var texts []string
	var keys []Draft
	for _, row := range d.rows {
		if draft, ok := row.Ref.(Draft); ok {
			texts = append(texts, row.Question)
			keys = append(keys, draft)
		}
	}
	d.mu.Unlock()
	if len(texts) == 0 {
		return nil
	}

	created, err := d.questions.CreateMany(ctx, d.questionType, texts, nil)
	if err != nil {
		return err
	}
	if len(created) != len(keys) {
		return fmt.Errorf("bulk create returned %d questions for %d drafts", len(created), len(keys))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make(map[Draft]IQAQuestion, len(keys))
	for i, key := range keys {
		ids[key] = created[i]
	}
	for i, row := range d.rows {
		if draft, ok := row.Ref.(Draft); ok {
			if q, found := ids[draft]; found {
				d.rows[i] = QuestionRow{Ref: Persisted{ID: q.ID}, Question: q.Question, IsActive: q.IsActive}
			}
		}
	}
	return nil
}
