package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionTypeGuardMakesNoRequest(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client(t)
	ctx := context.Background()
	all := "All"
	blank := ""

	_, err := c.Questions.Create(ctx, QuestionInput{Question: "Q?", QuestionType: "All"})
	assert.ErrorIs(t, err, ErrQuestionTypeRequired)
	_, err = c.Questions.Create(ctx, QuestionInput{Question: "Q?"})
	assert.ErrorIs(t, err, ErrQuestionTypeRequired)
	_, err = c.Questions.Update(ctx, "q1", QuestionUpdate{QuestionType: &all})
	assert.ErrorIs(t, err, ErrQuestionTypeRequired)
	_, err = c.Questions.Update(ctx, "q1", QuestionUpdate{QuestionType: &blank})
	assert.ErrorIs(t, err, ErrQuestionTypeRequired)
	_, err = c.Questions.CreateMany(ctx, "all", []string{"a"}, nil)
	assert.ErrorIs(t, err, ErrQuestionTypeRequired)

	assert.Empty(t, api.recorded())
}

func TestQuestionDraftSetDispatchesOnRowKind(t *testing.T) {
	api := newFakeAPI(t)
	var mu sync.Mutex
	stored := []IQAQuestion{{ID: "q1", Question: "Existing", QuestionType: "Final Check", IsActive: true}}
	api.mux.HandleFunc("GET /api/v1/iqa-questions/admin/questions", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		writeEnvelope(w, http.StatusOK, stored, "")
	})
	api.mux.HandleFunc("DELETE /api/v1/iqa-questions/admin/questions/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, nil, "deleted")
	})
	api.mux.HandleFunc("POST /api/v1/iqa-questions/admin/questions/bulk", func(w http.ResponseWriter, r *http.Request) {
		var in bulkQuestionInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		out := make([]IQAQuestion, 0, len(in.Questions))
		for i, q := range in.Questions {
			out = append(out, IQAQuestion{ID: "new-" + string(rune('a'+i)), Question: q, QuestionType: in.QuestionType, IsActive: true})
		}
		writeEnvelope(w, http.StatusCreated, out, "created")
	})
	c := api.client(t)
	ctx := context.Background()

	set, err := c.Questions.NewDraftSet(ctx, "Final Check")
	require.NoError(t, err)
	d1 := set.Add("Draft one")
	set.Add("Draft two")
	require.Len(t, set.Rows(), 3)

	require.NoError(t, set.Delete(ctx, d1))
	require.Len(t, set.Rows(), 2)
	assert.Len(t, api.recorded(), 1, "deleting a draft must not call the server")

	require.NoError(t, set.Save(ctx))
	rows := set.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, Persisted{ID: "new-a"}, rows[1].Ref)
	assert.Equal(t, "Draft two", rows[1].Question)

	require.NoError(t, set.Delete(ctx, Persisted{ID: "q1"}))
	calls := api.recorded()
	last := calls[len(calls)-1]
	assert.Equal(t, http.MethodDelete, last.Method)
	assert.Equal(t, "/api/v1/iqa-questions/admin/questions/q1", last.Path)
	assert.Len(t, set.Rows(), 1)
}

type rankedServer struct {
	mu       sync.Mutex
	items    []SessionType
	reject   bool
	reorders int
	// failCall, when set, decides per 1-based reorder call whether it fails.
	failCall func(n int) bool
}

func (s *rankedServer) list() []SessionType {
	out := append([]SessionType(nil), s.items...)
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (s *rankedServer) register(api *fakeAPI) {
	api.mux.HandleFunc("GET /api/v1/sessionType/list", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeEnvelope(w, http.StatusOK, s.list(), "")
	})
	api.mux.HandleFunc("PATCH /api/v1/sessionType/reorder", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.reorders++
		if s.reject || (s.failCall != nil && s.failCall(s.reorders)) {
			writeEnvelope(w, http.StatusInternalServerError, nil, "reorder failed")
			return
		}
		var in reorderInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		items := s.list()
		for i := range items {
			if items[i].ID != in.ID {
				continue
			}
			j := i - 1
			if in.Direction == DirectionDown {
				j = i + 1
			}
			if j >= 0 && j < len(items) {
				items[i].Order, items[j].Order = items[j].Order, items[i].Order
			}
		}
		s.items = items
		writeEnvelope(w, http.StatusOK, s.list(), "")
	})
}

func sessionNames(items []*SessionType) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func newRankedServer() *rankedServer {
	return &rankedServer{items: []SessionType{{ID: "a", Name: "A", Order: 1}, {ID: "b", Name: "B", Order: 2}, {ID: "c", Name: "C", Order: 3}}}
}

func TestSessionTypeMoveCommits(t *testing.T) {
	api := newFakeAPI(t)
	srv := newRankedServer()
	srv.register(api)
	c := api.client(t)
	ctx := context.Background()

	list, err := c.SessionTypes.NewList(ctx)
	require.NoError(t, err)
	require.NoError(t, list.Move(ctx, 2, 0))
	assert.Equal(t, []string{"C", "A", "B"}, sessionNames(list.Items()))

	var reorders []recordedCall
	for _, call := range api.recorded() {
		if call.Method == http.MethodPatch {
			reorders = append(reorders, call)
		}
	}
	require.Len(t, reorders, 2)
	for _, call := range reorders {
		assert.True(t, strings.Contains(call.Body, `"direction":"UP"`))
		assert.True(t, strings.Contains(call.Body, `"id":"c"`))
	}
}

func TestSessionTypeMoveRevertsToSameElements(t *testing.T) {
	api := newFakeAPI(t)
	srv := newRankedServer()
	srv.register(api)
	c := api.client(t)
	ctx := context.Background()

	list, err := c.SessionTypes.NewList(ctx)
	require.NoError(t, err)
	before := list.Items()

	srv.mu.Lock()
	srv.reject = true
	srv.mu.Unlock()

	err = list.Move(ctx, 2, 0)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "reorder failed", apiErr.Message)

	after := list.Items()
	assert.Equal(t, []string{"A", "B", "C"}, sessionNames(after))
	require.Len(t, after, len(before))
	for i := range before {
		assert.Same(t, before[i], after[i])
	}
}

func serverNames(s *rankedServer) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, it := range s.list() {
		out = append(out, it.Name)
	}
	return out
}

func TestSessionTypeMoveWalksBackAppliedSteps(t *testing.T) {
	api := newFakeAPI(t)
	srv := newRankedServer()
	srv.register(api)
	c := api.client(t)
	ctx := context.Background()

	list, err := c.SessionTypes.NewList(ctx)
	require.NoError(t, err)

	srv.mu.Lock()
	srv.failCall = func(n int) bool { return n == 2 }
	srv.mu.Unlock()

	err = list.Move(ctx, 2, 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPartialMove)

	assert.Equal(t, []string{"A", "B", "C"}, sessionNames(list.Items()))
	assert.Equal(t, []string{"A", "B", "C"}, serverNames(srv))

	var directions []string
	for _, call := range api.recorded() {
		if call.Method != http.MethodPatch {
			continue
		}
		if strings.Contains(call.Body, `"direction":"UP"`) {
			directions = append(directions, DirectionUp)
		} else {
			directions = append(directions, DirectionDown)
		}
	}
	assert.Equal(t, []string{DirectionUp, DirectionUp, DirectionDown}, directions)
}

func TestSessionTypeMoveReloadsWhenWalkBackFails(t *testing.T) {
	api := newFakeAPI(t)
	srv := newRankedServer()
	srv.register(api)
	c := api.client(t)
	ctx := context.Background()

	list, err := c.SessionTypes.NewList(ctx)
	require.NoError(t, err)

	srv.mu.Lock()
	srv.failCall = func(n int) bool { return n >= 2 }
	srv.mu.Unlock()

	err = list.Move(ctx, 2, 0)
	require.ErrorIs(t, err, ErrPartialMove)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "reorder failed", apiErr.Message)

	assert.Equal(t, []string{"A", "C", "B"}, serverNames(srv))
	assert.Equal(t, serverNames(srv), sessionNames(list.Items()))
}

type notifierStub struct {
	successes []string
	failures  []string
}

func (n *notifierStub) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *notifierStub) Failure(msg string) { n.failures = append(n.failures, msg) }

type ackServer struct {
	mu    sync.Mutex
	items []Acknowledgement
}

func (s *ackServer) register(api *fakeAPI) {
	api.mux.HandleFunc("GET /api/v1/acknowledgement/list", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeEnvelope(w, http.StatusOK, s.items, "")
	})
	api.mux.HandleFunc("POST /api/v1/acknowledgement/create", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		ack := Acknowledgement{ID: "1", Message: r.FormValue("message")}
		s.items = append([]Acknowledgement{ack}, s.items...)
		writeEnvelope(w, http.StatusCreated, ack, "created")
	})
	api.mux.HandleFunc("PUT /api/v1/acknowledgement/update/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := range s.items {
			if s.items[i].ID == r.PathValue("id") {
				s.items[i].Message = r.FormValue("message")
				writeEnvelope(w, http.StatusOK, s.items[i], "updated")
				return
			}
		}
		writeEnvelope(w, http.StatusNotFound, nil, "acknowledgement not found")
	})
}

func TestAcknowledgementSubmitCreatesWhenNoneExists(t *testing.T) {
	api := newFakeAPI(t)
	(&ackServer{}).register(api)
	c := api.client(t)
	notifier := &notifierStub{}
	form := c.Acknowledgements.NewForm(notifier)

	saved, err := form.Submit(context.Background(), Submission{Message: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", saved.Message)

	var methods []string
	for _, call := range api.recorded() {
		methods = append(methods, call.Method+" "+call.Path)
	}
	assert.Equal(t, []string{
		"GET /api/v1/acknowledgement/list",
		"POST /api/v1/acknowledgement/create",
		"GET /api/v1/acknowledgement/list",
	}, methods)
	assert.Equal(t, []string{"Acknowledgement created successfully"}, notifier.successes)
	require.NotEmpty(t, form.Data())
	assert.Equal(t, "Hello", form.Data()[0].Message)
}

func TestAcknowledgementSubmitUpdatesLatest(t *testing.T) {
	api := newFakeAPI(t)
	(&ackServer{items: []Acknowledgement{{ID: "5", Message: "Old"}, {ID: "4", Message: "Older"}}}).register(api)
	c := api.client(t)
	notifier := &notifierStub{}
	form := c.Acknowledgements.NewForm(notifier)

	_, err := form.Submit(context.Background(), Submission{Message: "New", File: &File{Name: "note.txt", Content: strings.NewReader("hi")}})
	require.NoError(t, err)

	for _, call := range api.recorded() {
		assert.NotEqual(t, "/api/v1/acknowledgement/create", call.Path)
	}
	calls := api.recorded()
	assert.Equal(t, "/api/v1/acknowledgement/update/5", calls[1].Path)
	assert.Contains(t, calls[1].Body, `filename="note.txt"`)
	assert.Equal(t, "New", form.Data()[0].Message)
	assert.Equal(t, []string{"Acknowledgement updated successfully"}, notifier.successes)
}

func TestAcknowledgementSubmitReportsFailure(t *testing.T) {
	api := newFakeAPI(t)
	api.mux.HandleFunc("GET /api/v1/acknowledgement/list", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, nil, "token expired")
	})
	notifier := &notifierStub{}
	form := api.client(t).Acknowledgements.NewForm(notifier)

	_, err := form.Submit(context.Background(), Submission{Message: "Hello"})
	require.Error(t, err)
	assert.Equal(t, []string{"token expired"}, notifier.failures)
	assert.Empty(t, notifier.successes)
}
