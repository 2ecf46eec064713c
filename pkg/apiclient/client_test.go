package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type fakeAPI struct {
	t      *testing.T
	mu     sync.Mutex
	calls  []recordedCall
	mux    *http.ServeMux
	server *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{t: t, mux: http.NewServeMux()}
	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		api.mu.Lock()
		api.calls = append(api.calls, recordedCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
		api.mu.Unlock()
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		api.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(api.server.Close)
	return api
}

func (a *fakeAPI) client(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := New(a.server.URL+"/api/v1", opts...)
	require.NoError(t, err)
	return c
}

func (a *fakeAPI) recorded() []recordedCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]recordedCall(nil), a.calls...)
}

func writeEnvelope(w http.ResponseWriter, status int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data, "message": message, "status": status})
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New("not a url")
	require.Error(t, err)
}

func TestClientSendsBearerToken(t *testing.T) {
	api := newFakeAPI(t)
	var auth string
	api.mux.HandleFunc("GET /api/v1/sessionType/list", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeEnvelope(w, http.StatusOK, []SessionType{}, "")
	})

	_, err := api.client(t, WithToken("abc"), WithTimeout(5*time.Second)).SessionTypes.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", auth)
}

func TestErrorMessageFallback(t *testing.T) {
	api := newFakeAPI(t)
	api.mux.HandleFunc("GET /api/v1/sample-plan/list", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusConflict, nil, "plan already exists")
	})
	api.mux.HandleFunc("GET /api/v1/sessionType/list", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream down</html>"))
	})
	c := api.client(t)

	_, err := c.SamplePlans.List(context.Background(), PlanFilter{})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "plan already exists", apiErr.Message)
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	_, err = c.SessionTypes.List(context.Background())
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
	assert.True(t, IsStatus(err, http.StatusBadGateway))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestErrorMessageGenericFallback(t *testing.T) {
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 599, Body: io.NopCloser(strings.NewReader("")), Header: http.Header{}}, nil
	})}
	c, err := New("http://example.invalid/api/v1", WithHTTPClient(hc))
	require.NoError(t, err)

	_, err = c.SessionTypes.List(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Something went wrong", apiErr.Message)

	failing := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})}
	c, err = New("http://example.invalid/api/v1", WithHTTPClient(failing))
	require.NoError(t, err)
	_, err = c.SessionTypes.List(context.Background())
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Something went wrong", apiErr.Message)
}

func TestTimeoutIgnoresOptionOrderAndKeepsCallerClient(t *testing.T) {
	shared := &http.Client{}

	c, err := New("http://example.invalid/api/v1", WithTimeout(5*time.Second), WithHTTPClient(shared))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.Zero(t, shared.Timeout)
	assert.NotSame(t, shared, c.httpClient)

	c, err = New("http://example.invalid/api/v1", WithHTTPClient(shared))
	require.NoError(t, err)
	assert.Equal(t, defaultTimeout, c.httpClient.Timeout)
	assert.Zero(t, shared.Timeout)

	c, err = New("http://example.invalid/api/v1", WithHTTPClient(&http.Client{Timeout: time.Second}))
	require.NoError(t, err)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
}

func TestQueryStripsEmptyValues(t *testing.T) {
	empty := ""
	course := "c-1"
	values := Query(map[string]interface{}{
		"course_id": &course,
		"iqa_id":    "",
		"learner":   nil,
		"term":      (*string)(nil),
		"blank":     &empty,
		"active":    false,
		"limit":     10,
	})
	assert.Equal(t, "active=false&course_id=c-1&limit=10", values.Encode())
}

func TestListPlansOmitsEmptyFilters(t *testing.T) {
	api := newFakeAPI(t)
	api.mux.HandleFunc("GET /api/v1/sample-plan/list", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, []SamplePlan{{ID: "p1", CourseID: "c1"}}, "")
	})
	c := api.client(t)

	_, err := c.SamplePlans.List(context.Background(), PlanFilter{CourseID: "c1", IQAID: ""})
	require.NoError(t, err)
	c.Invalidate(TagSamplePlans)
	_, err = c.SamplePlans.List(context.Background(), PlanFilter{})
	require.NoError(t, err)

	calls := api.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, "course_id=c1", calls[0].Query)
	assert.NotContains(t, calls[0].Query, "iqa_id")
	assert.Equal(t, "", calls[1].Query)
}

func TestTagCacheServesUntilMutation(t *testing.T) {
	api := newFakeAPI(t)
	api.mux.HandleFunc("GET /api/v1/sample-plan/list", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, []SamplePlan{{ID: "p1"}}, "")
	})
	api.mux.HandleFunc("DELETE /api/v1/sample-plan/remove-sampled-learner/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, nil, "removed")
	})
	c := api.client(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		plans, err := c.SamplePlans.List(ctx, PlanFilter{})
		require.NoError(t, err)
		require.Len(t, plans, 1)
	}
	require.NoError(t, c.SamplePlans.RemoveSampledLearner(ctx, "d 1"))
	_, err := c.SamplePlans.List(ctx, PlanFilter{})
	require.NoError(t, err)

	calls := api.recorded()
	require.Len(t, calls, 3)
	assert.Equal(t, "/api/v1/sample-plan/remove-sampled-learner/d 1", calls[1].Path)
}

func TestUpdateDetailSendsOnlySetFields(t *testing.T) {
	api := newFakeAPI(t)
	api.mux.HandleFunc("PATCH /api/v1/sample-plan/deatil/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, PlanDetail{ID: r.PathValue("id"), Feedback: "x"}, "")
	})
	c := api.client(t)
	feedback := "x"

	detail, err := c.SamplePlans.UpdateDetail(context.Background(), "d1", DetailUpdate{Feedback: &feedback})
	require.NoError(t, err)
	assert.Equal(t, "d1", detail.ID)

	calls := api.recorded()
	require.Len(t, calls, 1)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(calls[0].Body), &body))
	assert.Equal(t, map[string]interface{}{"feedback": "x"}, body)
}
