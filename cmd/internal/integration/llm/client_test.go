package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observed struct {
	stage, status string
}

type fakeObserver struct {
	calls []observed
}

func (f *fakeObserver) LLMRequest(stage, status string, _ time.Duration) {
	f.calls = append(f.calls, observed{stage, status})
}

func newMockServer(t *testing.T, status int, body string, check func(r *http.Request, req chatRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if check != nil {
			check(r, req)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComplete_Success(t *testing.T) {
	srv := newMockServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"create_appointment"}}]}`,
		func(r *http.Request, req chatRequest) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			assert.Equal(t, "test-model", req.Model)
			assert.Zero(t, req.Temperature)
			assert.Nil(t, req.ResponseFormat)
			require.Len(t, req.Messages, 2)
			assert.Equal(t, RoleSystem, req.Messages[0].Role)
		})

	obs := &fakeObserver{}
	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL + "/", Model: "test-model"}, obs)

	out, err := c.Complete(context.Background(), &Prompt{
		Stage: "classify",
		Messages: []Message{
			{Role: RoleSystem, Content: "classify"},
			{Role: RoleUser, Content: "book a dentist"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "create_appointment", out)
	assert.Equal(t, []observed{{"classify", "ok"}}, obs.calls)
}

func TestComplete_SchemaRequestsJSON(t *testing.T) {
	srv := newMockServer(t, http.StatusOK, `{"choices":[{"message":{"content":"{}"}}]}`,
		func(_ *http.Request, req chatRequest) {
			require.NotNil(t, req.ResponseFormat)
			assert.Equal(t, "json_object", req.ResponseFormat.Type)
		})

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	out, err := c.Complete(context.Background(), &Prompt{Stage: "extract", Schema: &Schema{Name: "x"}})
	require.NoError(t, err)
	assert.Equal(t, "{}", out)
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "non 200",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"message":"slow down"}}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
			},
		},
		{
			name:   "empty choices",
			status: http.StatusOK,
			body:   `{"choices":[]}`,
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, "empty choices in response")
			},
		},
		{
			name:   "error body",
			status: http.StatusOK,
			body:   `{"error":{"message":"bad model"}}`,
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, "API error: bad model")
			},
		},
		{
			name:   "not json",
			status: http.StatusOK,
			body:   `<html>`,
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "unmarshal response")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newMockServer(t, tt.status, tt.body, nil)
			obs := &fakeObserver{}
			c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, obs)

			_, err := c.Complete(context.Background(), &Prompt{Stage: "respond"})
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, []observed{{"respond", "error"}}, obs.calls)
		})
	}
}

func TestComplete_MissingKey(t *testing.T) {
	c := NewClient(Config{}, nil)
	_, err := c.Complete(context.Background(), &Prompt{Stage: "classify"})
	assert.EqualError(t, err, "language model API key is not set")
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{APIKey: "k"}, nil)
	assert.Equal(t, DefaultBaseURL, c.cfg.BaseURL)
	assert.Equal(t, DefaultModel, c.cfg.Model)
	assert.Equal(t, 60*time.Second, c.http.Timeout)
}
