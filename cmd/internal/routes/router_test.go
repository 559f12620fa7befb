package routes

import (
	"calendarbot/cmd/internal/assistant"
	"calendarbot/cmd/internal/domain/memory"
	"calendarbot/cmd/internal/history"
	"calendarbot/cmd/internal/integration/llm"
	"calendarbot/cmd/internal/metrics"
	"calendarbot/cmd/internal/service"
	"calendarbot/cmd/internal/tools"
	"calendarbot/cmd/internal/utils"
	"calendarbot/cmd/internal/utils/validators"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoModel classifies everything as other and answers with the last user message.
type echoModel struct {
	mu    sync.Mutex
	calls int
}

func (m *echoModel) Complete(_ context.Context, p *llm.Prompt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if p.Stage == "classify" {
		return "other", nil
	}
	return "you said: " + p.Messages[len(p.Messages)-1].Content, nil
}

type testServer struct {
	e      *echo.Echo
	signer *utils.SessionSigner
}

func newTestServer() *testServer {
	validate := validators.New()
	store := memory.NewAppointmentStore()
	m := metrics.New()

	asst := assistant.New(
		&echoModel{},
		tools.NewToolbox(store, tools.OverlapFromModel, m),
		history.NewManager(history.NewMemoryStore(), 10),
		validate,
		assistant.Options{Now: func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }},
	)

	signer := utils.NewSessionSigner("test-secret", time.Hour)
	router := &Router{
		Appointments: NewAppointmentDefault(service.NewAppointmentService(store, store, validate, m)),
		Chat:         NewChatDefault(service.NewChatService(asst, validate, m)),
		Signer:       signer,
		Metrics:      m.Handler(),
	}
	e := echo.New()
	router.Register(e)
	return &testServer{e: e, signer: signer}
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(utils.SessionHeader, token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestChat_SessionLifecycle(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodPost, "/api/chat", `{"input": "hello"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := rec.Header().Get(utils.SessionHeader)
	require.NotEmpty(t, token)

	first := decode[service.ChatResponse](t, rec)
	assert.Equal(t, "you said: hello", first.Output)
	assert.Equal(t, "other", first.Intent)
	assert.NotEmpty(t, first.SessionID)

	rec = s.do(http.MethodPost, "/api/chat", `{"input": "again"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(utils.SessionHeader))
	assert.Equal(t, first.SessionID, decode[service.ChatResponse](t, rec).SessionID)

	rec = s.do(http.MethodGet, "/api/chat/history", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	hist := decode[service.HistoryResponse](t, rec)
	require.Len(t, hist.Turns, 4)
	assert.Equal(t, history.Human("hello"), hist.Turns[0])

	// a fresh caller does not see that history
	rec = s.do(http.MethodGet, "/api/chat/history", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[service.HistoryResponse](t, rec).Turns)

	rec = s.do(http.MethodDelete, "/api/chat/history", "", token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/api/chat/history", "", token)
	assert.Empty(t, decode[service.HistoryResponse](t, rec).Turns)
}

func TestChat_Errors(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodPost, "/api/chat", `{"input": "hi"}`, "forged")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/chat", `{"input": "  "}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Input must not be empty")

	rec = s.do(http.MethodPost, "/api/chat", `{"input": `, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAppointments_Endpoints(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodGet, "/api/appointments", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tools.ListEmpty, decode[service.AppointmentListResponse](t, rec).Status)

	rec = s.do(http.MethodPost, "/api/appointments", `{"date":"2024-06-05","start":"15:00","end":"16:00","description":"dentist"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[service.AppointmentResponse](t, rec)
	assert.Equal(t, 1, created.ID)

	rec = s.do(http.MethodPost, "/api/appointments", `{"date":"2024-06-05","start":"15:30","end":"16:30","description":"clash"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPut, "/api/appointments/1", `{"date":"2024-06-06","start":"09:00","end":"09:30","description":"moved"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-06-06", decode[service.AppointmentResponse](t, rec).Date)

	rec = s.do(http.MethodPut, "/api/appointments/abc", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/api/appointments/9", `{"date":"2024-06-06","start":"11:00","end":"11:30","description":"x"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/calendar?month=2024-06", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cal := decode[service.CalendarResponse](t, rec)
	require.Len(t, cal.ScheduledDays, 1)
	assert.Equal(t, "2024-06-06", cal.ScheduledDays[0].Date)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/calendar", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/calendar?month=june", "", "").Code)
}

func TestRouter_MetricsAndHealth(t *testing.T) {
	s := newTestServer()
	s.do(http.MethodPost, "/api/chat", `{"input": "hello"}`, "")

	rec := s.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `calendarbot_chat_turns_total{frontend="http",status="ok"} 1`)
}
