package service

import (
	"calendarbot/cmd/internal/assistant"
	"calendarbot/cmd/internal/history"
	"calendarbot/cmd/internal/tools"
	"calendarbot/cmd/internal/utils/apierror"
	"calendarbot/cmd/internal/utils/validators"
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssistant struct {
	reply    *assistant.Reply
	err      error
	turns    []history.Turn
	forgot   []string
	lastText string
}

func (f *fakeAssistant) Reply(_ context.Context, _ string, text string) (*assistant.Reply, error) {
	f.lastText = text
	return f.reply, f.err
}

func (f *fakeAssistant) History(context.Context, string) ([]history.Turn, error) {
	return f.turns, f.err
}

func (f *fakeAssistant) Forget(_ context.Context, id string) error {
	f.forgot = append(f.forgot, id)
	return f.err
}

type turnLog []string

func (l *turnLog) ChatTurn(frontend, status string) { *l = append(*l, frontend+":"+status) }

func TestChatService_Chat(t *testing.T) {
	fake := &fakeAssistant{reply: &assistant.Reply{Text: "Booked.", Intent: assistant.IntentCreate, Outcome: tools.OutcomeCreated}}
	turns := &turnLog{}
	svc := NewChatService(fake, validators.New(), turns)

	resp, apierr := svc.Chat(context.Background(), "http", &ChatRequest{Input: "  book the dentist  "}, "s1")
	require.Nil(t, apierr)
	assert.Equal(t, &ChatResponse{Output: "Booked.", Intent: "create_appointment", Outcome: "created", SessionID: "s1"}, resp)
	assert.Equal(t, "book the dentist", fake.lastText)
	assert.Equal(t, []string{"http:ok"}, []string(*turns))
}

func TestChatService_ChatErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		err    error
		want   apierror.ErrorResponse
		status string
	}{
		{name: "blank", input: "   ", want: apierror.MissingInputError},
		{name: "model", input: "hi", err: errors.New("connection refused"), want: apierror.UpstreamModelError, status: "error"},
		{name: "history", input: "hi", err: &history.StoreError{Op: "load", SessionID: "s", Err: errors.New("locked")}, want: apierror.InternalServerError, status: "error"},
		{name: "canceled", input: "hi", err: fmt.Errorf("classify intent: %w", context.Canceled), want: apierror.ClientClosedRequestError, status: "canceled"},
		{name: "deadline", input: "hi", err: fmt.Errorf("respond: %w", context.DeadlineExceeded), want: apierror.TimeoutError, status: "timeout"},
		{name: "canceled history read", input: "hi", err: &history.StoreError{Op: "load", SessionID: "s", Err: context.Canceled}, want: apierror.ClientClosedRequestError, status: "canceled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turns := &turnLog{}
			svc := NewChatService(&fakeAssistant{err: tt.err}, validators.New(), turns)
			_, apierr := svc.Chat(context.Background(), "cli", &ChatRequest{Input: tt.input}, "s")
			assert.Equal(t, tt.want, apierr)
			if tt.status == "" {
				assert.Empty(t, *turns)
			} else {
				assert.Equal(t, []string{"cli:" + tt.status}, []string(*turns))
			}
		})
	}

	long := make([]byte, 4001)
	for i := range long {
		long[i] = 'a'
	}
	svc := NewChatService(&fakeAssistant{}, validators.New(), nil)
	_, apierr := svc.Chat(context.Background(), "cli", &ChatRequest{Input: string(long)}, "s")
	require.NotNil(t, apierr)
	assert.Equal(t, http.StatusBadRequest, apierr.Code())
}

func TestChatService_History(t *testing.T) {
	fake := &fakeAssistant{}
	svc := NewChatService(fake, validators.New(), nil)

	resp, apierr := svc.GetHistory(context.Background(), "s")
	require.Nil(t, apierr)
	assert.NotNil(t, resp.Turns)
	assert.Empty(t, resp.Turns)

	fake.turns = []history.Turn{history.Human("hi"), history.AI("hello")}
	resp, apierr = svc.GetHistory(context.Background(), "s")
	require.Nil(t, apierr)
	assert.Len(t, resp.Turns, 2)

	require.Nil(t, svc.ClearHistory(context.Background(), "s"))
	assert.Equal(t, []string{"s"}, fake.forgot)

	fake.err = errors.New("disk")
	assert.Equal(t, apierror.InternalServerError, svc.ClearHistory(context.Background(), "s"))
}
