package service

import (
	"calendarbot/cmd/internal/assistant"
	"calendarbot/cmd/internal/history"
	"calendarbot/cmd/internal/utils"
	"calendarbot/cmd/internal/utils/apierror"
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type ChatAssistant interface {
	Reply(ctx context.Context, sessionID, text string) (*assistant.Reply, error)
	History(ctx context.Context, sessionID string) ([]history.Turn, error)
	Forget(ctx context.Context, sessionID string) error
}

// TurnRecorder counts finished chat turns per front end.
type TurnRecorder interface {
	ChatTurn(frontend, status string)
}

type ChatRequest struct {
	Input string `json:"input" validate:"required,notblank,max=4000"`
}

type ChatResponse struct {
	Output    string `json:"output"`
	Intent    string `json:"intent"`
	Outcome   string `json:"outcome"`
	SessionID string `json:"session_id"`
}

type HistoryResponse struct {
	SessionID string         `json:"session_id"`
	Turns     []history.Turn `json:"turns"`
}

type DefaultChatService struct {
	Assistant ChatAssistant
	Validate  *validator.Validate
	Recorder  TurnRecorder
}

func NewChatService(asst ChatAssistant, validate *validator.Validate, recorder TurnRecorder) *DefaultChatService {
	return &DefaultChatService{Assistant: asst, Validate: validate, Recorder: recorder}
}

// Chat answers one message. frontend labels the turn in metrics.
func (s *DefaultChatService) Chat(ctx context.Context, frontend string, req *ChatRequest, sessionID string) (*ChatResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if req.Input == "" {
		return nil, apierror.MissingInputError
	}
	if valerr := s.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	reply, err := s.Assistant.Reply(ctx, sessionID, req.Input)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			s.record(frontend, "canceled")
			log.Warnf("chat turn canceled for session %s: %v", sessionID, err)
			return nil, apierror.ClientClosedRequestError
		case errors.Is(err, context.DeadlineExceeded):
			s.record(frontend, "timeout")
			log.Warnf("chat turn timed out for session %s: %v", sessionID, err)
			return nil, apierror.TimeoutError
		}

		s.record(frontend, "error")
		var storeErr *history.StoreError
		if errors.As(err, &storeErr) {
			log.Errorf("chat history unavailable for session %s: %v", sessionID, err)
			return nil, apierror.InternalServerError
		}
		log.Errorf("chat turn failed for session %s: %v", sessionID, err)
		return nil, apierror.UpstreamModelError
	}

	s.record(frontend, "ok")
	return &ChatResponse{
		Output:    reply.Text,
		Intent:    string(reply.Intent),
		Outcome:   string(reply.Outcome),
		SessionID: sessionID,
	}, nil
}

func (s *DefaultChatService) GetHistory(ctx context.Context, sessionID string) (*HistoryResponse, apierror.ErrorResponse) {
	turns, err := s.Assistant.History(ctx, sessionID)
	if err != nil {
		log.Errorf("failed to load history for session %s: %v", sessionID, err)
		return nil, apierror.InternalServerError
	}
	if turns == nil {
		turns = []history.Turn{}
	}
	return &HistoryResponse{SessionID: sessionID, Turns: turns}, nil
}

func (s *DefaultChatService) ClearHistory(ctx context.Context, sessionID string) apierror.ErrorResponse {
	if err := s.Assistant.Forget(ctx, sessionID); err != nil {
		log.Errorf("failed to clear history for session %s: %v", sessionID, err)
		return apierror.InternalServerError
	}
	return nil
}

func (s *DefaultChatService) record(frontend, status string) {
	if s.Recorder != nil {
		s.Recorder.ChatTurn(frontend, status)
	}
}
