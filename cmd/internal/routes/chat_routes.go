package routes

import (
	"calendarbot/cmd/internal/service"
	"calendarbot/cmd/internal/utils"
	"calendarbot/cmd/internal/utils/apierror"
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

const FrontendHTTP = "http"

type ChatService interface {
	Chat(ctx context.Context, frontend string, req *service.ChatRequest, sessionID string) (*service.ChatResponse, apierror.ErrorResponse)
	GetHistory(ctx context.Context, sessionID string) (*service.HistoryResponse, apierror.ErrorResponse)
	ClearHistory(ctx context.Context, sessionID string) apierror.ErrorResponse
}

type DefaultChatRoute struct {
	ChatService ChatService
}

func NewChatDefault(chatService ChatService) *DefaultChatRoute {
	return &DefaultChatRoute{ChatService: chatService}
}

func (r *DefaultChatRoute) Chat(c echo.Context) error {
	var req service.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidSessionError)
	}

	resp, apierr := r.ChatService.Chat(c.Request().Context(), FrontendHTTP, &req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (r *DefaultChatRoute) GetHistory(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidSessionError)
	}

	resp, apierr := r.ChatService.GetHistory(c.Request().Context(), data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (r *DefaultChatRoute) ClearHistory(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidSessionError)
	}

	if apierr := r.ChatService.ClearHistory(c.Request().Context(), data.Sub); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

// SessionError answers requests whose session token does not verify.
func SessionError(c echo.Context, _ error) error {
	return c.JSON(http.StatusUnauthorized, apierror.InvalidSessionError)
}
