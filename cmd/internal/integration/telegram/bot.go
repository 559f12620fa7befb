package telegram

import (
	"calendarbot/cmd/internal/service"
	"calendarbot/cmd/internal/utils/apierror"
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const (
	Frontend = "telegram"

	greeting = "Hi! I manage your calendar. Ask me to book, move or list appointments, " +
		"e.g. \"Book a dentist appointment on June 5 from 3pm to 4pm\"."
	resetDone   = "Conversation cleared."
	failureText = "Sorry, I could not process that right now. Please try again later."
)

type ChatService interface {
	Chat(ctx context.Context, frontend string, req *service.ChatRequest, sessionID string) (*service.ChatResponse, apierror.ErrorResponse)
	ClearHistory(ctx context.Context, sessionID string) apierror.ErrorResponse
}

type sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Controller feeds Telegram messages into the chat service. Each chat is its
// own session.
type Controller struct {
	chat   ChatService
	logger *zap.Logger
}

func NewController(chat ChatService, logger *zap.Logger) *Controller {
	return &Controller{chat: chat, logger: logger}
}

// SessionID is the history key of a Telegram chat.
func SessionID(chatID int64) string {
	return fmt.Sprintf("telegram:%d", chatID)
}

// New creates the bot with the controller's handlers registered.
func New(token string, c *Controller) (*bot.Bot, error) {
	b, err := bot.New(token, bot.WithDefaultHandler(c.HandleMessage))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.HandleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/reset", bot.MatchTypeExact, c.HandleReset)
	return b, nil
}

func (c *Controller) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	c.reply(ctx, b, update.Message.Chat.ID, greeting)
}

func (c *Controller) HandleReset(ctx context.Context, b *bot.Bot, update *models.Update) {
	c.handleReset(ctx, b, update)
}

func (c *Controller) HandleMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	c.handleMessage(ctx, b, update)
}

func (c *Controller) handleReset(ctx context.Context, s sender, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	if apierr := c.chat.ClearHistory(ctx, SessionID(chatID)); apierr != nil {
		c.logger.Error("failed to clear chat history", zap.Int64("chat_id", chatID), zap.Error(apierr))
		c.reply(ctx, s, chatID, failureText)
		return
	}
	c.reply(ctx, s, chatID, resetDone)
}

func (c *Controller) handleMessage(ctx context.Context, s sender, update *models.Update) {
	if update.Message == nil {
		return
	}
	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		return
	}

	chatID := update.Message.Chat.ID
	resp, apierr := c.chat.Chat(ctx, Frontend, &service.ChatRequest{Input: text}, SessionID(chatID))
	if apierr != nil {
		c.logger.Warn("chat turn failed",
			zap.Int64("chat_id", chatID),
			zap.Int("code", apierr.Code()),
			zap.Error(apierr))
		c.reply(ctx, s, chatID, failureText)
		return
	}

	c.logger.Debug("chat turn",
		zap.Int64("chat_id", chatID),
		zap.String("intent", resp.Intent),
		zap.String("outcome", resp.Outcome))
	c.reply(ctx, s, chatID, resp.Output)
}

func (c *Controller) reply(ctx context.Context, s sender, chatID int64, text string) {
	_, err := s.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		c.logger.Error("failed to send telegram message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
