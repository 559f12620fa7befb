package history

import (
	"calendarbot/cmd/internal/domain/entity"
	"context"
)

type ChatRepository interface {
	FindBySession(ctx context.Context, sessionID string) ([]*entity.ChatMessage, error)
	SaveAll(ctx context.Context, msgs []*entity.ChatMessage) error
	DeleteBySession(ctx context.Context, sessionID string) error
}

// SQLStore keeps turns in the chat_messages table.
type SQLStore struct {
	repo ChatRepository
}

func NewSQLStore(repo ChatRepository) *SQLStore {
	return &SQLStore{repo: repo}
}

func (s *SQLStore) Get(ctx context.Context, sessionID string) ([]Turn, error) {
	msgs, err := s.repo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	turns := make([]Turn, len(msgs))
	for i, m := range msgs {
		turns[i] = Turn{Role: Role(m.Role), Content: m.Content}
	}
	return turns, nil
}

func (s *SQLStore) Append(ctx context.Context, sessionID string, turns ...Turn) error {
	msgs := make([]*entity.ChatMessage, len(turns))
	for i, t := range turns {
		msgs[i] = &entity.ChatMessage{SessionID: sessionID, Role: string(t.Role), Content: t.Content}
	}
	return s.repo.SaveAll(ctx, msgs)
}

func (s *SQLStore) Clear(ctx context.Context, sessionID string) error {
	return s.repo.DeleteBySession(ctx, sessionID)
}
