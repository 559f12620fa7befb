package repository

import (
	"calendarbot/cmd/internal/domain/entity"
	"calendarbot/cmd/internal/utils"
	"context"

	"gorm.io/gorm"
)

type DefaultChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *DefaultChatRepository {
	return &DefaultChatRepository{db: db}
}

// FindBySession returns the messages of a session in insertion order.
func (c *DefaultChatRepository) FindBySession(ctx context.Context, sessionID string) ([]*entity.ChatMessage, error) {
	var msgs []*entity.ChatMessage
	err := c.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id asc").
		Find(&msgs).Error
	return msgs, err
}

// SaveAll inserts msgs in one transaction so a turn is stored whole or not at all.
func (c *DefaultChatRepository) SaveAll(ctx context.Context, msgs []*entity.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	now := utils.NowUTC()
	for _, m := range msgs {
		if m.CreatedAt == 0 {
			m.CreatedAt = now
		}
	}
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&msgs).Error
	})
}

func (c *DefaultChatRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	return c.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&entity.ChatMessage{}).Error
}
