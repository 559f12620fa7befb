package entity

type ChatMessage struct {
	ID        int    `gorm:"primaryKey;autoIncrement"`
	SessionID string `gorm:"not null;index"`
	Role      string `gorm:"not null"` // human | ai
	Content   string `gorm:"not null"`
	CreatedAt int64  `gorm:"not null"`
}
