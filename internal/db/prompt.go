package db

import "time"

type Prompt struct {
	ID        uint      `gorm:"primaryKey"`
	Text      string    `gorm:"size:280;not null;uniqueIndex:idx_prompts_language_text"`
	Language  string    `gorm:"size:8;not null;default:'tr';uniqueIndex:idx_prompts_language_text"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
