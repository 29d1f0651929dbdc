package db

import "time"

type Submission struct {
	ID        uint      `gorm:"primaryKey"`
	PublicID  string    `gorm:"size:36;uniqueIndex;not null"`
	RoundID   uint      `gorm:"index;not null;uniqueIndex:idx_submissions_round_player"`
	PlayerID  uint      `gorm:"index;not null;uniqueIndex:idx_submissions_round_player"`
	CardID    string    `gorm:"size:36;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
