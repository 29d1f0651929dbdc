package db

import "time"

type Round struct {
	ID             uint      `gorm:"primaryKey"`
	GameID         uint      `gorm:"index;not null;uniqueIndex:idx_rounds_game_number"`
	Number         int       `gorm:"not null;uniqueIndex:idx_rounds_game_number"`
	PromptText     string    `gorm:"size:280;not null"`
	Status         string    `gorm:"size:32;not null"`
	WinnerPlayerID *uint     `gorm:"index"`
	EndedAt        *time.Time
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
	Submissions    []Submission
	Votes          []Vote
}
