package db

import "time"

type GameHistory struct {
	ID              uint      `gorm:"primaryKey"`
	GameID          uint      `gorm:"uniqueIndex;not null"`
	ChampionID      uint      `gorm:"index;not null"`
	TotalPlayers    int       `gorm:"not null"`
	TotalRounds     int       `gorm:"not null"`
	DurationMinutes int       `gorm:"not null;default:0"`
	CreatedAt       time.Time `gorm:"not null"`
}
