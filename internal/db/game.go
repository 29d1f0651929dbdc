package db

import "time"

type Game struct {
	ID           uint       `gorm:"primaryKey"`
	Code         string     `gorm:"size:12;uniqueIndex;not null"`
	HostPlayerID string     `gorm:"size:64;not null"`
	Status       string     `gorm:"size:32;not null"`
	CurrentRound int        `gorm:"not null;default:0"`
	MaxRounds    int        `gorm:"not null;default:7"`
	StartedAt    *time.Time `gorm:""`
	FinishedAt   *time.Time `gorm:""`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
	Players      []Player
	Rounds       []Round
	Events       []Event
}
