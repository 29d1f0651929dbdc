package db

import "time"

type Player struct {
	ID          uint      `gorm:"primaryKey"`
	GameID      uint      `gorm:"index;not null;uniqueIndex:idx_players_game_user"`
	UserID      string    `gorm:"size:64;not null;uniqueIndex:idx_players_game_user"`
	DisplayName string    `gorm:"size:64;not null"`
	Score       int       `gorm:"not null;default:0"`
	IsHost      bool      `gorm:"not null;default:false"`
	IsConnected bool      `gorm:"not null;default:true"`
	JoinedAt    time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	Submissions []Submission
	Votes       []Vote `gorm:"foreignKey:VoterID"`
}
