package db

import "time"

type Card struct {
	ID        uint      `gorm:"primaryKey"`
	PublicID  string    `gorm:"size:36;uniqueIndex;not null"`
	Content   string    `gorm:"size:512;not null"`
	Language  string    `gorm:"size:8;not null;default:'tr';index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
