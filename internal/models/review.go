package models

import (
	"time"

	"github.com/google/uuid"
)

// Review score bounds, inclusive.
const (
	MinScore = 1
	MaxScore = 10
)

type Review struct {
	ID       uint      `gorm:"primaryKey"`
	TitleID  uint      `gorm:"not null;uniqueIndex:idx_reviews_author_title"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_author_title"`
	Text     string    `gorm:"type:text;not null"`
	Score    int       `gorm:"not null"`

	CreatedAt time.Time `gorm:"index"`

	Title  Title `gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE"`
	Author User  `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

type Comment struct {
	ID       uint      `gorm:"primaryKey"`
	ReviewID uint      `gorm:"not null;index"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index"`
	Text     string    `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"index"`

	Review Review `gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE"`
	Author User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}
