package models

import "time"

// Category and Genre are the two slug-addressed reference entities.
// They deliberately share the same shape; repositories and services
// over them are generic (see repository.RefRepository).

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	Name string `gorm:"type:varchar(256);not null;index" json:"name"`
	Slug string `gorm:"type:varchar(50);uniqueIndex;not null" json:"slug"`
}

type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	Name string `gorm:"type:varchar(256);not null;index" json:"name"`
	Slug string `gorm:"type:varchar(50);uniqueIndex;not null" json:"slug"`
}

type Title struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(256);not null;index" json:"name"`
	Year        int    `gorm:"not null;index" json:"year"`
	Description string `gorm:"type:text" json:"description"`

	// Deleting a category keeps its titles, with category nulled out.
	CategoryID *uint     `gorm:"index" json:"-"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category"`

	Genres []Genre `gorm:"many2many:title_genres;constraint:OnDelete:CASCADE" json:"genre"`

	// Rating is the mean review score, filled by the aggregate query on
	// reads. Not a column.
	Rating *float64 `gorm:"->;-:migration" json:"rating"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TitleGenre mirrors the many2many join table so the seed command can
// load association rows straight from CSV.
type TitleGenre struct {
	TitleID uint `gorm:"primaryKey"`
	GenreID uint `gorm:"primaryKey"`
}

func (TitleGenre) TableName() string {
	return "title_genres"
}
