package repository

import (
	"errors"
	"strings"

	"github.com/rateworks/critica/internal/models"
	"gorm.io/gorm"
)

// TitleFilter narrows title listings. Zero values mean no filter.
type TitleFilter struct {
	Name     string // case-insensitive substring
	Category string // category slug
	Genre    string // genre slug
	Year     int    // exact release year
}

type TitleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) *TitleRepository {
	return &TitleRepository{db: db}
}

// ratingSelect annotates each row with the mean review score. The aggregate
// is computed per read; no stored rating exists to go stale.
func (r *TitleRepository) ratingSelect() *gorm.DB {
	return r.db.Model(&models.Title{}).
		Select("titles.*, AVG(reviews.score) AS rating").
		Joins("LEFT JOIN reviews ON reviews.title_id = titles.id").
		Group("titles.id")
}

func applyFilter(q *gorm.DB, f TitleFilter) *gorm.DB {
	if f.Name != "" {
		q = q.Where("LOWER(titles.name) LIKE ?", "%"+strings.ToLower(f.Name)+"%")
	}
	if f.Category != "" {
		q = q.Joins("JOIN categories ON categories.id = titles.category_id").
			Where("categories.slug = ?", f.Category)
	}
	if f.Genre != "" {
		q = q.Joins("JOIN title_genres ON title_genres.title_id = titles.id").
			Joins("JOIN genres ON genres.id = title_genres.genre_id").
			Where("genres.slug = ?", f.Genre)
	}
	if f.Year != 0 {
		q = q.Where("titles.year = ?", f.Year)
	}
	return q
}

// List returns a page of titles with category, genres and rating attached,
// newest release year first, plus the unpaginated match count.
func (r *TitleRepository) List(f TitleFilter, limit, offset int) ([]*models.Title, int64, error) {
	var count int64
	countQ := applyFilter(r.db.Model(&models.Title{}), f)
	if err := countQ.Distinct("titles.id").Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var titles []*models.Title
	q := applyFilter(r.ratingSelect(), f).
		Preload("Category").
		Preload("Genres").
		Order("titles.year DESC, titles.name").
		Limit(limit).
		Offset(offset)
	if err := q.Find(&titles).Error; err != nil {
		return nil, 0, err
	}

	return titles, count, nil
}

func (r *TitleRepository) GetByID(id uint) (*models.Title, error) {
	var title models.Title
	err := r.ratingSelect().
		Preload("Category").
		Preload("Genres").
		Where("titles.id = ?", id).
		First(&title).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &title, nil
}

// Exists is the cheap parent check used by the nested review routes.
func (r *TitleRepository) Exists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Title{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *TitleRepository) Create(title *models.Title) error {
	return r.db.Create(title).Error
}

func (r *TitleRepository) Update(title *models.Title) error {
	return r.db.Omit("Genres").Save(title).Error
}

// SetGenres replaces the title's genre associations.
func (r *TitleRepository) SetGenres(title *models.Title, genres []models.Genre) error {
	return r.db.Model(title).Association("Genres").Replace(genres)
}

// Delete removes a title; reviews and their comments go with it via the
// cascading foreign keys.
func (r *TitleRepository) Delete(id uint) (bool, error) {
	res := r.db.Delete(&models.Title{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
