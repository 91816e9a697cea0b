package repository

import (
	"errors"
	"strings"

	"github.com/rateworks/critica/internal/models"
	"gorm.io/gorm"
)

// Ref constrains the slug-addressed reference entities. Category and Genre
// share every behavior, so one parameterized repository serves both.
type Ref interface {
	models.Category | models.Genre
}

type RefRepository[T Ref] struct {
	db *gorm.DB
}

func NewRefRepository[T Ref](db *gorm.DB) *RefRepository[T] {
	return &RefRepository[T]{db: db}
}

// List returns a page ordered by name, optionally filtered by a
// case-insensitive name substring, plus the unpaginated match count.
func (r *RefRepository[T]) List(search string, limit, offset int) ([]T, int64, error) {
	q := r.db.Model(new(T))
	if search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var entities []T
	err := q.Order("name").Limit(limit).Offset(offset).Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}

	return entities, count, nil
}

func (r *RefRepository[T]) GetBySlug(slug string) (*T, error) {
	var entity T
	err := r.db.Where("slug = ?", slug).First(&entity).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &entity, nil
}

func (r *RefRepository[T]) Create(entity *T) error {
	return r.db.Create(entity).Error
}

// Rename updates the name of the entity addressed by slug and reports
// whether it existed.
func (r *RefRepository[T]) Rename(slug, name string) (bool, error) {
	res := r.db.Model(new(T)).Where("slug = ?", slug).Update("name", name)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the entity addressed by slug and reports whether it
// existed.
func (r *RefRepository[T]) Delete(slug string) (bool, error) {
	res := r.db.Where("slug = ?", slug).Delete(new(T))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
