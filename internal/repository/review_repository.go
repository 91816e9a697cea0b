package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rateworks/critica/internal/models"
	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// ListByTitle returns a page of the title's reviews, newest first, plus the
// unpaginated count.
func (r *ReviewRepository) ListByTitle(titleID uint, limit, offset int) ([]*models.Review, int64, error) {
	q := r.db.Model(&models.Review{}).Where("title_id = ?", titleID)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var reviews []*models.Review
	err := q.Preload("Author").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, count, nil
}

// GetByID resolves a review scoped to its title, so a review id reached
// through the wrong title path reads as not found.
func (r *ReviewRepository) GetByID(titleID, id uint) (*models.Review, error) {
	var review models.Review
	err := r.db.Preload("Author").
		Where("id = ? AND title_id = ?", id, titleID).
		First(&review).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &review, nil
}

// ExistsByAuthorAndTitle backs the one-review-per-user pre-check. The
// composite unique index remains the authority under concurrency.
func (r *ReviewRepository) ExistsByAuthorAndTitle(authorID uuid.UUID, titleID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Review{}).
		Where("author_id = ? AND title_id = ?", authorID, titleID).
		Count(&count).Error
	return count > 0, err
}

func (r *ReviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

func (r *ReviewRepository) Update(review *models.Review) error {
	return r.db.Omit("Author", "Title").Save(review).Error
}

func (r *ReviewRepository) Delete(id uint) error {
	return r.db.Delete(&models.Review{}, id).Error
}
