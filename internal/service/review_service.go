package service

import (
	"errors"
	"fmt"

	"github.com/rateworks/critica/internal/models"
	"github.com/rateworks/critica/internal/repository"
	"github.com/rateworks/critica/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReviewUpdate carries a partial update; nil fields stay untouched.
type ReviewUpdate struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

type ReviewService struct {
	reviewRepo *repository.ReviewRepository
	titleRepo  *repository.TitleRepository
}

func NewReviewService(reviewRepo *repository.ReviewRepository, titleRepo *repository.TitleRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, titleRepo: titleRepo}
}

func (s *ReviewService) ListByTitle(titleID uint, limit, offset int) ([]*models.Review, int64, error) {
	if err := s.requireTitle(titleID); err != nil {
		return nil, 0, err
	}
	return s.reviewRepo.ListByTitle(titleID, limit, offset)
}

func (s *ReviewService) Get(titleID, reviewID uint) (*models.Review, error) {
	if err := s.requireTitle(titleID); err != nil {
		return nil, err
	}
	review, err := s.reviewRepo.GetByID(titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrNotFound
	}
	return review, nil
}

// Create inserts the caller's review of a title. The existence pre-check
// gives friendly errors on the common path; the composite unique index
// decides the race when two requests from the same author arrive at once,
// so at most one insert ever lands.
func (s *ReviewService) Create(titleID uint, author *models.User, text string, score int) (*models.Review, error) {
	if err := s.requireTitle(titleID); err != nil {
		return nil, err
	}
	if err := validateReview(text, score); err != nil {
		return nil, err
	}

	exists, err := s.reviewRepo.ExistsByAuthorAndTitle(author.ID, titleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrReviewExists
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: author.ID,
		Text:     text,
		Score:    score,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race to a concurrent insert by the same author.
			return nil, ErrReviewExists
		}
		logger.Log.Error("Failed to create review",
			zap.Uint("title_id", titleID),
			zap.String("author_id", author.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Review created",
		zap.Uint("review_id", review.ID),
		zap.Uint("title_id", titleID),
		zap.String("author_id", author.ID.String()),
	)

	return s.reviewRepo.GetByID(titleID, review.ID)
}

func (s *ReviewService) Update(titleID, reviewID uint, upd ReviewUpdate) (*models.Review, error) {
	review, err := s.Get(titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if upd.Text != nil {
		review.Text = *upd.Text
	}
	if upd.Score != nil {
		review.Score = *upd.Score
	}
	if err := validateReview(review.Text, review.Score); err != nil {
		return nil, err
	}

	if err := s.reviewRepo.Update(review); err != nil {
		logger.Log.Error("Failed to update review",
			zap.Uint("review_id", reviewID),
			zap.Error(err),
		)
		return nil, err
	}

	return review, nil
}

func (s *ReviewService) Delete(titleID, reviewID uint) error {
	review, err := s.Get(titleID, reviewID)
	if err != nil {
		return err
	}

	if err := s.reviewRepo.Delete(review.ID); err != nil {
		logger.Log.Error("Failed to delete review",
			zap.Uint("review_id", reviewID),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Review deleted", zap.Uint("review_id", reviewID))

	return nil
}

func (s *ReviewService) requireTitle(titleID uint) error {
	exists, err := s.titleRepo.Exists(titleID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("title %d: %w", titleID, ErrNotFound)
	}
	return nil
}

func validateReview(text string, score int) error {
	verr := &ValidationError{}

	if text == "" {
		verr.add("text", "text is required")
	}
	if score < models.MinScore || score > models.MaxScore {
		verr.add("score", fmt.Sprintf("score must be between %d and %d", models.MinScore, models.MaxScore))
	}

	return verr.orNil()
}
