package service

import (
	"fmt"

	"github.com/rateworks/critica/internal/models"
	"github.com/rateworks/critica/internal/repository"
	"github.com/rateworks/critica/pkg/logger"
	"go.uber.org/zap"
)

// CommentUpdate carries a partial update; nil fields stay untouched.
type CommentUpdate struct {
	Text *string `json:"text"`
}

type CommentService struct {
	commentRepo *repository.CommentRepository
	reviewRepo  *repository.ReviewRepository
	titleRepo   *repository.TitleRepository
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	reviewRepo *repository.ReviewRepository,
	titleRepo *repository.TitleRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
		titleRepo:   titleRepo,
	}
}

// requireReview resolves the review scoped to the title path it was
// reached through; a review id under the wrong title is not found.
func (s *CommentService) requireReview(titleID, reviewID uint) (*models.Review, error) {
	exists, err := s.titleRepo.Exists(titleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("title %d: %w", titleID, ErrNotFound)
	}

	review, err := s.reviewRepo.GetByID(titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, fmt.Errorf("review %d: %w", reviewID, ErrNotFound)
	}
	return review, nil
}

func (s *CommentService) ListByReview(titleID, reviewID uint, limit, offset int) ([]*models.Comment, int64, error) {
	review, err := s.requireReview(titleID, reviewID)
	if err != nil {
		return nil, 0, err
	}
	return s.commentRepo.ListByReview(review.ID, limit, offset)
}

func (s *CommentService) Get(titleID, reviewID, commentID uint) (*models.Comment, error) {
	review, err := s.requireReview(titleID, reviewID)
	if err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(review.ID, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrNotFound
	}
	return comment, nil
}

func (s *CommentService) Create(titleID, reviewID uint, author *models.User, text string) (*models.Comment, error) {
	review, err := s.requireReview(titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, invalid("text", "text is required")
	}

	comment := &models.Comment{
		ReviewID: review.ID,
		AuthorID: author.ID,
		Text:     text,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		logger.Log.Error("Failed to create comment",
			zap.Uint("review_id", review.ID),
			zap.String("author_id", author.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Comment created",
		zap.Uint("comment_id", comment.ID),
		zap.Uint("review_id", review.ID),
	)

	return s.commentRepo.GetByID(review.ID, comment.ID)
}

func (s *CommentService) Update(titleID, reviewID, commentID uint, upd CommentUpdate) (*models.Comment, error) {
	comment, err := s.Get(titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	if upd.Text != nil {
		if *upd.Text == "" {
			return nil, invalid("text", "text is required")
		}
		comment.Text = *upd.Text
	}

	if err := s.commentRepo.Update(comment); err != nil {
		logger.Log.Error("Failed to update comment",
			zap.Uint("comment_id", commentID),
			zap.Error(err),
		)
		return nil, err
	}

	return comment, nil
}

func (s *CommentService) Delete(titleID, reviewID, commentID uint) error {
	comment, err := s.Get(titleID, reviewID, commentID)
	if err != nil {
		return err
	}

	if err := s.commentRepo.Delete(comment.ID); err != nil {
		logger.Log.Error("Failed to delete comment",
			zap.Uint("comment_id", commentID),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Comment deleted", zap.Uint("comment_id", commentID))

	return nil
}
