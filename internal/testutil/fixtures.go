package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rateworks/critica/internal/models"
	"gorm.io/gorm"
)

// CreateTestUser inserts a confirmed user with the given role.
func CreateTestUser(t *testing.T, db *gorm.DB, username, email string, role models.Role) *models.User {
	user := &models.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Role:      role,
		Confirmed: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user %s: %v", username, err)
	}
	return user
}

// CreateTestCategory inserts a category.
func CreateTestCategory(t *testing.T, db *gorm.DB, name, slug string) *models.Category {
	category := &models.Category{Name: name, Slug: slug}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("Failed to create test category %s: %v", slug, err)
	}
	return category
}

// CreateTestGenre inserts a genre.
func CreateTestGenre(t *testing.T, db *gorm.DB, name, slug string) *models.Genre {
	genre := &models.Genre{Name: name, Slug: slug}
	if err := db.Create(genre).Error; err != nil {
		t.Fatalf("Failed to create test genre %s: %v", slug, err)
	}
	return genre
}

// CreateTestTitle inserts a title, optionally under a category.
func CreateTestTitle(t *testing.T, db *gorm.DB, name string, year int, category *models.Category) *models.Title {
	title := &models.Title{Name: name, Year: year}
	if category != nil {
		title.CategoryID = &category.ID
	}
	if err := db.Create(title).Error; err != nil {
		t.Fatalf("Failed to create test title %s: %v", name, err)
	}
	return title
}

// CreateTestReview inserts a review by the given author.
func CreateTestReview(t *testing.T, db *gorm.DB, title *models.Title, author *models.User, text string, score int) *models.Review {
	review := &models.Review{
		TitleID:  title.ID,
		AuthorID: author.ID,
		Text:     text,
		Score:    score,
	}
	if err := db.Create(review).Error; err != nil {
		t.Fatalf("Failed to create test review: %v", err)
	}
	return review
}

// CreateTestComment inserts a comment by the given author.
func CreateTestComment(t *testing.T, db *gorm.DB, review *models.Review, author *models.User, text string) *models.Comment {
	comment := &models.Comment{
		ReviewID: review.ID,
		AuthorID: author.ID,
		Text:     text,
	}
	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}
	return comment
}
