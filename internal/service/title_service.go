package service

import (
	"fmt"
	"time"

	"github.com/rateworks/critica/internal/models"
	"github.com/rateworks/critica/internal/repository"
	"github.com/rateworks/critica/pkg/logger"
	"go.uber.org/zap"
)

// TitleInput is the write payload: category and genres arrive as slugs and
// are resolved to rows before the insert.
type TitleInput struct {
	Name        string   `json:"name"`
	Year        int      `json:"year"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Genres      []string `json:"genre"`
}

// TitleUpdate carries a partial update; nil fields stay untouched.
type TitleUpdate struct {
	Name        *string   `json:"name"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genres      *[]string `json:"genre"`
}

type TitleService struct {
	titleRepo    *repository.TitleRepository
	categoryRepo *repository.RefRepository[models.Category]
	genreRepo    *repository.RefRepository[models.Genre]
}

func NewTitleService(
	titleRepo *repository.TitleRepository,
	categoryRepo *repository.RefRepository[models.Category],
	genreRepo *repository.RefRepository[models.Genre],
) *TitleService {
	return &TitleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
	}
}

func (s *TitleService) List(f repository.TitleFilter, limit, offset int) ([]*models.Title, int64, error) {
	return s.titleRepo.List(f, limit, offset)
}

func (s *TitleService) GetByID(id uint) (*models.Title, error) {
	title, err := s.titleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if title == nil {
		return nil, ErrNotFound
	}
	return title, nil
}

func (s *TitleService) Create(in TitleInput) (*models.Title, error) {
	if err := validateTitle(in.Name, in.Year); err != nil {
		return nil, err
	}

	category, err := s.resolveCategory(in.Category)
	if err != nil {
		return nil, err
	}
	genres, err := s.resolveGenres(in.Genres)
	if err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
		CategoryID:  &category.ID,
	}
	if err := s.titleRepo.Create(title); err != nil {
		logger.Log.Error("Failed to create title",
			zap.String("name", in.Name),
			zap.Error(err),
		)
		return nil, err
	}
	if err := s.titleRepo.SetGenres(title, genres); err != nil {
		return nil, err
	}

	logger.Log.Info("Title created",
		zap.Uint("title_id", title.ID),
		zap.String("name", title.Name),
	)

	return s.GetByID(title.ID)
}

func (s *TitleService) Update(id uint, upd TitleUpdate) (*models.Title, error) {
	title, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		title.Name = *upd.Name
	}
	if upd.Year != nil {
		title.Year = *upd.Year
	}
	if err := validateTitle(title.Name, title.Year); err != nil {
		return nil, err
	}
	if upd.Description != nil {
		title.Description = *upd.Description
	}
	if upd.Category != nil {
		category, err := s.resolveCategory(*upd.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &category.ID
	}

	if err := s.titleRepo.Update(title); err != nil {
		logger.Log.Error("Failed to update title",
			zap.Uint("title_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	if upd.Genres != nil {
		genres, err := s.resolveGenres(*upd.Genres)
		if err != nil {
			return nil, err
		}
		if err := s.titleRepo.SetGenres(title, genres); err != nil {
			return nil, err
		}
	}

	return s.GetByID(id)
}

func (s *TitleService) Delete(id uint) error {
	found, err := s.titleRepo.Delete(id)
	if err != nil {
		logger.Log.Error("Failed to delete title",
			zap.Uint("title_id", id),
			zap.Error(err),
		)
		return err
	}
	if !found {
		return ErrNotFound
	}

	logger.Log.Info("Title deleted", zap.Uint("title_id", id))

	return nil
}

func (s *TitleService) resolveCategory(slug string) (*models.Category, error) {
	if slug == "" {
		return nil, invalid("category", "category is required")
	}
	category, err := s.categoryRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("category %q: %w", slug, ErrNotFound)
	}
	return category, nil
}

func (s *TitleService) resolveGenres(slugs []string) ([]models.Genre, error) {
	genres := make([]models.Genre, 0, len(slugs))
	for _, slug := range slugs {
		genre, err := s.genreRepo.GetBySlug(slug)
		if err != nil {
			return nil, err
		}
		if genre == nil {
			return nil, fmt.Errorf("genre %q: %w", slug, ErrNotFound)
		}
		genres = append(genres, *genre)
	}
	return genres, nil
}

func validateTitle(name string, year int) error {
	verr := &ValidationError{}

	if name == "" {
		verr.add("name", "name is required")
	} else if len(name) > maxNameLength {
		verr.add("name", fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}

	if year <= 0 {
		verr.add("year", "year is required")
	} else if year > time.Now().Year() {
		verr.add("year", "year must not be in the future")
	}

	return verr.orNil()
}
