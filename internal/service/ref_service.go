package service

import (
	"fmt"
	"regexp"

	"github.com/rateworks/critica/internal/repository"
	"github.com/rateworks/critica/pkg/logger"
	"go.uber.org/zap"
)

var slugRegex = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

const (
	maxSlugLength = 50
	maxNameLength = 256
)

// RefService is the shared behavior of the Category and Genre resources:
// admin-written, slug-addressed, searchable name+slug pairs. One generic
// type serves both; the constructor closure builds the concrete entity.
type RefService[T repository.Ref] struct {
	repo  *repository.RefRepository[T]
	build func(name, slug string) T
	label string
}

func NewRefService[T repository.Ref](
	repo *repository.RefRepository[T],
	build func(name, slug string) T,
	label string,
) *RefService[T] {
	return &RefService[T]{repo: repo, build: build, label: label}
}

func (s *RefService[T]) List(search string, limit, offset int) ([]T, int64, error) {
	return s.repo.List(search, limit, offset)
}

func (s *RefService[T]) Create(name, slug string) (*T, error) {
	if err := validateRef(name, slug); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetBySlug(slug); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, invalid("slug", fmt.Sprintf("%s with this slug already exists", s.label))
	}

	entity := s.build(name, slug)
	if err := s.repo.Create(&entity); err != nil {
		logger.Log.Error("Failed to create reference entity",
			zap.String("kind", s.label),
			zap.String("slug", slug),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Reference entity created",
		zap.String("kind", s.label),
		zap.String("slug", slug),
	)

	return &entity, nil
}

// Rename is the only mutation allowed once an entity is referenced; the
// slug itself is immutable.
func (s *RefService[T]) Rename(slug, name string) (*T, error) {
	if err := validateRef(name, slug); err != nil {
		return nil, err
	}

	found, err := s.repo.Rename(slug, name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}

	return s.repo.GetBySlug(slug)
}

func (s *RefService[T]) Delete(slug string) error {
	found, err := s.repo.Delete(slug)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}

	logger.Log.Info("Reference entity deleted",
		zap.String("kind", s.label),
		zap.String("slug", slug),
	)

	return nil
}

func validateRef(name, slug string) error {
	verr := &ValidationError{}

	if name == "" {
		verr.add("name", "name is required")
	} else if len(name) > maxNameLength {
		verr.add("name", fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}

	if slug == "" {
		verr.add("slug", "slug is required")
	} else {
		if len(slug) > maxSlugLength {
			verr.add("slug", fmt.Sprintf("slug must be at most %d characters", maxSlugLength))
		}
		if !slugRegex.MatchString(slug) {
			verr.add("slug", "slug may only contain letters, digits, hyphens and underscores")
		}
	}

	return verr.orNil()
}
