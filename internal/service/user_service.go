package service

import (
	"github.com/google/uuid"
	"github.com/rateworks/critica/internal/models"
	"github.com/rateworks/critica/internal/repository"
	"github.com/rateworks/critica/pkg/logger"
	"go.uber.org/zap"
)

// UserUpdate carries a partial update; nil fields stay untouched.
type UserUpdate struct {
	Username  *string      `json:"username"`
	Email     *string      `json:"email"`
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	Bio       *string      `json:"bio"`
	Role      *models.Role `json:"role"`
}

type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) List(search string, limit, offset int) ([]*models.User, int64, error) {
	return s.userRepo.List(search, limit, offset)
}

func (s *UserService) GetByUsername(username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// Create is the admin path: role may be set directly.
func (s *UserService) Create(username, email string, role models.Role, firstName, lastName, bio string) (*models.User, error) {
	if err := validateIdentity(username, email); err != nil {
		return nil, err
	}
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, invalid("role", "role must be one of: user, moderator, admin")
	}

	if existing, err := s.userRepo.GetByUsername(username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrIdentityConflict
	}
	if existing, err := s.userRepo.GetByEmail(email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrIdentityConflict
	}

	user := &models.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Role:      role,
		FirstName: firstName,
		LastName:  lastName,
		Bio:       bio,
	}
	if err := s.userRepo.Create(user); err != nil {
		logger.Log.Error("Failed to create user",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("User created by admin",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)

	return user, nil
}

// Update applies a partial update to the user addressed by username.
// allowRole is true only on the admin path; on a self-edit any submitted
// role value is discarded and the stored role survives.
func (s *UserService) Update(username string, upd UserUpdate, allowRole bool) (*models.User, error) {
	user, err := s.GetByUsername(username)
	if err != nil {
		return nil, err
	}

	if upd.Username != nil && *upd.Username != user.Username {
		if err := validateIdentity(*upd.Username, user.Email); err != nil {
			return nil, err
		}
		if existing, err := s.userRepo.GetByUsername(*upd.Username); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, ErrIdentityConflict
		}
		user.Username = *upd.Username
	}
	if upd.Email != nil && *upd.Email != user.Email {
		if err := validateIdentity(user.Username, *upd.Email); err != nil {
			return nil, err
		}
		if existing, err := s.userRepo.GetByEmail(*upd.Email); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, ErrIdentityConflict
		}
		user.Email = *upd.Email
	}
	if upd.FirstName != nil {
		user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = *upd.LastName
	}
	if upd.Bio != nil {
		user.Bio = *upd.Bio
	}
	if upd.Role != nil && allowRole {
		if !upd.Role.Valid() {
			return nil, invalid("role", "role must be one of: user, moderator, admin")
		}
		user.Role = *upd.Role
	}

	if err := s.userRepo.Update(user); err != nil {
		logger.Log.Error("Failed to update user",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}

	return user, nil
}

func (s *UserService) Delete(username string) error {
	user, err := s.GetByUsername(username)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(user.ID); err != nil {
		logger.Log.Error("Failed to delete user",
			zap.String("username", username),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("User deleted",
		zap.String("user_id", user.ID.String()),
		zap.String("username", username),
	)

	return nil
}
