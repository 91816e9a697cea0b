package service

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rateworks/critica/internal/models"
	"github.com/rateworks/critica/internal/notify"
	"github.com/rateworks/critica/internal/repository"
	"github.com/rateworks/critica/internal/utils"
	"github.com/rateworks/critica/pkg/logger"
	"go.uber.org/zap"
)

var (
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

const (
	maxUsernameLength = 100
	maxEmailLength    = 150
)

// reservedUsername is claimed by the self-profile route.
const reservedUsername = "me"

type AuthService struct {
	userRepo  *repository.UserRepository
	codes     *utils.CodeGenerator
	notifier  notify.Notifier
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthService(
	userRepo *repository.UserRepository,
	codes *utils.CodeGenerator,
	notifier notify.Notifier,
	jwtSecret string,
	jwtExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		codes:     codes,
		notifier:  notifier,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

// Signup looks up or creates the user for the exact (username, email) pair
// and mails a fresh confirmation code. Repeating the call with the same
// pair reissues a code without creating a second record; a collision with
// an existing account under a different pairing is rejected. The user
// record outlives a failed delivery: the caller can always retry.
func (s *AuthService) Signup(username, email string) (*models.User, error) {
	if err := validateIdentity(username, email); err != nil {
		logger.Log.Warn("Signup validation failed",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}

	switch {
	case user != nil && user.Email != email:
		logger.Log.Warn("Signup username collision",
			zap.String("username", username),
		)
		return nil, ErrIdentityConflict

	case user == nil:
		existing, err := s.userRepo.GetByEmail(email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			logger.Log.Warn("Signup email collision",
				zap.String("email", email),
			)
			return nil, ErrIdentityConflict
		}

		user = &models.User{
			ID:       uuid.New(),
			Username: username,
			Email:    email,
			Role:     models.RoleUser,
		}
		if err := s.userRepo.Create(user); err != nil {
			logger.Log.Error("Failed to create user",
				zap.String("username", username),
				zap.Error(err),
			)
			return nil, err
		}
	}

	code := s.codes.Make(user)
	body := fmt.Sprintf("Your confirmation code: %s.", code)
	if err := s.notifier.Send(user.Email, "Your confirmation code", body); err != nil {
		// Best-effort delivery, the signup already succeeded.
		logger.Log.Error("Confirmation code delivery failed",
			zap.String("username", user.Username),
			zap.Error(err),
		)
	}

	logger.Log.Info("Confirmation code issued",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	return user, nil
}

// ExchangeToken trades a valid confirmation code for a bearer token. A
// successful exchange stamps the user record, which invalidates the code
// just used along with any other outstanding ones.
func (s *AuthService) ExchangeToken(username, code string) (string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrNotFound
	}

	if !s.codes.Check(user, code) {
		logger.Log.Warn("Confirmation code rejected",
			zap.String("username", username),
		)
		return "", ErrInvalidCode
	}

	now := time.Now()
	user.Confirmed = true
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return "", err
	}

	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		logger.Log.Error("Failed to generate token",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return "", err
	}

	logger.Log.Info("Token issued",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	return token, nil
}

func validateIdentity(username, email string) error {
	verr := &ValidationError{}

	if username == "" {
		verr.add("username", "username is required")
	} else {
		if username == reservedUsername {
			verr.add("username", `username "me" is reserved`)
		}
		if len(username) > maxUsernameLength {
			verr.add("username", fmt.Sprintf("username must be at most %d characters", maxUsernameLength))
		}
		if !usernameRegex.MatchString(username) {
			verr.add("username", "username may only contain letters, digits and @/./+/-/_")
		}
	}

	if email == "" {
		verr.add("email", "email is required")
	} else {
		if len(email) > maxEmailLength {
			verr.add("email", fmt.Sprintf("email must be at most %d characters", maxEmailLength))
		}
		if !emailRegex.MatchString(email) {
			verr.add("email", "invalid email format")
		}
	}

	return verr.orNil()
}
