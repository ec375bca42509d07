package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"editor-web/internal/domain/user"
	"editor-web/internal/repository"
	editor_errors "editor-web/pkg/errors"
	"editor-web/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService implements registration and credential checks on top of a
// UserRepository.
type AuthService struct {
	userRepo   repository.UserRepository
	log        *logger.Logger
	bcryptCost int
	// dummyHash is compared against when the username is unknown so a miss
	// costs the same as a wrong password.
	dummyHash []byte
	now       func() time.Time
}

// NewAuthService creates the service. bcryptCost must be within bcrypt's
// range; it is also used to prepare the dummy hash for unknown usernames.
func NewAuthService(userRepo repository.UserRepository, bcryptCost int, l *logger.Logger) (*AuthService, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("editor-web-dummy-password"), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &AuthService{
		userRepo:   userRepo,
		log:        l,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
		now:        time.Now,
	}, nil
}

// RegisterInput is a registration form submission.
type RegisterInput struct {
	Username        string
	Password        string
	PasswordConfirm string
}

// LoginInput is a set of submitted credentials.
type LoginInput struct {
	Username string
	Password string
}

// Register validates the submission and creates the identity. It does not
// establish a session; callers log the new user in afterwards.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	if err := validateRegister(in); err != nil {
		return user.User{}, err
	}

	if _, found, err := s.userRepo.FindByUsername(ctx, in.Username); err != nil {
		return user.User{}, err
	} else if found {
		return user.User{}, editor_errors.NewValidationError(editor_errors.ReasonDuplicate)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	newUser := user.User{
		ID:           uuid.New(),
		Username:     in.Username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		// Lost the race against a concurrent registration of the same name.
		if errors.Is(err, editor_errors.ErrAlreadyExists) {
			return user.User{}, editor_errors.NewValidationError(editor_errors.ReasonDuplicate)
		}
		return user.User{}, err
	}

	s.log.Info(ctx, "user registered", zap.String("username", newUser.Username), zap.String("user_id", newUser.ID.String()))
	return newUser, nil
}

// Login resolves the credentials to a user. Unknown usernames and wrong
// passwords both yield an AuthenticationError.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (user.User, error) {
	u, found, err := s.userRepo.FindByUsername(ctx, in.Username)
	if err != nil {
		return user.User{}, err
	}
	if !found {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(in.Password))
		return user.User{}, &editor_errors.AuthenticationError{}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return user.User{}, &editor_errors.AuthenticationError{}
	}

	now := s.now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.log.Warn(ctx, "failed to record last login", zap.String("user_id", u.ID.String()), zap.Error(err))
	} else {
		u.LastLoginAt.Time = now
		u.LastLoginAt.Valid = true
	}

	return u, nil
}

func validateRegister(in RegisterInput) error {
	if in.PasswordConfirm != in.Password {
		return editor_errors.NewValidationError(editor_errors.ReasonPasswordMismatch)
	}
	for _, field := range []string{in.Username, in.Password} {
		if !validLength(field) {
			return editor_errors.NewValidationError(editor_errors.ReasonLength)
		}
	}
	// 30 multi-byte characters can still exceed what bcrypt accepts.
	if len(in.Password) > user.MaxPasswordBytes {
		return editor_errors.NewValidationError(editor_errors.ReasonLength)
	}
	return nil
}

// validLength counts code points, not bytes.
func validLength(value string) bool {
	n := utf8.RuneCountInString(value)
	return n > user.MinFieldLength && n < user.MaxFieldLength
}
