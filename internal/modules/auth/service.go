package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"trustmrr/internal/domain"
	"trustmrr/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Service contains all business logic for authentication
type Service struct {
	users    UserRepositoryInterface
	jwt      jwtService
	tokenTTL time.Duration
	log      zerolog.Logger
}

func NewService(users UserRepositoryInterface, jwt jwtService, tokenTTL time.Duration, log zerolog.Logger) *Service {
	return &Service{
		users:    users,
		jwt:      jwt,
		tokenTTL: tokenTTL,
		log:      log,
	}
}

// Signup creates a user and returns it without the password hash.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameExists
	}
	taken, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// lost a race with a concurrent signup
			return nil, ErrUsernameExists
		}
		return nil, err
	}

	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user signed up")

	user.PasswordHash = ""
	return user, nil
}

// Login checks the password of the user named by username, or by email when
// no username is given, and issues an access token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*domain.User, string, error) {
	var (
		user *domain.User
		err  error
	)
	switch {
	case strings.TrimSpace(req.Username) != "":
		user, err = s.users.GetByUsername(ctx, req.Username)
	case strings.TrimSpace(req.Email) != "":
		user, err = s.users.GetByEmail(ctx, req.Email)
	default:
		return nil, "", ErrInvalidCredentials
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}

	user.PasswordHash = ""
	return user, token, nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) TokenTTL() time.Duration { return s.tokenTTL }

func (s *Service) hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}
