package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vastaff/gatekeeper/internal/models"
	"github.com/vastaff/gatekeeper/internal/storage"
	"github.com/vastaff/gatekeeper/internal/util"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

const minPasswordLength = 8

type AuthService struct {
	users storage.UserRepository
	log   *zap.SugaredLogger
}

func NewAuthService(users storage.UserRepository, log *zap.SugaredLogger) *AuthService {
	return &AuthService{users: users, log: log}
}

func (s *AuthService) SignUp(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, util.NewResponseError(http.StatusBadRequest, "invalid email")
	}
	if len(req.Password) < minPasswordLength {
		return nil, util.NewResponseError(http.StatusBadRequest, "password must be at least %d characters", minPasswordLength)
	}
	if !req.Role.Valid() {
		return nil, util.NewResponseError(http.StatusBadRequest, "role must be %q or %q", models.RoleEmployer, models.RoleVA)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, email, string(hash), req.Role)
	if err != nil {
		return nil, err
	}

	s.log.Infow("user signed up", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *AuthService) LogIn(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
