package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/email-builder/internal/apperr"
	"github.com/email-builder/internal/auth"
	"github.com/email-builder/internal/logging"
	"github.com/email-builder/internal/model"
	"github.com/email-builder/internal/validation"
)

const msgInvalidCredentials = "Invalid credentials"

type UserStore interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type AuthService struct {
	users  UserStore
	tokens *auth.TokenManager
	log    logging.Logger
}

func NewAuthService(users UserStore, tokens *auth.TokenManager, log logging.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, log: log}
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := validation.NormalizeEmail(req.Email)

	missing := apperr.Fields{}
	if email == "" {
		missing.Add("email", "Email is required")
	}
	if validation.IsBlank(req.Password) {
		missing.Add("password", "Password is required")
	}
	if name == "" {
		missing.Add("name", "Name is required")
	}
	if err := missing.Err("Missing required fields"); err != nil {
		return nil, err
	}

	if !validation.IsValidEmail(email) {
		return nil, apperr.Validation("Invalid email format", "email", "Please enter a valid email")
	}
	if len(req.Password) < validation.MinPasswordLength {
		return nil, apperr.Validation("Invalid password", "password",
			fmt.Sprintf("Password must be at least %d characters long", validation.MinPasswordLength))
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.New(apperr.ErrConflict, "User already exists with this email")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &model.User{Name: name, Email: email, Password: hash})
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.New(apperr.ErrConflict, "User already exists with this email")
		}
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	email := validation.NormalizeEmail(req.Email)

	missing := apperr.Fields{}
	if email == "" {
		missing.Add("email", "Email is required")
	}
	if validation.IsBlank(req.Password) {
		missing.Add("password", "Password is required")
	}
	if err := missing.Err("Missing required fields"); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	var ok bool
	if user != nil {
		ok = auth.CheckPassword(user.Password, req.Password)
	} else {
		auth.CheckDummyPassword(req.Password)
	}
	if !ok {
		s.log.Warn(ctx, "login rejected")
		return nil, apperr.New(apperr.ErrUnauthorized, msgInvalidCredentials)
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return s.issue(user)
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.New(apperr.ErrNotFound, "User not found")
	}
	profile := user.Profile()
	return &profile, nil
}

func (s *AuthService) issue(user *model.User) (*model.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		User:      user.Profile(),
	}, nil
}
