// Package service contains the business logic layer.
//
// Handlers parse HTTP and write responses; services enforce the domain
// rules and orchestrate repositories and auth primitives; repositories talk
// to the database. Services accept primitives and return domain errors —
// they have zero knowledge of HTTP, which is what makes them callable from
// tests (and any future non-HTTP surface) as plain functions.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/datavault/internal/apperror"
	"github.com/sakif/datavault/internal/auth"
	"github.com/sakif/datavault/internal/model"
	"github.com/sakif/datavault/internal/repository"
)

// Username length bounds enforced at registration.
const (
	MinUsernameLength = 5
	MaxUsernameLength = 50
	MinPasswordLength = 8
)

const (
	msgInvalidRequest     = "Invalid request. Please provide all required fields: username, email, password, full_name."
	msgInvalidPassword    = "The provided password does not meet the requirements. Password must be at least 8 characters long and contain a mix of uppercase and lowercase letters, numbers, and special characters."
	msgInvalidAge         = "Invalid age value. Age must be a positive integer."
	msgGenderRequired     = "Gender field is required. Please specify the gender (e.g., male, female, non-binary)."
	msgMissingFields      = "Missing fields. Please provide both username and password."
	msgInvalidCredentials = "Invalid credentials. The provided username or password is incorrect."
)

// AuthService handles registration and token issuance.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all dependencies injected.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// RegisterParams carries the registration input. Plain fields, no HTTP
// types — the handler maps its DTO onto this.
type RegisterParams struct {
	Username string
	Email    string
	Password string
	FullName string
	Age      int
	Gender   string
}

// Register validates and persists a new user.
//
// Validation order is fixed and short-circuiting — the first failure wins:
//
//	missing field       → INVALID_REQUEST
//	username taken      → USERNAME_EXISTS
//	email taken         → EMAIL_EXISTS
//	weak password       → INVALID_PASSWORD
//	negative age        → INVALID_AGE
//	blank gender        → GENDER_REQUIRED
//
// Gender is excluded from the missing-field check so GENDER_REQUIRED is
// actually reachable; a zero age counts as missing.
//
// The uniqueness pre-checks order the failures correctly, but the store's
// UNIQUE constraints (re-checked transactionally in CreateUser) are the
// final arbiter under concurrency — a losing racer still gets
// USERNAME_EXISTS/EMAIL_EXISTS, never an internal error.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (*model.User, error) {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)
	p.FullName = strings.TrimSpace(p.FullName)

	if p.Username == "" || p.Email == "" || p.Password == "" || p.FullName == "" || p.Age == 0 {
		return nil, apperror.Validation(apperror.CodeInvalidRequest, msgInvalidRequest)
	}
	if len(p.Username) < MinUsernameLength || len(p.Username) > MaxUsernameLength {
		return nil, apperror.Validation(apperror.CodeInvalidRequest, msgInvalidRequest)
	}

	taken, err := s.users.UsernameTaken(ctx, p.Username)
	if err != nil {
		return nil, fmt.Errorf("checking username: %w", err)
	}
	if taken {
		return nil, apperror.Validation(apperror.CodeUsernameExists,
			"The provided username is already taken. Please choose a different username.")
	}

	taken, err = s.users.EmailTaken(ctx, p.Email)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if taken {
		return nil, apperror.Validation(apperror.CodeEmailExists,
			"The provided email is already registered. Please use a different email address.")
	}

	if len(p.Password) < MinPasswordLength {
		return nil, apperror.Validation(apperror.CodeInvalidPassword, msgInvalidPassword)
	}

	if p.Age < 0 {
		return nil, apperror.Validation(apperror.CodeInvalidAge, msgInvalidAge)
	}

	if strings.TrimSpace(p.Gender) == "" {
		return nil, apperror.Validation(apperror.CodeGenderRequired, msgGenderRequired)
	}

	hash, err := s.passwords.Hash(p.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: hash,
		FullName:     p.FullName,
		Age:          p.Age,
		Gender:       strings.TrimSpace(p.Gender),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// TokenResult bundles an issued token with its validity in seconds, the
// shape clients receive as {access_token, expires_in}.
type TokenResult struct {
	AccessToken string
	ExpiresIn   int
}

// IssueToken verifies the credentials and mints a bearer token.
//
// Unknown username and wrong password collapse into the same
// INVALID_CREDENTIALS failure so responses don't leak which accounts exist.
func (s *AuthService) IssueToken(ctx context.Context, username, password string) (*TokenResult, error) {
	if username == "" || password == "" {
		return nil, apperror.Validation(apperror.CodeMissingFields, msgMissingFields)
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		// Not-found and genuine store failures diverge here: the former is
		// bad credentials, the latter must surface as an internal fault.
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(apperror.CodeInvalidCredentials, msgInvalidCredentials)
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized(apperror.CodeInvalidCredentials, msgInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("issuing token for %q: %w", user.Username, err)
	}

	s.logger.Info("token issued", slog.String("username", user.Username))

	return &TokenResult{
		AccessToken: token,
		ExpiresIn:   int(s.tokens.TTL().Seconds()),
	}, nil
}
