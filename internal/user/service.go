package user

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, email, password, fullName string) (Account, error) {
	email = normalizeEmail(email)
	if len(password) < MinPasswordLength {
		return Account{}, ErrWeakPassword
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return Account{}, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return Account{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}
	return s.repo.Create(ctx, Account{
		Email:        email,
		PasswordHash: string(hashed),
		FullName:     strings.TrimSpace(fullName),
	})
}

// Authenticate hides whether the email or the password was wrong. Store
// failures are passed through so they are not reported as bad credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Account, error) {
	a, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return Account{}, ErrInvalidCredentials
	}
	return a, nil
}

func (s *Service) Profile(ctx context.Context, id string) (Account, error) {
	if id == "" {
		return Account{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}
