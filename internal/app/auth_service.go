package app

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"docchat/internal/model"
	"docchat/internal/pkg/credential"
	"docchat/internal/pkg/jwtutil"
	"docchat/internal/repository"
)

type AuthService struct {
	userRepo *repository.UserRepository
	codec    credential.Codec
	tokens   *jwtutil.Manager
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

func NewAuthService(userRepo *repository.UserRepository, codec credential.Codec, tokens *jwtutil.Manager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		codec:    codec,
		tokens:   tokens,
	}
}

func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if !validEmail(email) || input.Password == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := s.codec.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
	}
	if err := s.userRepo.Create(user); err != nil {
		// a concurrent registration won between the lookup and the insert
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return s.issue(user)
}

// Login reports ErrInvalidCredential for both unknown emails and wrong
// passwords.
func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.codec.Verify(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredential
	}
	return s.issue(user)
}

func (s *AuthService) GetUserByID(id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
