package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

const minPasswordLen = 6

// maxPasswordLen is bcrypt's input limit in bytes.
const maxPasswordLen = 72

// Service owns registration, credential checks and privilege changes.
//
// Changing IsAdmin affects tokens issued afterwards only; tokens already in
// circulation keep the flag they were minted with.
type Service struct {
	repo   Repository
	hasher *Hasher
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(repo Repository, hasher *Hasher) *Service {
	if hasher == nil {
		hasher = NewHasher(0)
	}
	return &Service{repo: repo, hasher: hasher, clock: time.Now}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, error) {
	name := strings.TrimSpace(req.Name)
	email, err := normalizeEmail(req.Email)
	if err != nil || name == "" || len(req.Password) < minPasswordLen || len(req.Password) > maxPasswordLen {
		return User{}, ErrInvalidArgument
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock().UTC()
	u := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate returns ErrInvalidCredentials for both unknown emails and wrong passwords.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email, err := normalizeEmail(email)
	if err != nil || password == "" {
		return User{}, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	if id == "" {
		return User{}, ErrInvalidArgument
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) SetAdmin(ctx context.Context, id string, isAdmin bool) (User, error) {
	if id == "" {
		return User{}, ErrInvalidArgument
	}
	return s.repo.SetAdmin(ctx, id, isAdmin, s.clock().UTC())
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(addr.Address), nil
}
