package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"leadcrm/internal/crm"
)

// Service manages staff accounts. Passwords are stored as bcrypt hashes only.
type Service struct {
	repo  Repository
	clock func() time.Time
	cost  int
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now, cost: bcrypt.DefaultCost}
}

// WithHashCost lowers the bcrypt cost, mainly to keep tests fast.
func (s *Service) WithHashCost(cost int) *Service {
	s.cost = cost
	return s
}

type CreateInput struct {
	Email    string
	Name     string
	Password string
	Role     Role
}

const minPasswordLen = 8

func (s *Service) Create(ctx context.Context, in CreateInput) (User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case !crm.ValidEmail(in.Email):
		return User{}, crm.Invalid("email", "invalid email format")
	case in.Name == "":
		return User{}, crm.Invalid("name", "is required")
	case len(in.Password) < minPasswordLen:
		return User{}, crm.Invalid("password", "must be at least 8 characters")
	case !in.Role.Valid():
		return User{}, crm.Invalid("role", "must be admin or staff")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return User{}, err
	}
	now := s.clock().UTC()
	u := User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(in.Email),
		Name:         in.Name,
		Role:         in.Role,
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return User{}, err
		}
		return User{}, crm.Persistence("create user", err)
	}
	return u, nil
}

// Authenticate checks credentials. Unknown email and wrong password are indistinguishable.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, crm.Persistence("get user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !u.Active {
		return User{}, ErrInactive
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, crm.NotFound("user", id)
		}
		return User{}, crm.Persistence("get user", err)
	}
	return u, nil
}

// Exists reports whether id names an active staff member that records can be assigned to.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, crm.Persistence("get user", err)
	}
	return u.Active, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, crm.Persistence("list users", err)
	}
	return out, nil
}
