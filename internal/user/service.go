package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
)

const (
	maxEmailLength = 254
	maxLoginLength = 150
	minLoginLength = 3
)

var (
	ErrInvalidEmail       = errors.New("email address is not valid")
	ErrLoginLength        = fmt.Errorf("login must be between %d and %d characters", minLoginLength, maxLoginLength)
	ErrLoginAlreadyExists = errors.New("login already exists")
)

// User is a person that owns, creates and updates transactions.
type User struct {
	ID         string    `json:"id"`
	Login      string    `json:"login"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	CanViewAll bool      `json:"can_view_all"`
	CreatedAt  time.Time `json:"created_at"`
}

type Service interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, userID string) (*User, error)
	// DisplayNames maps user ids to logins. Unknown ids are left out.
	DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

type service struct {
	repo Repository
}

func NewUserService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) CreateUser(ctx context.Context, user *User) error {
	user.Login = strings.TrimSpace(user.Login)
	user.Email = strings.TrimSpace(user.Email)

	if len(user.Login) < minLoginLength || len(user.Login) > maxLoginLength {
		return ErrLoginLength
	}
	if len(user.Email) > maxEmailLength {
		return ErrInvalidEmail
	}
	if err := checkmail.ValidateFormat(user.Email); err != nil {
		return ErrInvalidEmail
	}

	_, err := s.repo.getUserByLogin(ctx, user.Login)
	if err == nil {
		return ErrLoginAlreadyExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	return s.repo.createUser(ctx, user)
}

func (s *service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrUserNotFound
	}
	return s.repo.getUserByID(ctx, userID)
}

func (s *service) DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	valid := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return map[string]string{}, nil
	}
	return s.repo.getLogins(ctx, valid)
}
