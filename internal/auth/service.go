package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/rmartinelli/shopcart-backend/internal/users"
	pkgerrors "github.com/rmartinelli/shopcart-backend/pkg/errors"
	"github.com/rmartinelli/shopcart-backend/pkg/logger"
	"github.com/rmartinelli/shopcart-backend/pkg/security"
)

// Service exposes the credential check. No tokens are issued; a successful
// login simply returns the account profile.
type Service interface {
	Login(ctx context.Context, email, password string) (*users.UserDTO, error)
}

type service struct {
	repo *users.Repository
	logg *logger.Logger
}

// NewService constructs an auth service instance.
func NewService(repo *users.Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*users.UserDTO, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
	}

	ok, err := security.VerifyPassword(password, user.Password)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "stored password hash is malformed")
		}
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	return users.FromModel(user), nil
}
