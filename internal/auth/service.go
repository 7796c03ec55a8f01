// Package auth validates bearer tokens issued by the identity provider and
// resolves them to platform users. Token issuance, sessions and password
// handling live outside this service.
package auth

import (
	"context"
	"errors"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/talentbridge/backend/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Actor is the authenticated caller of a request.
type Actor struct {
	ID        uuid.UUID
	Role      string
	CompanyID *uuid.UUID
}

// IsRecruiter reports whether the actor may perform recruiter operations:
// recruiter role plus a linked company profile.
func (a *Actor) IsRecruiter() bool {
	return a != nil && a.Role == models.RoleRecruiter && a.CompanyID != nil
}

type Service interface {
	ValidateToken(ctx context.Context, token string) (*Actor, error)
}

// UserLookup resolves the token subject to the authoritative user record.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type service struct {
	users  UserLookup
	secret []byte
}

func NewService(users UserLookup) *service {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "supersecretmvp"
	}
	return &service{users: users, secret: []byte(secret)}
}

var _ Service = (*service)(nil)

type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// ValidateToken parses and verifies the HS256 token, then re-reads the user
// so role and company membership are taken from the store, not the token.
func (s *service) ValidateToken(ctx context.Context, token string) (*Actor, error) {
	tok, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	c, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &Actor{ID: user.ID, Role: user.Role, CompanyID: user.CompanyID}, nil
}
