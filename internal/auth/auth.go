package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role tags carried by a user profile. The wire values match the
// persisted enum, so they surface unchanged in API responses.
const (
	RoleDirector     = "DIRETOR"
	RoleManager      = "GESTOR"
	RoleCollaborator = "COLABORADOR"
)

// User is the authenticated actor attached to every request. It carries
// everything the scoping and approval rules need: the role tag, the
// departments the user belongs to and the departments they manage.
type User struct {
	ID                   int64   `json:"id"`
	Username             string  `json:"username"`
	Email                string  `json:"email"`
	IsSuperuser          bool    `json:"is_superuser"`
	HasProfile           bool    `json:"-"`
	Role                 string  `json:"tipo,omitempty"`
	DepartmentIDs        []int64 `json:"-"`
	ManagedDepartmentIDs []int64 `json:"-"`
}

func (u *User) IsDirector() bool {
	return u.HasProfile && u.Role == RoleDirector
}

func (u *User) IsManager() bool {
	return u.HasProfile && u.Role == RoleManager
}

func (u *User) IsCollaborator() bool {
	return u.HasProfile && u.Role == RoleCollaborator
}

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and validates tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID string) (string, error)
	GenerateRefreshToken(userID string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
)
