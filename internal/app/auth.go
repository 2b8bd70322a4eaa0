package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"wanderwise/internal/domain"
)

type AuthService struct {
	users    domain.UserRepository
	identity domain.IdentityVerifier
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(u domain.UserRepository, id domain.IdentityVerifier, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{users: u, identity: id, secret: secret, tokenTTL: ttl}
}

// Claims is the authenticated caller extracted from a bearer token.
type Claims struct {
	UserID int64
	Role   domain.Role
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Register creates a local-password account. Role is always "user" here;
// admins are promoted through the admin user update path, never at signup.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (domain.User, string, error) {
	if name == "" || email == "" || password == "" {
		return domain.User{}, "", fmt.Errorf("%w: name, email and password required", domain.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, "", err
	}
	u, err := s.users.CreateUser(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Status:       "active",
	})
	if err != nil {
		return domain.User{}, "", err
	}
	tok, err := s.IssueToken(u)
	return u, tok, err
}

// Login deliberately returns the same error for an unknown email and a
// wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	if email == "" || password == "" {
		return domain.User{}, "", fmt.Errorf("%w: email and password required", domain.ErrValidation)
	}
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", domain.ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}
	tok, err := s.IssueToken(u)
	return u, tok, err
}

// GoogleLogin verifies the external ID token and finds or creates the
// matching account. Google accounts carry no local password.
func (s *AuthService) GoogleLogin(ctx context.Context, token string) (domain.User, string, error) {
	ident, err := s.identity.Verify(ctx, token)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("google sign-in: %w", err)
	}

	u, err := s.users.GetUserByEmail(ctx, ident.Email)
	if errors.Is(err, domain.ErrNotFound) {
		name := ident.Name
		if name == "" {
			name = "Anonymous"
		}
		nu := domain.User{Name: name, Email: ident.Email, Role: domain.RoleUser, Status: "active"}
		if ident.Picture != "" {
			nu.ProfileImage = &ident.Picture
		}
		u, err = s.users.CreateUser(ctx, nu)
	}
	if err != nil {
		return domain.User{}, "", err
	}
	tok, err := s.IssueToken(u)
	return u, tok, err
}

func (s *AuthService) IssueToken(u domain.User) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *AuthService) ParseToken(raw string) (Claims, error) {
	var tc tokenClaims
	tok, err := jwt.ParseWithClaims(raw, &tc, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, fmt.Errorf("invalid token: %w", err)
	}
	id, err := strconv.ParseInt(tc.Subject, 10, 64)
	if err != nil {
		return Claims{}, fmt.Errorf("invalid token subject: %w", err)
	}
	return Claims{UserID: id, Role: domain.Role(tc.Role)}, nil
}
