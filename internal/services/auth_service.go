package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"weddingsite/internal/domain"
	"weddingsite/internal/repos"
	"weddingsite/internal/validate"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const adminRole = "admin"

var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return h
})

// Claims is the admin bearer token payload.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	Users  *repos.UserRepo
	Secret []byte
	TTL    time.Duration
	now    func() time.Time
}

func NewAuthService(users *repos.UserRepo, secret string, ttl time.Duration) *AuthService {
	return &AuthService{Users: users, Secret: []byte(secret), TTL: ttl, now: time.Now}
}

func (s *AuthService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Login checks the credentials and issues a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	u, err := s.Users.ByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		// Same bcrypt cost for unknown emails.
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return "", time.Time{}, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return "", time.Time{}, ErrBadCreds
	}
	return s.Issue(u)
}

func (s *AuthService) Issue(u *domain.AdminUser) (string, time.Time, error) {
	if len(s.Secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret not configured")
	}
	now := s.clock()
	exp := now.Add(s.TTL)
	claims := Claims{
		Email: u.Email,
		Role:  adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify validates a bearer token and returns its claims.
func (s *AuthService) Verify(token string) (*Claims, error) {
	if token == "" || len(s.Secret) == 0 {
		return nil, ErrUnauthorized
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.clock), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid || claims.Role != adminRole || claims.Subject == "" {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// EnsureAdmin creates the admin account or resets its password.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, name, password string) (*domain.AdminUser, error) {
	e, ok := validate.Email(email)
	if !ok {
		return nil, invalid("email", "invalid address")
	}
	if !validate.Password(password) {
		return nil, invalid("password", "8-72 characters with upper, lower case and a digit")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if name == "" {
		name = e
	}
	u := &domain.AdminUser{ID: uuid.NewString(), Email: e, Name: name, Hash: string(hash), CreatedAt: time.Now().UTC()}
	if err := s.Users.Upsert(ctx, u); err != nil {
		return nil, storeErr("upsert admin", err)
	}
	return u, nil
}
