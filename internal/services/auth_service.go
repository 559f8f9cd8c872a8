package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tourquote/internal/domain"
	"tourquote/internal/domain/models"
	"tourquote/internal/repositories"
	"tourquote/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username/email or password")
	ErrInactiveUser       = errors.New("user is not active")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// TokenClaims is the payload of the HS256 access token.
type TokenClaims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	Users     repositories.MasterDataRepository
	Secret    []byte
	TTL       time.Duration
	RequestID string
	Now       func() time.Time
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Login checks the bcrypt hash of the user found by username or email and
// issues a signed token.
func (s AuthService) Login(ctx context.Context, login, password string) (string, models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return "", models.User{}, domain.ValidationError{Field: "login", Msg: "username/email and password are required"}
	}
	u, err := s.Users.FindUserByLogin(ctx, login)
	if err != nil {
		if domain.IsNotFound(err) {
			return "", models.User{}, ErrInvalidCredentials
		}
		return "", models.User{}, domain.InternalError{Msg: "failed to load user", Err: err}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("user_id=%d bad password", u.ID))
		return "", models.User{}, ErrInvalidCredentials
	}
	if u.Status != "" && !strings.EqualFold(u.Status, "active") {
		return "", models.User{}, ErrInactiveUser
	}

	token, err := s.Issue(u)
	if err != nil {
		return "", models.User{}, domain.InternalError{Msg: "failed to sign token", Err: err}
	}
	utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("user_id=%d role=%s", u.ID, u.Role))
	return token, u, nil
}

// Issue signs a token for u.
func (s AuthService) Issue(u models.User) (string, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	now := s.now()
	claims := TokenClaims{
		UserID: u.ID,
		Role:   strings.ToLower(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// ParseToken verifies raw against secret and returns its claims.
func ParseToken(secret []byte, raw string) (TokenClaims, error) {
	var claims TokenClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return TokenClaims{}, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword is used when seeding users for the in-memory store.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
