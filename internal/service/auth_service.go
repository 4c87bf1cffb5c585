package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stemsi/learnhub-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when a password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// TokenType distinguishes learner vs admin tokens.
type TokenType string

const (
	TokenTypeLearner TokenType = "learner"
	TokenTypeAdmin   TokenType = "admin"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType   TokenType `json:"token_type"`
	UserID      int       `json:"user_id,omitempty"`     // Admin only
	RoleID      int       `json:"role_id,omitempty"`     // Admin only
	Permissions []string  `json:"permissions,omitempty"` // Admin only
	LearnerID   string    `json:"learner_id,omitempty"`  // Learner only
	Email       string    `json:"email,omitempty"`
}

// LearnerUUID parses the learner id carried by a learner token.
func (c *Claims) LearnerUUID() (uuid.UUID, error) {
	return uuid.Parse(c.LearnerID)
}

// AuthService handles password hashing and JWT issuance.
// Learner tokens are normally issued by the LMS with the shared secret.
type AuthService struct {
	cfg *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateLearnerToken creates a JWT identifying a learner by id and email.
func (s *AuthService) GenerateLearnerToken(learnerID uuid.UUID, email string) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   learnerID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType: TokenTypeLearner,
		LearnerID: learnerID.String(),
		Email:     email,
	}

	return s.sign(claims)
}

// GenerateAdminToken creates a JWT for an admin with permissions embedded.
func (s *AuthService) GenerateAdminToken(adminID, roleID int, email string, permissions []string) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.Itoa(adminID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType:   TokenTypeAdmin,
		UserID:      adminID,
		RoleID:      roleID,
		Permissions: permissions,
		Email:       email,
	}

	return s.sign(claims)
}

func (s *AuthService) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
