// Package auth issues and validates the HS256 tokens that gate admin and
// participant routes. Token issuance is bootstrapped by an operator key whose
// bcrypt hash is configured out of band.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	dErrors "tranchor/pkg/domain-errors"
)

// Claims carried by engine access tokens.
type Claims struct {
	Participant string `json:"participant"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

const (
	RoleAdmin       = "admin"
	RoleParticipant = "participant"
)

// Service signs and validates tokens.
type Service struct {
	signingKey   []byte
	adminKeyHash []byte
	issuer       string
}

func NewService(signingKey, adminKeyHash string) *Service {
	return &Service{
		signingKey:   []byte(signingKey),
		adminKeyHash: []byte(adminKeyHash),
		issuer:       "tranchor",
	}
}

// ExchangeAdminKey verifies the operator bootstrap key against its stored
// bcrypt hash and returns a short-lived admin token.
func (s *Service) ExchangeAdminKey(key string, ttl time.Duration) (string, error) {
	if len(s.adminKeyHash) == 0 {
		return "", dErrors.New(dErrors.CodeUnauthorized, "admin key exchange is not configured")
	}
	if err := bcrypt.CompareHashAndPassword(s.adminKeyHash, []byte(key)); err != nil {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid admin key")
	}
	return s.Generate("", RoleAdmin, ttl)
}

// Generate signs a token for the given participant and role.
func (s *Service) Generate(participant, role string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Participant: participant,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "sign token")
	}
	return signed, nil
}

// ValidateToken parses and verifies a token string.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid or expired token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}
