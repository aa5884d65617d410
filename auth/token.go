package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"finsight/api/models"
)

var (
	// ErrExpired is returned for a well-formed token past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrInvalid is returned for malformed tokens and bad signatures.
	ErrInvalid = errors.New("invalid token")
)

// Claims is the self-contained session token payload. TokenVersion is the
// account's version counter at issue time; the middleware compares it against
// the live value, which is how logout revokes every outstanding token without
// a server-side blocklist.
type Claims struct {
	UserID         string      `json:"user_id"`
	Email          string      `json:"email"`
	Name           string      `json:"name"`
	OrganizationID string      `json:"organization_id,omitempty"`
	Role           models.Role `json:"role,omitempty"`
	TokenVersion   int         `json:"token_version"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), issuer: "finsight", ttl: ttl}
}

// Issue signs a token for the user with their current token version and
// organization context.
func (s *TokenService) Issue(user *models.User, orgID string, role models.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:         user.ID,
		Email:          user.Email,
		Name:           user.Name,
		OrganizationID: orgID,
		Role:           role,
		TokenVersion:   user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, distinguishing expiry from every other
// failure.
func (s *TokenService) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !token.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}

// ExtractBearer pulls the token out of an Authorization header value.
func ExtractBearer(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}
