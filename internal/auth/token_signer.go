package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"heli-training/logbook/internal/common"
	"heli-training/logbook/internal/constants"
)

const revokedTokenPrefix = "revoked_token:"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

// sessionClaims is the JWT payload of a session token.
type sessionClaims struct {
	Name string         `json:"name"`
	Role constants.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenSigner issues and validates HMAC-signed session tokens.
// Revoked token ids are kept in the cache until the token would have expired.
type TokenSigner struct {
	secretKey []byte
	ttl       time.Duration
	revoked   common.CacheInterface
	now       func() time.Time
}

// NewTokenSigner creates a new token signer
func NewTokenSigner(secretKey []byte, ttl time.Duration, revoked common.CacheInterface) *TokenSigner {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenSigner{
		secretKey: secretKey,
		ttl:       ttl,
		revoked:   revoked,
		now:       time.Now,
	}
}

// Issue signs a session token for the given user.
func (s *TokenSigner) Issue(username, name string, role constants.Role) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := sessionClaims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	// Sign with HMAC
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// Validate parses a session token and returns its claims.
func (s *TokenSigner) Validate(ctx context.Context, tokenString string) (*UserClaims, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	if s.revoked != nil {
		if _, found := s.revoked.Get(revokedTokenPrefix + claims.ID); found {
			return nil, ErrTokenRevoked
		}
	}

	return &UserClaims{
		Username:  claims.Subject,
		Name:      claims.Name,
		RoleValue: claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
		SourceVal: constants.RequestSourceAPI,
	}, nil
}

// Revoke rejects the token in future Validate calls.
func (s *TokenSigner) Revoke(claims *UserClaims) {
	if s.revoked == nil || claims == nil || claims.TokenID == "" {
		return
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return
	}
	s.revoked.Set(revokedTokenPrefix+claims.TokenID, true, ttl)
}
