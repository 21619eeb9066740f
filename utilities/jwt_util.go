package utilities

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers malformed, forged and expired tokens alike.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carried by both access and refresh tokens.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenSubject identifies the account a token pair is issued for.
type TokenSubject struct {
	UserID   uint
	Username string
	Role     string
}

// TokenManager issues and verifies HS256 access/refresh token pairs. Access
// and refresh tokens are signed with different secrets so one can never be
// used in place of the other.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenManager builds a TokenManager.
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// GenerateTokens creates both access and refresh tokens.
func (m *TokenManager) GenerateTokens(sub TokenSubject) (string, string, error) {
	access, err := m.sign(sub, m.accessSecret, m.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := m.sign(sub, m.refreshSecret, m.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("sign refresh token: %w", err)
	}
	return access, refresh, nil
}

// ValidateToken verifies the token and extracts claims.
func (m *TokenManager) ValidateToken(tokenStr string, isRefresh bool) (*Claims, error) {
	secret := m.accessSecret
	if isRefresh {
		secret = m.refreshSecret
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshTokens issues a new pair from a valid refresh token. The returned
// claims are those of the refresh token, so callers can re-check the account.
func (m *TokenManager) RefreshTokens(refreshToken string) (string, string, *Claims, error) {
	claims, err := m.ValidateToken(refreshToken, true)
	if err != nil {
		return "", "", nil, err
	}
	access, refresh, err := m.GenerateTokens(TokenSubject{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	})
	if err != nil {
		return "", "", nil, err
	}
	return access, refresh, claims, nil
}

func (m *TokenManager) sign(sub TokenSubject, secret []byte, ttl time.Duration) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID:   sub.UserID,
		Username: sub.Username,
		Role:     sub.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.FormatUint(uint64(sub.UserID), 10),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
