package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is the iss claim of every access token.
const Issuer = "theboolean"

// refreshTokenBytes is the entropy of a raw refresh token.
const refreshTokenBytes = 32

// Claims is the access token payload. The role travels in the token so
// admin routes can authorize without a database read.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"uid"`
	Username string `json:"usr"`
	Role     string `json:"role"`
}

// Can reports whether the token's role grants min.
func (c *Claims) Can(min Role) bool {
	return c != nil && Role(c.Role).AtLeast(min)
}

// RefreshToken is a freshly minted opaque refresh token. Raw goes to the
// client once; only Hash is persisted.
type RefreshToken struct {
	Raw       string
	Hash      string
	ExpiresAt time.Time
}

// TokenService signs HS256 access tokens and mints refresh tokens.
type TokenService struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService creates a TokenService signing with key.
func NewTokenService(key []byte, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{key: key, accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// IssueAccessToken signs an access token for user.
func (s *TokenService) IssueAccessToken(user *User) (string, error) {
	issued := s.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.accessTTL)),
		},
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})
	signed, err := tok.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken verifies signature, algorithm, issuer and expiry.
// Every failure wraps ErrInvalidToken.
func (s *TokenService) ValidateAccessToken(raw string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return &claims, nil
}

// GenerateRefreshToken mints a random refresh token valid for the
// configured refresh lifetime.
func (s *TokenService) GenerateRefreshToken() (RefreshToken, error) {
	var b [refreshTokenBytes]byte
	if _, err := rand.Read(b[:]); err != nil {
		return RefreshToken{}, fmt.Errorf("generate refresh token: %w", err)
	}
	raw := hex.EncodeToString(b[:])
	return RefreshToken{
		Raw:       raw,
		Hash:      HashToken(raw),
		ExpiresAt: s.now().Add(s.refreshTTL),
	}, nil
}

// AccessTokenTTL is the access token lifetime.
func (s *TokenService) AccessTokenTTL() time.Duration { return s.accessTTL }

// RefreshTokenTTL is the refresh token lifetime.
func (s *TokenService) RefreshTokenTTL() time.Duration { return s.refreshTTL }

// HashToken is the hex SHA-256 under which refresh tokens are stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
