// Package jwt implements token issuance and validation with signed JWTs
// for access tokens and opaque stored tokens for refresh.
package jwt

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/karthiBP/aegis-incidents/internal/domain"
	"github.com/karthiBP/aegis-incidents/internal/identity"
)

// Config holds authenticator settings.
type Config struct {
	SecretKey  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Authenticator implements identity.Authenticator. It also satisfies
// httputil.TokenValidator via ValidateToken.
type Authenticator struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	repo       identity.Repository
	now        func() time.Time
}

type accessClaims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// NewAuthenticator creates a new JWT authenticator.
func NewAuthenticator(cfg Config, repo identity.Repository) (*Authenticator, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("jwt secret key is required")
	}
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}

	return &Authenticator{
		secret:     []byte(cfg.SecretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		repo:       repo,
		now:        time.Now,
	}, nil
}

// GenerateTokens issues a new access/refresh pair for the user. The
// refresh token is opaque and persisted for later rotation.
func (a *Authenticator) GenerateTokens(ctx context.Context, user *domain.User) (*identity.TokenPair, error) {
	access, err := a.signAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	refresh, err := randomToken()
	if err != nil {
		return nil, err
	}

	err = a.repo.SaveRefreshToken(ctx, &domain.RefreshToken{
		Token:     refresh,
		UserID:    user.ID,
		ExpiresAt: a.now().Add(a.refreshTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &identity.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(a.accessTTL.Seconds()),
	}, nil
}

// ValidateToken parses and verifies an access token, returning the
// subject and role.
func (a *Authenticator) ValidateToken(_ context.Context, token string) (string, domain.Role, error) {
	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", "", identity.ErrInvalidToken
	}
	return claims.Subject, claims.Role, nil
}

// RefreshTokens rotates a stored refresh token into a new pair. The old
// token is deleted whether or not issuance succeeds.
func (a *Authenticator) RefreshTokens(ctx context.Context, refreshToken string) (*identity.TokenPair, error) {
	stored, err := a.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return nil, identity.ErrInvalidToken
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	if stored == nil || a.now().After(stored.ExpiresAt) {
		return nil, identity.ErrInvalidToken
	}

	if err := a.repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("delete refresh token: %w", err)
	}

	user, err := a.repo.GetUserByID(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return a.GenerateTokens(ctx, user)
}

// RevokeRefreshToken deletes the stored refresh token.
func (a *Authenticator) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	return a.repo.DeleteRefreshToken(ctx, refreshToken)
}

func (a *Authenticator) signAccessToken(userID string, role domain.Role) (string, error) {
	now := a.now()
	claims := accessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
