package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quietpage/journal/config"
	"github.com/quietpage/journal/models"
)

// TokenTTL is the lifetime of every issued session token.
const TokenTTL = time.Hour

// Claims defines the session token payload. Both registration and login
// issue this same full claim set. The embedded role reflects the user's
// role at issue time and is informational only; authorization always
// re-resolves the live role from the store.
type Claims struct {
	UserID      uint        `json:"user_id"`
	Username    string      `json:"username"`
	DisplayName *string     `json:"display_name"`
	Role        models.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed session token for the given user.
func GenerateToken(user *models.User) (string, error) {
	cfg := config.Get()
	now := time.Now()

	claims := Claims{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken validates signature and expiry and returns the claims.
func ParseToken(tokenStr string) (*Claims, error) {
	cfg := config.Get()
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// IssuedBeforePasswordChange reports whether the token was issued before
// the user's most recent password change, which invalidates it and
// forces a re-login. Comparison is at second granularity to match the
// resolution of the iat claim.
func IssuedBeforePasswordChange(claims *Claims, user *models.User) bool {
	if user.PasswordChangedAt == nil || claims.IssuedAt == nil {
		return false
	}
	return claims.IssuedAt.Unix() < user.PasswordChangedAt.Unix()
}
