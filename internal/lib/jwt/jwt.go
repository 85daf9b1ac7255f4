// Package jwt issues and verifies the stateless HS256 bearer tokens the
// service hands out on signup and login. A token is a claim of
// {userId, exp}; validity is purely signature plus expiry, there is no
// revocation.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: malformed input, bad
// signature and expiry all collapse into it so callers cannot leak which
// check failed.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

func NewToken(userID int64, secret string, ttl time.Duration) (string, error) {
	const op = "jwt.NewToken"

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

func ParseToken(tokenStr, secret string) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	return claims.UserID, nil
}
