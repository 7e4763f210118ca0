package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

// ErrUnauthenticated - the credential is invalid or expired.
var ErrUnauthenticated = errors.New("unauthenticated")

// InitJWT installs the signing secret. Config owns reading and validating
// the environment; an empty secret here is a programming error.
func InitJWT(secret string) {
	if secret == "" {
		panic("jwt secret is empty")
	}
	jwtSecret = []byte(secret)
}

// GenerateJWT issues the long-lived credential for a player id.
func GenerateJWT(playerID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"player_id": playerID,
		"exp":       now.Add(24 * time.Hour).Unix(),
		"iat":       now.Unix(),
		"nbf":       now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ResolvePlayerID maps a bearer credential to the stable player id.
func ResolvePlayerID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrUnauthenticated
	}

	playerID, ok := claims["player_id"].(string)
	if !ok || playerID == "" {
		return "", ErrUnauthenticated
	}
	return playerID, nil
}
