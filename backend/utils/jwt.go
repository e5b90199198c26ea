package utils

import (
	"errors"
	"time"

	"coursemarket/backend/config"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid session token")

// GenerateSessionToken mints an HS256 token carrying the user ID and the
// session ID. The session ID lets the token be revoked before its expiry by
// deleting the matching session-store entry.
func GenerateSessionToken(userID uint, sessionID string, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    userID,
		"session_id": sessionID,
		"exp":        time.Now().Add(time.Duration(cfg.SessionTTLHours) * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

func ParseSessionToken(tokenString string, cfg *config.Config) (uint, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return 0, "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, "", ErrInvalidToken
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, "", ErrInvalidToken
	}

	sessionID, ok := claims["session_id"].(string)
	if !ok || sessionID == "" {
		return 0, "", ErrInvalidToken
	}

	return uint(userIDFloat), sessionID, nil
}
