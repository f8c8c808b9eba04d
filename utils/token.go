package utils

import (
	"fmt"
	"time"

	"github.com/alum-connect/api-go/models"
	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// GenerateToken issues a signed bearer token for the given account.
func GenerateToken(user *models.User, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"college": user.College,
		"jti":     uuid.NewString(),
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a bearer token and resolves it to claims. Used by
// both the HTTP middleware and the websocket handshake.
func ParseToken(tokenString, secret string) (*UserClaims, error) {
	claims := jwt.MapClaims{}
	parsedToken, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsedToken.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	role, _ := claims["role"].(string)
	college, _ := claims["college"].(string)

	return &UserClaims{
		UserID:  uint(userID),
		Role:    role,
		College: college,
	}, nil
}
