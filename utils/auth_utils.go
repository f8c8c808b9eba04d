package utils

import (
	"github.com/gin-gonic/gin"
)

// UserClaims is the authenticated identity threaded through every
// operation. College is the reviewer's institution scope.
type UserClaims struct {
	UserID  uint   `json:"user_id"`
	Role    string `json:"role"`
	College string `json:"college"`
}

type contextKey string

const UserContextKey contextKey = "user"

func GetUser(c *gin.Context) *UserClaims {
	user, exists := c.Get(string(UserContextKey))
	if !exists {
		return nil
	}
	if userClaims, ok := user.(*UserClaims); ok {
		return userClaims
	}
	return nil
}
