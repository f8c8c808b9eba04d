package controllers

import (
	"net/http"

	"github.com/alum-connect/api-go/apperrors"
	"github.com/gin-gonic/gin"
)

// respondError maps domain error kinds onto HTTP statuses. Anything that
// is not a domain error is a 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindInvalidState:
		status = http.StatusConflict
	case apperrors.KindAuthorization:
		status = http.StatusForbidden
	case apperrors.KindDuplicate:
		status = http.StatusConflict
	case apperrors.KindSelfFollow:
		status = http.StatusBadRequest
	}

	c.JSON(status, gin.H{"error": err.Error(), "success": false})
}
