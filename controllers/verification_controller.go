package controllers

import (
	"net/http"
	"strconv"

	"github.com/alum-connect/api-go/services"
	"github.com/alum-connect/api-go/utils"
	"github.com/gin-gonic/gin"
)

type VerificationController struct {
	Service *services.VerificationService
}

func NewVerificationController(service *services.VerificationService) *VerificationController {
	return &VerificationController{Service: service}
}

// ListPending godoc
// @Summary List pending registrations for the reviewer's institution
// @Tags verification
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /verification/pending [get]
func (vc *VerificationController) ListPending(c *gin.Context) {
	claims := utils.GetUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	users, err := vc.Service.ListPending(claims)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "pending": users})
}

// Decide godoc
// @Summary Approve or reject a pending registration
// @Tags verification
// @Accept json
// @Produce json
// @Param accountId path string true "Account ID"
// @Success 200 {object} map[string]interface{}
// @Router /verification/{accountId}/decide [post]
func (vc *VerificationController) Decide(c *gin.Context) {
	claims := utils.GetUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	accountID, err := strconv.ParseUint(c.Param("accountId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account id", "success": false})
		return
	}

	var input struct {
		Decision string `json:"decision" binding:"required,oneof=approve reject"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	if err := vc.Service.Decide(uint(accountID), input.Decision, claims); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Decision recorded"})
}
