package controllers

import (
	"net/http"
	"strconv"

	"github.com/alum-connect/api-go/services"
	"github.com/alum-connect/api-go/utils"
	"github.com/gin-gonic/gin"
)

type FollowController struct {
	Service *services.RelationshipService
}

func NewFollowController(service *services.RelationshipService) *FollowController {
	return &FollowController{Service: service}
}

// RequestFollow godoc
// @Summary Request to follow another member
// @Tags follow
// @Produce json
// @Param userId path string true "Target user ID"
// @Success 201 {object} map[string]interface{}
// @Router /users/{userId}/follow [post]
func (fc *FollowController) RequestFollow(c *gin.Context) {
	claims := utils.GetUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id", "success": false})
		return
	}

	request, err := fc.Service.RequestFollow(claims.UserID, uint(targetID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "request": request})
}

// RespondFollow godoc
// @Summary Accept or reject an incoming follow request
// @Tags follow
// @Accept json
// @Produce json
// @Param requestId path string true "Follow request ID"
// @Success 200 {object} map[string]interface{}
// @Router /follow-requests/{requestId}/respond [post]
func (fc *FollowController) RespondFollow(c *gin.Context) {
	claims := utils.GetUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	requestID, err := strconv.ParseUint(c.Param("requestId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id", "success": false})
		return
	}

	var input struct {
		Decision string `json:"decision" binding:"required,oneof=accept reject"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	request, err := fc.Service.RespondFollow(uint(requestID), claims.UserID, input.Decision)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "request": request})
}

// ListIncoming godoc
// @Summary List follow requests addressed to the caller
// @Tags follow
// @Produce json
// @Param status query string false "Status filter (pending, accepted, rejected)"
// @Success 200 {object} map[string]interface{}
// @Router /follow-requests [get]
func (fc *FollowController) ListIncoming(c *gin.Context) {
	claims := utils.GetUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	requests, err := fc.Service.ListIncoming(claims.UserID, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "requests": requests})
}

// ListFollowing godoc
// @Summary List members the caller is following
// @Tags follow
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /following [get]
func (fc *FollowController) ListFollowing(c *gin.Context) {
	claims := utils.GetUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	edges, err := fc.Service.ListFollowing(claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "following": edges})
}
