package controllers

import (
	"net/http"
	"strconv"

	"github.com/alum-connect/api-go/services"
	"github.com/alum-connect/api-go/utils"
	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	Dispatcher *services.Dispatcher
}

func NewNotificationController(dispatcher *services.Dispatcher) *NotificationController {
	return &NotificationController{Dispatcher: dispatcher}
}

// ListUnread godoc
// @Summary List the caller's unread notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /notifications/unread [get]
func (nc *NotificationController) ListUnread(c *gin.Context) {
	claims := utils.GetUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	notifications, err := nc.Dispatcher.ListUnread(claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": notifications})
}

// UnreadCount godoc
// @Summary Count the caller's unread notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /notifications/unread/count [get]
func (nc *NotificationController) UnreadCount(c *gin.Context) {
	claims := utils.GetUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	count, err := nc.Dispatcher.UnreadCount(claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]interface{}
// @Router /notifications/{id}/read [post]
func (nc *NotificationController) MarkRead(c *gin.Context) {
	claims := utils.GetUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id", "success": false})
		return
	}

	if err := nc.Dispatcher.MarkRead(uint(notificationID), claims.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification marked read"})
}
