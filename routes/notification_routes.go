package routes

import (
	"github.com/alum-connect/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupNotificationRoutes(protected *gin.RouterGroup, notificationController *controllers.NotificationController) {
	notifications := protected.Group("/notifications")
	{
		notifications.GET("/unread", notificationController.ListUnread)
		notifications.GET("/unread/count", notificationController.UnreadCount)
		notifications.POST("/:id/read", notificationController.MarkRead)
	}
}
