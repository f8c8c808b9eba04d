package routes

import (
	"github.com/alum-connect/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupFollowRoutes(protected *gin.RouterGroup, followController *controllers.FollowController) {
	protected.POST("/users/:userId/follow", followController.RequestFollow)
	protected.GET("/following", followController.ListFollowing)

	requests := protected.Group("/follow-requests")
	{
		requests.GET("", followController.ListIncoming)
		requests.POST("/:requestId/respond", followController.RespondFollow)
	}
}
