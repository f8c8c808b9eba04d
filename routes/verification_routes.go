package routes

import (
	"github.com/alum-connect/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupVerificationRoutes(protected *gin.RouterGroup, verificationController *controllers.VerificationController) {
	verification := protected.Group("/verification")
	{
		verification.GET("/pending", verificationController.ListPending)
		verification.POST("/:accountId/decide", verificationController.Decide)
	}
}
