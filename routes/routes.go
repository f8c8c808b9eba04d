package routes

import (
	"github.com/alum-connect/api-go/config"
	"github.com/alum-connect/api-go/controllers"
	"github.com/alum-connect/api-go/middleware"
	"github.com/alum-connect/api-go/realtime"
	"github.com/alum-connect/api-go/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	DB           *gorm.DB
	Cfg          *config.Config
	Verification *services.VerificationService
	Relationship *services.RelationshipService
	Dispatcher   *services.Dispatcher
	Realtime     *realtime.Handler
}

func SetupRoutes(r *gin.Engine, deps Deps) {
	// Initialize controllers
	authController := controllers.NewAuthController(deps.DB, deps.Cfg)
	verificationController := controllers.NewVerificationController(deps.Verification)
	followController := controllers.NewFollowController(deps.Relationship)
	notificationController := controllers.NewNotificationController(deps.Dispatcher)

	// Public routes
	public := r.Group("/api")
	{
		public.POST("/register", authController.Register)
		public.POST("/register/email-check", authController.RegisterEmailCheck)
		public.POST("/login", authController.Login)
	}

	// Realtime connect endpoint authenticates via token query parameter.
	r.GET("/ws", deps.Realtime.Serve)

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(deps.Cfg.JWTSecret))
	{
		protected.GET("/profile", authController.GetProfile)

		SetupVerificationRoutes(protected, verificationController)
		SetupFollowRoutes(protected, followController)
		SetupNotificationRoutes(protected, notificationController)
	}
}
