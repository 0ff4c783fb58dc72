package http

import (
	"github.com/gin-gonic/gin"

	"repbep/internal/bootstrap"
	"repbep/internal/pkg/logger"
	"repbep/internal/transport/http/handler"
	"repbep/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	if app.Config.App.GinMode != "" {
		gin.SetMode(app.Config.App.GinMode)
	}
	router := gin.New()
	router.Use(
		middleware.RequestLogger(logger.Module(app.Logger, "http")),
		gin.Recovery(),
		middleware.CORS(app.Config.App.CORSOrigins),
	)

	healthHandler := handler.NewHealthHandler(app)
	authHandler := handler.NewAuthHandler(app.Auth)
	profileHandler := handler.NewProfileHandler(app.Auth)
	projectHandler := handler.NewProjectHandler(app.Projects)
	chatHandler := handler.NewChatHandler(app.Chat)
	requireAuth := middleware.AuthJWT(app.Config.Auth.JWTSecret)

	router.GET("/healthz", healthHandler.Check)

	api := router.Group("/api")
	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", requireAuth, authHandler.Me)

	api.PUT("/profile", requireAuth, profileHandler.Update)

	projectGroup := api.Group("/projects")
	projectGroup.Use(requireAuth)
	projectGroup.GET("", projectHandler.List)
	projectGroup.POST("", projectHandler.Create)
	projectGroup.PUT("/:id", projectHandler.Update)
	projectGroup.DELETE("/:id", projectHandler.Delete)

	chatGroup := api.Group("/chat")
	chatGroup.Use(requireAuth)
	chatGroup.POST("/message", chatHandler.SendMessage)
	chatGroup.GET("/conversations", chatHandler.ListConversations)
	// :id is a project id here and a conversation id below; gin needs one name per segment.
	chatGroup.GET("/conversations/:id", chatHandler.ListProjectConversations)
	chatGroup.DELETE("/conversations/:id/session", chatHandler.ClearSession)

	return router
}
