package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/detekoi/iron-golem/api/handlers"
	_ "github.com/detekoi/iron-golem/docs"
	"github.com/detekoi/iron-golem/logger"
	"github.com/detekoi/iron-golem/sessions"
	"github.com/detekoi/iron-golem/stores"
)

// Deps carries the constructed collaborators the routes need. Model is
// the chat/summarize/title surface; the gemini client satisfies all
// three.
type Deps struct {
	Model interface {
		sessions.ChatModel
		handlers.Summarizer
		handlers.Titler
	}
	Store          stores.SessionStore
	Log            *logger.Logger
	AllowedOrigins []string
}

// New wires the full route table.
func New(deps Deps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", handlers.HealthHandler(deps.Store))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		api.POST("/chat", handlers.ChatHandler(deps.Model, deps.Log))
		api.GET("/chat/ws", handlers.WSChatHandler(deps.Model, deps.Log))
		api.POST("/summary", handlers.SummaryHandler(deps.Model, deps.Log))
		api.POST("/generate-title", handlers.TitleHandler(deps.Model, deps.Log))

		api.GET("/sessions", handlers.ListSessionsHandler(deps.Store, deps.Log))
		api.POST("/sessions", handlers.CreateSessionHandler(deps.Store, deps.Log))
		api.GET("/sessions/active", handlers.ActiveSessionHandler(deps.Store, deps.Log))
		api.PUT("/sessions/active", handlers.SetActiveSessionHandler(deps.Store, deps.Log))
		api.GET("/sessions/:id", handlers.GetSessionHandler(deps.Store, deps.Log))
		api.PUT("/sessions/:id", handlers.SaveSessionHandler(deps.Store, deps.Log))
		api.PUT("/sessions/:id/summary", handlers.SaveSummaryHandler(deps.Store, deps.Log))
		api.DELETE("/sessions/:id", handlers.DeleteSessionHandler(deps.Store, deps.Log))
	}

	return r
}
