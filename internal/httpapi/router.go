package httpapi

import (
	"net/http"
	"time"

	"github.com/agentbase/agentbase/internal/ai"
	"github.com/agentbase/agentbase/internal/chat"
	"github.com/agentbase/agentbase/internal/common"
	"github.com/agentbase/agentbase/internal/config"
	"github.com/agentbase/agentbase/internal/httpapi/handlers"
	"github.com/agentbase/agentbase/internal/httpapi/middleware"
	"github.com/agentbase/agentbase/internal/secrets"
	"github.com/agentbase/agentbase/internal/store/rabbitmq"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func NewRouter(db *gorm.DB, cfg config.Config, codec *secrets.Codec, limiter chat.Limiter, pub *rabbitmq.Publisher) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(db, cfg, codec, limiter, pub, ai.NewRegistry())

	r.GET("/healthz", h.Healthz)

	v1 := r.Group("/api/v1")
	v1.GET("/status", h.Status)
	v1.POST("/setup", h.Setup)
	v1.POST("/auth/token", h.Login)
	v1.POST("/users", h.CreateUser)

	authGroup := v1.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))

	authGroup.GET("/users/me", h.Me)

	authGroup.POST("/keys", h.CreateKey)
	authGroup.GET("/keys", h.ListKeys)
	authGroup.DELETE("/keys/:id", h.DeleteKey)

	authGroup.GET("/llm-configs", h.ListLLMConfigs)
	authGroup.GET("/llm-configs/:id", h.GetLLMConfig)

	authGroup.POST("/agents", h.CreateAgent)
	authGroup.GET("/agents", h.ListAgents)
	authGroup.GET("/agents/:id", h.GetAgent)
	authGroup.PUT("/agents/:id", h.UpdateAgent)
	authGroup.DELETE("/agents/:id", h.DeleteAgent)

	authGroup.POST("/agents/:id/chat", h.SendChat)
	authGroup.GET("/agents/:id/chat", h.ChatHistory)
	authGroup.DELETE("/agents/:id/chat", h.ClearChat)
	authGroup.POST("/agents/:id/chat/async", h.SendChatAsync)
	authGroup.GET("/chat/jobs/:id", h.GetChatJob)

	authGroup.GET("/connectors/catalog", h.ListCatalog)
	authGroup.POST("/connectors/user", h.CreateConnector)
	authGroup.GET("/connectors/user", h.ListConnectors)
	authGroup.GET("/connectors/user/:id", h.GetConnector)
	authGroup.PATCH("/connectors/user/:id", h.UpdateConnector)
	authGroup.DELETE("/connectors/user/:id", h.DeleteConnector)
	authGroup.POST("/connectors/user/:id/link/:agent_id", h.LinkConnector)
	authGroup.DELETE("/connectors/user/:id/link/:agent_id", h.UnlinkConnector)
	authGroup.GET("/connectors/agent/:agent_id", h.ListAgentConnectors)

	authGroup.GET("/connector-setup", h.ListWalkthroughs)
	authGroup.GET("/connector-setup/:name", h.GetWalkthrough)

	return r
}
