package handlers

import (
	"errors"
	"net/http"

	"github.com/agentbase/agentbase/internal/agent"
	"github.com/agentbase/agentbase/internal/ai"
	"github.com/agentbase/agentbase/internal/chat"
	"github.com/agentbase/agentbase/internal/common"
	"github.com/agentbase/agentbase/internal/config"
	"github.com/agentbase/agentbase/internal/connector"
	"github.com/agentbase/agentbase/internal/email"
	"github.com/agentbase/agentbase/internal/httpapi/middleware"
	"github.com/agentbase/agentbase/internal/keys"
	"github.com/agentbase/agentbase/internal/secrets"
	"github.com/agentbase/agentbase/internal/store/rabbitmq"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	DB          *gorm.DB
	Cfg         config.Config
	SMTPSetting email.SMTPConfig

	AgentSvc *agent.Service
	KeySvc   *keys.Service
	ConnSvc  *connector.Service
	ChatSvc  *chat.Service

	// Rabbit is nil when the async chat path is disabled.
	Rabbit *rabbitmq.Publisher
}

func NewHandler(db *gorm.DB, cfg config.Config, codec *secrets.Codec, limiter chat.Limiter, pub *rabbitmq.Publisher, registry *ai.Registry) *Handler {
	return &Handler{
		DB:  db,
		Cfg: cfg,
		SMTPSetting: email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
		},
		AgentSvc: agent.NewService(agent.NewRepo(db)),
		KeySvc:   keys.NewService(keys.NewRepo(db), codec),
		ConnSvc:  connector.NewService(db),
		ChatSvc:  chat.NewService(chat.NewRepo(db), registry, codec, limiter),
		Rabbit:   pub,
	}
}

func userIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// failFromErr maps the service error taxonomy onto the coded envelope.
func failFromErr(c *gin.Context, err error) {
	var pce *common.ProviderCallError
	switch {
	case errors.Is(err, common.ErrNotFound):
		common.Fail(c, http.StatusNotFound, 40401, "not found")
	case errors.Is(err, common.ErrDuplicateName):
		common.Fail(c, http.StatusBadRequest, 40001, "name already in use")
	case errors.Is(err, common.ErrInvalidReference):
		common.Fail(c, http.StatusBadRequest, 40002, "invalid reference")
	case errors.Is(err, common.ErrMissingLLMConfig):
		common.Fail(c, http.StatusBadRequest, 40003, "agent has no llm configuration")
	case errors.Is(err, common.ErrUnsupportedProvider):
		common.Fail(c, http.StatusBadRequest, 40004, "unsupported llm provider")
	case errors.Is(err, common.ErrRateLimited):
		common.Fail(c, http.StatusTooManyRequests, 42901, "rate limit exceeded")
	case errors.Is(err, common.ErrCredentialUnavailable):
		common.Fail(c, http.StatusInternalServerError, 50002, "credential unavailable")
	case errors.As(err, &pce):
		common.Fail(c, http.StatusBadGateway, 50201, "llm provider call failed")
	default:
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
	}
}

func (h *Handler) Healthz(c *gin.Context) {
	common.OK(c, gin.H{"status": "ok"})
}
