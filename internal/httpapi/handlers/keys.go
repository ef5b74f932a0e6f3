package handlers

import (
	"net/http"

	"github.com/agentbase/agentbase/internal/common"
	"github.com/gin-gonic/gin"
)

type createKeyRequest struct {
	ProviderName string `json:"provider_name" binding:"required"`
	APIKey       string `json:"api_key" binding:"required"`
}

func (h *Handler) CreateKey(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	var req createKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid request body")
		return
	}
	key, err := h.KeySvc.Create(c.Request.Context(), userID, req.ProviderName, req.APIKey)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.Created(c, key)
}

func (h *Handler) ListKeys(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	list, err := h.KeySvc.List(c.Request.Context(), userID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, list)
}

func (h *Handler) DeleteKey(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	if err := h.KeySvc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"deleted": true})
}

func (h *Handler) ListLLMConfigs(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	list, err := h.KeySvc.ListConfigs(c.Request.Context(), userID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, list)
}

func (h *Handler) GetLLMConfig(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	cfg, err := h.KeySvc.GetConfig(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, cfg)
}
