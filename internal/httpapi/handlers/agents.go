package handlers

import (
	"net/http"

	"github.com/agentbase/agentbase/internal/agent"
	"github.com/agentbase/agentbase/internal/common"
	"github.com/gin-gonic/gin"
)

type createAgentRequest struct {
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	SystemPrompt string  `json:"system_prompt"`
	LLMConfigID  *string `json:"llm_config_id"`
}

type updateAgentRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	SystemPrompt *string `json:"system_prompt"`
	LLMConfigID  *string `json:"llm_config_id"`
}

func (h *Handler) CreateAgent(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	var req createAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid request body")
		return
	}
	a, err := h.AgentSvc.Create(c.Request.Context(), userID, agent.CreateParams{
		Name:         req.Name,
		Description:  req.Description,
		SystemPrompt: req.SystemPrompt,
		LLMConfigID:  req.LLMConfigID,
	})
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.Created(c, a)
}

func (h *Handler) ListAgents(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	list, err := h.AgentSvc.List(c.Request.Context(), userID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, list)
}

func (h *Handler) GetAgent(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	a, err := h.AgentSvc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, a)
}

func (h *Handler) UpdateAgent(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	var req updateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid request body")
		return
	}
	a, err := h.AgentSvc.Update(c.Request.Context(), userID, c.Param("id"), agent.UpdateParams{
		Name:         req.Name,
		Description:  req.Description,
		SystemPrompt: req.SystemPrompt,
		LLMConfigID:  req.LLMConfigID,
	})
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, a)
}

func (h *Handler) DeleteAgent(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	if err := h.AgentSvc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"deleted": true})
}
