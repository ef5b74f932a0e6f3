package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/agentbase/agentbase/internal/common"
	"github.com/agentbase/agentbase/internal/connector"
	"github.com/agentbase/agentbase/internal/walkthrough"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListCatalog(c *gin.Context) {
	list, err := h.ConnSvc.ListCatalog(c.Request.Context(), c.Query("status"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, list)
}

type createConnectorRequest struct {
	ToolID     string          `json:"tool_id" binding:"required"`
	Name       string          `json:"name" binding:"required"`
	ConfigData json.RawMessage `json:"config_data"`
}

type updateConnectorRequest struct {
	Name        *string         `json:"name"`
	ConfigData  json.RawMessage `json:"config_data"`
	SetupStatus *string         `json:"setup_status"`
}

func (h *Handler) CreateConnector(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	var req createConnectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid request body")
		return
	}
	uc, err := h.ConnSvc.Create(c.Request.Context(), userID, connector.CreateParams{
		ToolID:     req.ToolID,
		Name:       req.Name,
		ConfigData: req.ConfigData,
	})
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.Created(c, uc)
}

func (h *Handler) ListConnectors(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	list, err := h.ConnSvc.List(c.Request.Context(), userID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, list)
}

func (h *Handler) GetConnector(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	d, err := h.ConnSvc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, d)
}

func (h *Handler) UpdateConnector(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	var req updateConnectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid request body")
		return
	}
	d, err := h.ConnSvc.Update(c.Request.Context(), userID, c.Param("id"), connector.UpdateParams{
		Name:        req.Name,
		ConfigData:  req.ConfigData,
		SetupStatus: req.SetupStatus,
	})
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, d)
}

func (h *Handler) DeleteConnector(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	if err := h.ConnSvc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"deleted": true})
}

func (h *Handler) LinkConnector(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	already, err := h.ConnSvc.Link(c.Request.Context(), userID, c.Param("agent_id"), c.Param("id"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"linked": true, "already_linked": already})
}

func (h *Handler) UnlinkConnector(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	removed, err := h.ConnSvc.Unlink(c.Request.Context(), userID, c.Param("agent_id"), c.Param("id"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"removed": removed})
}

func (h *Handler) ListAgentConnectors(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	list, err := h.ConnSvc.ListForAgent(c.Request.Context(), userID, c.Param("agent_id"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, list)
}

func (h *Handler) ListWalkthroughs(c *gin.Context) {
	common.OK(c, walkthrough.List())
}

func (h *Handler) GetWalkthrough(c *gin.Context) {
	w := walkthrough.Get(c.Param("name"))
	if w == nil {
		common.Fail(c, http.StatusNotFound, 40402, "no walkthrough for this connector")
		return
	}
	common.OK(c, w)
}
