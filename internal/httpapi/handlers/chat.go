package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/agentbase/agentbase/internal/common"
	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) SendChat(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid request body")
		return
	}
	turn, err := h.ChatSvc.SendMessage(c.Request.Context(), userID, c.Param("id"), req.Message)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, turn)
}

func (h *Handler) ChatHistory(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			common.Fail(c, http.StatusBadRequest, 10002, "limit must be an integer")
			return
		}
		limit = n
	}
	turns, err := h.ChatSvc.History(c.Request.Context(), userID, c.Param("id"), limit)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, turns)
}

func (h *Handler) ClearChat(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	if err := h.ChatSvc.Clear(c.Request.Context(), userID, c.Param("id")); err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"cleared": true})
}

// SendChatAsync enqueues the message as a job and publishes it for the
// worker. A repeated Idempotency-Key returns the existing job unchanged.
func (h *Handler) SendChatAsync(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid request body")
		return
	}
	if h.Rabbit == nil {
		common.Fail(c, http.StatusServiceUnavailable, 50301, "async chat is not enabled")
		return
	}

	var idemKey *string
	if raw := c.GetHeader("Idempotency-Key"); raw != "" {
		if len(raw) > 128 {
			common.Fail(c, http.StatusBadRequest, 10003, "idempotency key too long")
			return
		}
		idemKey = &raw
	}

	job, created, err := h.ChatSvc.EnqueueJob(c.Request.Context(), userID, c.Param("id"), req.Message, idemKey)
	if err != nil {
		failFromErr(c, err)
		return
	}
	if created {
		if err := h.Rabbit.PublishJob(c.Request.Context(), job.ID); err != nil {
			log.Printf("publish job %s: %v", job.ID, err)
			common.Fail(c, http.StatusInternalServerError, 50003, "failed to enqueue job")
			return
		}
		common.Created(c, job)
		return
	}
	common.OK(c, job)
}

func (h *Handler) GetChatJob(c *gin.Context) {
	userID, _ := userIDFromContext(c)
	job, err := h.ChatSvc.GetJob(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, job)
}
