package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/agentbase/agentbase/internal/auth"
	"github.com/agentbase/agentbase/internal/common"
	"github.com/agentbase/agentbase/internal/email"
	"github.com/agentbase/agentbase/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const tokenTTL = 24 * time.Hour

// Status reports whether first-run setup is still required. The flag flips
// once the first superuser exists.
func (h *Handler) Status(c *gin.Context) {
	var count int64
	if err := h.DB.WithContext(c.Request.Context()).
		Model(&models.User{}).Where("is_superuser = ?", true).Count(&count).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, gin.H{"setup_required": count == 0})
}

type setupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	APIProvider string `json:"api_provider" binding:"required"`
	APIKey      string `json:"api_key" binding:"required"`
}

// Setup bootstraps the instance: first superuser plus their first provider
// key in one shot. Refused once any superuser exists.
func (h *Handler) Setup(c *gin.Context) {
	var req setupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid request body")
		return
	}

	ctx := c.Request.Context()
	var count int64
	if err := h.DB.WithContext(ctx).
		Model(&models.User{}).Where("is_superuser = ?", true).Count(&count).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	if count > 0 {
		common.Fail(c, http.StatusForbidden, 40301, "setup already completed")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	user := models.User{
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    true,
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		common.Fail(c, http.StatusBadRequest, 40005, "email already registered")
		return
	}
	if _, err := h.KeySvc.Create(ctx, user.ID, req.APIProvider, req.APIKey); err != nil {
		failFromErr(c, err)
		return
	}

	token, err := auth.SignJWT(user.ID, h.Cfg.JWTSecret, tokenTTL)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.Created(c, gin.H{
		"user":         user,
		"access_token": token,
		"token_type":   "bearer",
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid request body")
		return
	}

	var user models.User
	err := h.DB.WithContext(c.Request.Context()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !auth.CheckPassword(user.HashedPassword, req.Password)) {
		common.Fail(c, http.StatusUnauthorized, 40103, "incorrect email or password")
		return
	}
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	if !user.IsActive {
		common.Fail(c, http.StatusUnauthorized, 40104, "account is inactive")
		return
	}

	token, err := auth.SignJWT(user.ID, h.Cfg.JWTSecret, tokenTTL)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, gin.H{"access_token": token, "token_type": "bearer"})
}

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid request body")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	user := models.User{
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    false,
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		common.Fail(c, http.StatusBadRequest, 40005, "email already registered")
		return
	}

	if h.SMTPSetting.Enabled() {
		go func(to string) {
			body := "Welcome! Your account is ready. Sign in and add a provider key to start chatting with your agents."
			if err := email.SendText(h.SMTPSetting, to, "Welcome aboard", body); err != nil {
				log.Printf("welcome email to %s failed: %v", to, err)
			}
		}(user.Email)
	}

	common.Created(c, user)
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "authentication required")
		return
	}
	var user models.User
	err := h.DB.WithContext(c.Request.Context()).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		common.Fail(c, http.StatusUnauthorized, 40102, "invalid or expired token")
		return
	}
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, user)
}
