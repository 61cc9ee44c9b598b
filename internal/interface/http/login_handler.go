package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/application"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/domain/entity"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/interface/middleware"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/pkg/response"
)

const (
	msgNoData       = "No data provided"
	msgUserNotFound = "User not found"
	msgTokenInvalid = "The token has expired or an invalid request has been sent"
	msgInternal     = "internal server error"
)

// LoginService is what LoginHandler needs from the application layer.
type LoginService interface {
	Authenticate(ctx context.Context, cred entity.LoginCredential) (*entity.User, error)
	IssueToken(u *entity.User) (string, time.Time, error)
	RecordAudit(ctx context.Context, e entity.AuditEntry)
}

type LoginHandler struct {
	Svc    LoginService
	Logger *logrus.Logger
}

func NewLoginHandler(svc LoginService, logger *logrus.Logger) *LoginHandler {
	return &LoginHandler{Svc: svc, Logger: logger}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/login
func (h *LoginHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, msgNoData, nil)
		return
	}

	ctx := c.Request.Context()
	user, err := h.Svc.Authenticate(ctx, entity.LoginCredential{Username: req.Username, Password: req.Password})
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			h.Svc.RecordAudit(ctx, auditEntry(c, req.Username, entity.AuditLoginFailure, nil))
			response.Error[any](c, http.StatusNotFound, msgUserNotFound, nil)
			return
		}
		h.Logger.WithError(err).Error("authenticate failed")
		response.Error[any](c, http.StatusInternalServerError, msgInternal, nil)
		return
	}

	token, exp, err := h.Svc.IssueToken(user)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, msgInternal, nil)
		return
	}
	h.Svc.RecordAudit(ctx, auditEntry(c, user.Username, entity.AuditLoginSuccess, map[string]any{"role": user.Role}))
	response.Success(c, http.StatusOK, token, "login successful", gin.H{"token_type": "Bearer", "expires_at": exp})
}

// GetRole GET /api/login/role
func (h *LoginHandler) GetRole(c *gin.Context) {
	role := c.GetString(middleware.CtxUserRoleKey)
	if role == "" {
		response.Error[any](c, http.StatusNotFound, msgTokenInvalid, nil)
		return
	}
	response.Success(c, http.StatusOK, role, "role", nil)
}

func auditEntry(c *gin.Context, username, action string, metadata map[string]any) entity.AuditEntry {
	return entity.AuditEntry{
		Username:  username,
		Action:    action,
		IP:        middleware.ClientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		Metadata:  metadata,
	}
}
