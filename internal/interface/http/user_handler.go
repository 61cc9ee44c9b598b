package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/application"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/domain/entity"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/interface/middleware"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/pkg/response"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/pkg/validation"
)

const msgDuplicateUser = "User with this username or email already exists"

// UserService is what UserHandler needs from the application layer.
type UserService interface {
	RegistrationCheck(ctx context.Context, candidate entity.User) (bool, error)
	Register(ctx context.Context, candidate entity.User) (*entity.User, error)
	GetUser(ctx context.Context, id string) (*entity.User, error)
	RecordAudit(ctx context.Context, e entity.AuditEntry)
}

type UserHandler struct {
	Svc    UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,uname"`
	Password string `json:"password" binding:"required,pwd"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Role     string `json:"role" binding:"omitempty,oneof=reader librarian"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Register POST /api/user
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			response.Error[any](c, http.StatusBadRequest, msgNoData, nil)
			return
		}
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if len(strings.TrimSpace(req.Username)) < 3 {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"username": "must be between 3 and 64 characters long"})
		return
	}

	ctx := c.Request.Context()
	candidate := entity.User{Username: req.Username, Password: req.Password, Email: req.Email, Role: req.Role}

	taken, err := h.Svc.RegistrationCheck(ctx, candidate)
	if err != nil {
		h.Logger.WithError(err).Error("registration check failed")
		response.Error[any](c, http.StatusInternalServerError, msgInternal, nil)
		return
	}
	if taken {
		h.Svc.RecordAudit(ctx, auditEntry(c, req.Username, entity.AuditRegisterDuplicate, nil))
		response.Error[any](c, http.StatusBadRequest, msgDuplicateUser, nil)
		return
	}

	created, err := h.Svc.Register(ctx, candidate)
	if err != nil {
		if errors.Is(err, application.ErrDuplicateUser) {
			h.Svc.RecordAudit(ctx, auditEntry(c, req.Username, entity.AuditRegisterDuplicate, map[string]any{"source": "constraint"}))
			response.Error[any](c, http.StatusBadRequest, msgDuplicateUser, nil)
			return
		}
		h.Logger.WithError(err).Error("register failed")
		response.Error[any](c, http.StatusInternalServerError, msgInternal, nil)
		return
	}

	h.Svc.RecordAudit(ctx, auditEntry(c, created.Username, entity.AuditRegisterSuccess, map[string]any{"user_id": created.ID, "role": created.Role}))
	c.Header("Location", "/api/user/"+created.ID)
	response.Success(c, http.StatusCreated, toUserResponse(created), "user created", nil)
}

// GetByID GET /api/user/:id. Requires a valid bearer token.
func (h *UserHandler) GetByID(c *gin.Context) {
	if c.GetString(middleware.CtxUserRoleKey) == "" {
		response.Error[any](c, http.StatusUnauthorized, msgTokenInvalid, nil)
		return
	}
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error[any](c, http.StatusNotFound, msgUserNotFound, nil)
		return
	}
	u, err := h.Svc.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, msgUserNotFound, nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", id).Error("get user failed")
		response.Error[any](c, http.StatusInternalServerError, msgInternal, nil)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "user", nil)
}
