package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/container"
	handlers "github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/interface/http"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/interface/middleware"
)

// UserModule serves registration and user lookup:
// POST /api/user (public, rate limited), GET /api/user/:id (bearer token).
type UserModule struct {
	Handler *handlers.UserHandler
	C       *container.Container
}

func NewUserModule(h *handlers.UserHandler, c *container.Container) *UserModule {
	return &UserModule{Handler: h, C: c}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.C.Redis, m.C.Cfg.RegisterRateLimit, time.Minute, middleware.KeyByIPAndPath(), nil, m.C.Logger)
	readLimiter := middleware.RateLimit(m.C.Redis, 120, time.Minute, middleware.KeyByIP(), nil, m.C.Logger)

	rg.POST("/user", registerLimiter, m.Handler.Register)
	rg.GET("/user/:id", readLimiter, middleware.BearerClaims(m.C.JWT), m.Handler.GetByID)
}
