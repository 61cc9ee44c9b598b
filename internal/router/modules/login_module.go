package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/container"
	handlers "github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/interface/http"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/interface/middleware"
)

// LoginModule serves POST /api/login and GET /api/login/role.
type LoginModule struct {
	Handler *handlers.LoginHandler
	C       *container.Container
}

func NewLoginModule(h *handlers.LoginHandler, c *container.Container) *LoginModule {
	return &LoginModule{Handler: h, C: c}
}

func (m *LoginModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(m.C.Redis, m.C.Cfg.LoginRateLimit, time.Minute, middleware.KeyByIPAndPath(), nil, m.C.Logger)

	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.GET("/login/role", middleware.BearerClaims(m.C.JWT), m.Handler.GetRole)
}
