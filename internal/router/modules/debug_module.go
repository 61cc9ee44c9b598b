package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/container"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/interface/middleware"
)

// DebugModule exposes expvar counters (login successes and failures, registrations).
type DebugModule struct {
	C *container.Container
}

func NewDebugModule(c *container.Container) *DebugModule { return &DebugModule{C: c} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// private networks (scrapers) are not limited
	rl := middleware.RateLimit(m.C.Redis, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP(), m.C.Logger)
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
