package router

import (
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/application"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/container"
	pginfra "github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/infrastructure/postgres"
	handlers "github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/interface/http"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/router/modules"
)

func buildService(c *container.Container) *application.Service {
	users := pginfra.NewUserRepository(c.PG, c.Cfg.DBQueryTimeout)
	audit := pginfra.NewAuditRepository(c.PG, c.Cfg.DBQueryTimeout)
	return application.NewService(users, audit, c.JWT, c.Publisher(), c.Cfg, c.Logger)
}

// InitModules wires the feature modules onto the registry. Call once at startup.
func InitModules(r *Registry, c *container.Container) {
	svc := buildService(c)

	r.Add(modules.NewLoginModule(handlers.NewLoginHandler(svc, c.Logger), c))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc, c.Logger), c))
	if c.Cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c))
	}
}
