package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/config"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/application"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/pkg/helpers"
)

// Container holds the infrastructure built in main and handed to the router.
// Redis and Pub may be nil: rate limiting and welcome emails are then disabled.
type Container struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	PG     *pgxpool.Pool
	Redis  *redis.Client
	JWT    *helpers.JWTManager
	Pub    *helpers.RabbitPublisher
}

// Publisher returns Pub as an application.Publisher, or a nil interface when unset.
func (c *Container) Publisher() application.Publisher {
	if c.Pub == nil {
		return nil
	}
	return c.Pub
}
