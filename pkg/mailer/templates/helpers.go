package templates

import (
	"time"

	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/config"
)

// NewWelcomeData builds the data for the email sent after registration.
func NewWelcomeData(cfg *config.Config, username, email, role string, at time.Time) map[string]any {
	utc := at.UTC()
	return ToMap(EmailData{
		Username:    username,
		Email:       email,
		Role:        role,
		Type:        Welcome,
		AppName:     cfg.AppName,
		CompanyName: cfg.CompanyName,
		SupportURL:  cfg.SupportURL,
		Time:        utc.Format("02 January 2006, 15:04"),
		TimeAt:      utc,
	})
}
