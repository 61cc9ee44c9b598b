package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/config"
)

func TestRenderWelcome(t *testing.T) {
	cfg := &config.Config{AppName: "library-web-api", CompanyName: "City Library", SupportURL: "https://help.example"}
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	data := NewWelcomeData(cfg, "alice", "a@x.com", "reader", at)

	subject, text, html, err := Render(Welcome, data)

	require.NoError(t, err)
	assert.Contains(t, subject, "Welcome to City Library, alice")
	assert.Contains(t, text, "01 March 2026, 09:30")
	assert.Contains(t, text, "https://help.example")
	assert.Contains(t, html, "<strong>reader</strong>")
}

func TestRenderWelcome_Defaults(t *testing.T) {
	data := NewWelcomeData(&config.Config{}, "<bob>", "b@x.com", "reader", time.Now())

	subject, text, html, err := Render(Welcome, data)

	require.NoError(t, err)
	assert.Contains(t, subject, "the library")
	assert.Contains(t, text, "The library team")
	assert.NotContains(t, text, "Need help?")
	assert.Contains(t, html, "&lt;bob&gt;")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, _, err := Render("nope", map[string]any{})
	assert.Error(t, err)
}

func TestDefaultFn(t *testing.T) {
	assert.Equal(t, "fb", defaultFn("fb", ""))
	assert.Equal(t, "fb", defaultFn("fb", "  "))
	assert.Equal(t, "fb", defaultFn("fb", nil))
	assert.Equal(t, "fb", defaultFn("fb", 0))
	assert.Equal(t, 3, defaultFn("fb", 3))
	assert.Equal(t, "x", defaultFn("fb", "x"))
}
