package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-lifecycle/config"
)

func TestRender_Account(t *testing.T) {
	cfg := &config.Config{AppName: "Lifecycle", CompanyName: "Acme", SupportURL: "https://acme.test/help"}
	at := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)

	tests := []struct {
		kind    string
		subject string
		body    string
	}{
		{"user.registered", "Activate your Lifecycle account", "https://acme.test/activate/h1"},
		{"user.activated", "Your account is active", "email address is confirmed"},
		{"user.enabled", "Your account has been enabled", "enabled and ready"},
		{"user.disabled", "Your account has been disabled", "was disabled"},
		{"user.password_changed", "Your password was changed", "09 March 2024, 14:05"},
		{"user.unregistered", "Your account has been closed", "free to be registered again"},
		{"user.renamed", "Account notification", "Hello a@b.com"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			data := NewAccountData(cfg, tt.kind, "a@b.com",
				WithTime(at),
				WithActivationURL("https://acme.test/activate/", "h1"),
			)
			subject, text, html, err := Render(Account, ToMap(data))
			require.NoError(t, err)
			assert.Equal(t, tt.subject, subject)
			assert.Contains(t, text, tt.body)
			assert.Contains(t, html, "Hello a@b.com")
			assert.Contains(t, text, "https://acme.test/help")
		})
	}
}

func TestWithActivationURL_SkipsEmptyParts(t *testing.T) {
	d := NewAccountData(&config.Config{}, "user.registered", "a@b.com", WithActivationURL("", "h1"))
	assert.Empty(t, d.ActivationURL)
	d = NewAccountData(&config.Config{}, "user.registered", "a@b.com", WithActivationURL("https://x.test/a", ""))
	assert.Empty(t, d.ActivationURL)
}

func TestNewAccountData_Defaults(t *testing.T) {
	d := NewAccountData(&config.Config{AppName: "App"}, "user.enabled", "a@b.com", WithUserID(9))
	assert.Equal(t, "a@b.com", d.RecipientEmail)
	assert.Equal(t, int64(9), d.UserID)
	assert.Equal(t, "App", d.AppName)

	m := ToMap(d)
	assert.Equal(t, "user.enabled", m["Kind"])
	assert.EqualValues(t, 9, m["UserID"])
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, _, err := Render("missing", map[string]any{})
	assert.Error(t, err)
}
