package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-lifecycle/pkg/mailer"
	mailtpl "github.com/oksasatya/go-user-lifecycle/pkg/mailer/templates"
)

func TestRender_Template(t *testing.T) {
	job := mailer.EmailJob{
		To:       "a@b.com",
		Template: mailtpl.Account,
		Data:     map[string]any{"Kind": "user.enabled", "AppName": "Lifecycle"},
		EventID:  "evt-1",
	}
	out, err := render(&job)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", out.To)
	assert.Equal(t, "Your account has been enabled", out.Subject)
	assert.Contains(t, out.Text, "Hello a@b.com")
	assert.Equal(t, "evt-1", out.EventID)
	assert.Equal(t, mailtpl.Account, out.Tag)
}

func TestRender_Literal(t *testing.T) {
	job := mailer.EmailJob{To: "a@b.com", Subject: "Hi", Text: "plain"}
	out, err := render(&job)
	require.NoError(t, err)
	assert.Equal(t, "Hi", out.Subject)
	assert.Equal(t, "plain", out.Text)
	assert.Empty(t, out.Tag)
}
