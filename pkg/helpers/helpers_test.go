package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-user-lifecycle/pkg/mailer"
)

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	tok, exp, err := m.GenerateToken("42", RoleOperator)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	claims, err := m.ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.True(t, claims.IsOperator())

	_, err = NewJWTManager("other", time.Minute).ParseToken(tok)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	h, err := HashPasswordCost("password1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("password1")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("password2")))

	_, err = HashPasswordCost(string(make([]byte, 73)), bcrypt.MinCost)
	assert.Error(t, err)
}

func TestEnsureRecipient(t *testing.T) {
	job := mailer.EmailJob{To: "a@b.com"}
	EnsureRecipient(&job)
	assert.Equal(t, "a@b.com", job.Data["Login"])
	assert.Equal(t, "a@b.com", job.Data["RecipientEmail"])

	job = mailer.EmailJob{To: "a@b.com", Data: map[string]any{"Login": "kept@b.com", "RecipientEmail": ""}}
	EnsureRecipient(&job)
	assert.Equal(t, "kept@b.com", job.Data["Login"])
	assert.Equal(t, "a@b.com", job.Data["RecipientEmail"])
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/bucket/a/b.ndjson", PublicURL("bucket", "a/b.ndjson"))
}
