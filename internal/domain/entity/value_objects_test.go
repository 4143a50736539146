package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserID(t *testing.T) {
	id, err := NewUserID(42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id.Int64())
	assert.Equal(t, "42", id.String())
	assert.False(t, id.IsZero())

	for _, v := range []int64{0, -1} {
		_, err := NewUserID(v)
		assert.ErrorIs(t, err, ErrInvalidUserID)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestParseUserID(t *testing.T) {
	id, err := ParseUserID("7")
	require.NoError(t, err)
	other, _ := NewUserID(7)
	assert.True(t, id.Equals(other))

	_, err = ParseUserID("abc")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = ParseUserID("-3")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewUserLogin(t *testing.T) {
	l, err := NewUserLogin("  a@b.com ")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", l.String())

	same, _ := NewUserLogin("a@b.com")
	assert.True(t, l.Equals(same))

	for _, bad := range []string{"", "   ", "not-an-email", "a@"} {
		_, err := NewUserLogin(bad)
		assert.ErrorIs(t, err, ErrLoginInvalid, bad)
	}
}

func TestNewUserPassword(t *testing.T) {
	p, err := NewUserPassword("password1")
	require.NoError(t, err)
	assert.Equal(t, "password1", p.Value())
	assert.False(t, p.IsZero())

	_, err = NewUserPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// counted in characters, not bytes
	_, err = NewUserPassword("ąęłńóśźż")
	assert.NoError(t, err)

	restored := RestoreUserPassword("x")
	assert.Equal(t, "x", restored.Value())
	assert.True(t, restored.Sealed())
	assert.False(t, p.Sealed())
	assert.False(t, restored.Equals(p))
}
