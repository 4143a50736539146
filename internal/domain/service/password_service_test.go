package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
)

func pwd(t *testing.T, s string) entity.UserPassword {
	t.Helper()
	p, err := entity.NewUserPassword(s)
	require.NoError(t, err)
	return p
}

func TestPasswordPolicy_Rule(t *testing.T) {
	assert.Equal(t,
		"required,min=8,max=72,containsany="+lowerLetters+upperLetters+",containsany="+digits,
		DefaultPasswordPolicy().Rule())

	// the entity floor wins over a weaker configured minimum
	assert.Equal(t, "required,min=8", PasswordPolicy{MinLength: 4}.Rule())
}

func TestUserPasswordService_Verify(t *testing.T) {
	svc := NewUserPasswordService(DefaultPasswordPolicy())
	login, _ := entity.NewUserLogin("someone@example.com")

	tests := []struct {
		name     string
		password string
		rule     string
	}{
		{"ok", "password1", ""},
		{"no digit", "passwordonly", "digit"},
		{"no letter", "1234567890", "letter"},
		{"too long", "a1234567890123456789012345678901234567890123456789012345678901234567890123", "max"},
		{"multibyte at byte limit", "a1" + strings.Repeat("ж", 35), ""},
		{"multibyte over byte limit", "a1" + strings.Repeat("ж", 36), "max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Verify(pwd(t, tt.password), PolicyContext{Login: login})
			if tt.rule == "" {
				assert.NoError(t, err)
				return
			}
			var rej *PasswordRejection
			require.True(t, errors.As(err, &rej))
			assert.Equal(t, tt.rule, rej.Rule)
			assert.ErrorIs(t, err, entity.ErrPasswordRejected)
		})
	}
}

func TestUserPasswordService_ByteLimitIgnoresLooserPolicy(t *testing.T) {
	svc := NewUserPasswordService(PasswordPolicy{MinLength: 8})
	long := strings.Repeat("ж", 40) // 40 characters, 80 bytes

	var rej *PasswordRejection
	require.ErrorAs(t, svc.Verify(pwd(t, long), PolicyContext{}), &rej)
	assert.Equal(t, "max", rej.Rule)
	assert.Contains(t, rej.Reason, "72 bytes")
}

func TestUserPasswordService_RejectsLoginAsPassword(t *testing.T) {
	svc := NewUserPasswordService(DefaultPasswordPolicy())
	login, _ := entity.NewUserLogin("user1@example.com")

	err := svc.Verify(pwd(t, "USER1@example.com"), PolicyContext{Login: login})
	var rej *PasswordRejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "login", rej.Rule)

	assert.NoError(t, svc.Verify(pwd(t, "USER1@example.com"), PolicyContext{}))
}

func TestUserPasswordService_StricterPolicy(t *testing.T) {
	svc := NewUserPasswordService(PasswordPolicy{
		MinLength:     12,
		RequireLetter: true,
		RequireDigit:  true,
		RequireUpper:  true,
		RequireSymbol: true,
	})
	assert.Equal(t, 12, svc.Policy().MinLength)

	cases := map[string]string{
		"password1":      "min",
		"longpassword12": "upper",
		"LongPassword12": "symbol",
	}
	for in, rule := range cases {
		var rej *PasswordRejection
		require.ErrorAs(t, svc.Verify(pwd(t, in), PolicyContext{}), &rej, in)
		assert.Equal(t, rule, rej.Rule, in)
	}
	assert.NoError(t, svc.Verify(pwd(t, "LongPassword12!"), PolicyContext{}))
}
