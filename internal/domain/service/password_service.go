package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
)

const (
	lowerLetters = "abcdefghijklmnopqrstuvwxyz"
	upperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits       = "0123456789"
	symbols      = "!@#$%^&*()-_+=.?~[]{}<>/:;"

	// MaxPasswordBytes is bcrypt's input limit. It binds regardless of
	// MaxLength, which counts characters.
	MaxPasswordBytes = 72
)

// PasswordPolicy describes the complexity rules a password must meet on
// registration and on change.
type PasswordPolicy struct {
	MinLength     int
	MaxLength     int // 0 means unbounded
	RequireLetter bool
	RequireDigit  bool
	RequireUpper  bool
	RequireSymbol bool
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:     entity.MinPasswordLength,
		MaxLength:     MaxPasswordBytes,
		RequireLetter: true,
		RequireDigit:  true,
	}
}

// Rule compiles the policy into a validator tag string.
func (p PasswordPolicy) Rule() string {
	minLen := max(p.MinLength, entity.MinPasswordLength)
	rules := []string{"required", "min=" + strconv.Itoa(minLen)}
	if p.MaxLength > 0 {
		rules = append(rules, "max="+strconv.Itoa(p.MaxLength))
	}
	if p.RequireLetter {
		rules = append(rules, "containsany="+lowerLetters+upperLetters)
	}
	if p.RequireDigit {
		rules = append(rules, "containsany="+digits)
	}
	if p.RequireUpper {
		rules = append(rules, "containsany="+upperLetters)
	}
	if p.RequireSymbol {
		rules = append(rules, "containsany="+symbols)
	}
	return strings.Join(rules, ",")
}

// PolicyContext carries what the policy may compare the candidate against.
type PolicyContext struct {
	Login entity.UserLogin
}

// PasswordRejection reports the rule a candidate failed. It matches
// entity.ErrPasswordRejected with errors.Is.
type PasswordRejection struct {
	Rule   string
	Reason string
}

func (e *PasswordRejection) Error() string {
	return fmt.Sprintf("%s: %s", entity.ErrPasswordRejected, e.Reason)
}

func (e *PasswordRejection) Unwrap() error { return entity.ErrPasswordRejected }

// UserPasswordService verifies candidate passwords against a policy.
type UserPasswordService struct {
	policy   PasswordPolicy
	rule     string
	validate *validator.Validate
}

func NewUserPasswordService(policy PasswordPolicy) *UserPasswordService {
	return &UserPasswordService{
		policy:   policy,
		rule:     policy.Rule(),
		validate: validator.New(),
	}
}

func (s *UserPasswordService) Policy() PasswordPolicy { return s.policy }

func (s *UserPasswordService) Verify(candidate entity.UserPassword, pc PolicyContext) error {
	if err := s.validate.Var(candidate.Value(), s.rule); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return rejection(verrs[0])
		}
		return &PasswordRejection{Rule: "invalid", Reason: err.Error()}
	}
	if len(candidate.Value()) > MaxPasswordBytes {
		return &PasswordRejection{Rule: "max", Reason: "password must be at most " + strconv.Itoa(MaxPasswordBytes) + " bytes"}
	}
	if !pc.Login.IsZero() && strings.EqualFold(candidate.Value(), pc.Login.String()) {
		return &PasswordRejection{Rule: "login", Reason: "password must differ from the login"}
	}
	return nil
}

func rejection(fe validator.FieldError) *PasswordRejection {
	switch fe.Tag() {
	case "required":
		return &PasswordRejection{Rule: "required", Reason: "password is required"}
	case "min":
		return &PasswordRejection{Rule: "min", Reason: "password must be at least " + fe.Param() + " characters"}
	case "max":
		return &PasswordRejection{Rule: "max", Reason: "password must be at most " + fe.Param() + " characters"}
	case "containsany":
		switch fe.Param() {
		case lowerLetters + upperLetters:
			return &PasswordRejection{Rule: "letter", Reason: "password must contain a letter"}
		case digits:
			return &PasswordRejection{Rule: "digit", Reason: "password must contain a digit"}
		case upperLetters:
			return &PasswordRejection{Rule: "upper", Reason: "password must contain an uppercase letter"}
		case symbols:
			return &PasswordRejection{Rule: "symbol", Reason: "password must contain one of " + symbols}
		}
	}
	return &PasswordRejection{Rule: fe.Tag(), Reason: "password failed " + fe.Tag()}
}
