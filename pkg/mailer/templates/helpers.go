package templates

import (
	"strings"
	"time"

	"github.com/oksasatya/go-user-lifecycle/config"
)

// Option pattern
type Option func(*AccountData)

func WithTime(t time.Time) Option {
	return func(d *AccountData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

// WithActivationURL appends hash to base, which must end with the path prefix
// of the activation route.
func WithActivationURL(base, hash string) Option {
	return func(d *AccountData) {
		if strings.TrimSpace(base) == "" || hash == "" {
			return
		}
		d.ActivationURL = strings.TrimRight(base, "/") + "/" + hash
	}
}

func WithUserID(id int64) Option { return func(d *AccountData) { d.UserID = id } }

// NewAccountData fills branding from config, then applies options.
func NewAccountData(cfg *config.Config, kind, login string, opts ...Option) AccountData {
	d := AccountData{
		Kind:           kind,
		Login:          login,
		RecipientEmail: login,

		AppName:        cfg.AppName,
		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		LogoURL:        cfg.LogoURL,
		SupportURL:     cfg.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
