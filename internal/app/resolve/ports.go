package resolve

import "github.com/windy-civi/govsync/internal/domain"

// Registry answers which locales exist and where their repositories live.
type Registry interface {
	Known() []domain.LocaleCode
	RemoteURL(locale domain.LocaleCode) string
}
