package middleware

import (
	"net/http"

	"storyclient/internal/messages"
)

// LocaleHeader carries the preferred locale alongside Accept-Language.
const LocaleHeader = "X-Locale"

// Locale asks the API to answer in the given locale, so server-provided error
// texts match the client's own messages. Headers set by the caller win.
func Locale(locale string) Transport {
	locale = messages.NormalizeLocale(locale)
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(LocaleHeader) != "" && r.Header.Get("Accept-Language") != "" {
				return next.RoundTrip(r)
			}
			r = r.Clone(r.Context())
			if r.Header.Get(LocaleHeader) == "" {
				r.Header.Set(LocaleHeader, locale)
			}
			if r.Header.Get("Accept-Language") == "" {
				r.Header.Set("Accept-Language", acceptLanguage(locale))
			}
			return next.RoundTrip(r)
		})
	}
}

func acceptLanguage(locale string) string {
	if locale == "id" {
		return "id-ID,id;q=0.9,en;q=0.5"
	}
	return "en-US,en;q=0.9"
}
