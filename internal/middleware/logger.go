package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Logger logs one line per outbound request at debug level, and failed
// round trips at warn level.
func Logger(l zerolog.Logger) Transport {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			rid := RequestIDFromContext(r.Context())
			if err != nil {
				l.Warn().Err(err).
					Str("request_id", rid).
					Dur("elapsed", time.Since(start)).
					Msgf("%s %s failed", r.Method, r.URL.Path)
				return resp, err
			}
			l.Debug().
				Str("request_id", rid).
				Msgf("%s %s %d %s", r.Method, r.URL.Path, resp.StatusCode, time.Since(start))
			return resp, nil
		})
	}
}
