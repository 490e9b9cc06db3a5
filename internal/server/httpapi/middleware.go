package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"notemint/internal/common"
	"notemint/internal/logging"
	"notemint/internal/server/auth"
	"notemint/internal/server/models"
)

type contextKey string

const principalKey contextKey = "principal"

var errInvalidAuthHeader = fmt.Errorf("%w: malformed authorization header", common.ErrInvalidToken)

// AuthMiddleware resolves the caller's principal from a bearer token. A
// request without an Authorization header proceeds as the anonymous
// principal; the services decide which operations anonymity may perform.
// A present but unverifiable token is rejected here.
func AuthMiddleware(secretKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := models.Anonymous

			if header := r.Header.Get("Authorization"); header != "" {
				parts := strings.SplitN(header, " ", 2)
				if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
					writeError(w, errInvalidAuthHeader)
					return
				}

				p, err := auth.PrincipalFromToken(parts[1], secretKey)
				if err != nil {
					writeError(w, err)
					return
				}
				principal = p
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerPrincipal extracts the principal placed by AuthMiddleware. Requests
// that bypassed the middleware count as anonymous.
func CallerPrincipal(r *http.Request) models.Principal {
	p, ok := r.Context().Value(principalKey).(models.Principal)
	if !ok {
		return models.Anonymous
	}
	return p
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware logs one line per request with method, path, status and
// duration.
func LoggingMiddleware(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.Info(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start).String(),
			)
		})
	}
}
