package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/escritorio/pkg/jwtx"
	"github.com/aussiebroadwan/escritorio/pkg/slogx"
)

// AuthnMiddleware verifies the bearer token and stores its claims on the
// request context.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := bearerToken(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				slogx.FromContext(ctx).Warn("jwt verify failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(ctx, claims)))
		})
	}
}

// bearerToken reads the Authorization header. EventSource cannot set headers
// so the chat stream may pass the token as ?access_token= instead.
func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
		return raw, raw != ""
	}
	if r.Method == http.MethodGet && r.Header.Get("Accept") == "text/event-stream" {
		raw := r.URL.Query().Get("access_token")
		return raw, raw != ""
	}
	return "", false
}

// RFC 6750 style 401.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, CodeInvalidToken, desc)
}
