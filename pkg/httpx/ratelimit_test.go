package httpx_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/escritorio/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = addr
	return req
}

func TestIPKeyExtractor(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "remote addr", want: "192.168.1.1"},
		{name: "forwarded for wins", headers: map[string]string{"X-Forwarded-For": "203.0.113.1, 192.168.1.1", "X-Real-IP": "203.0.113.9"}, want: "203.0.113.1"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "203.0.113.2"}, want: "203.0.113.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestFrom("192.168.1.1:12345")
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, httpx.IPKeyExtractor(req))
		})
	}
}

func TestCompositeKeyExtractor(t *testing.T) {
	extractor := httpx.CompositeKeyExtractor(":", httpx.UserIDKeyExtractor, httpx.IPKeyExtractor)

	t.Run("skips empty values", func(t *testing.T) {
		require.Equal(t, "192.168.1.1", extractor(requestFrom("192.168.1.1:12345")))
	})

	t.Run("joins user and ip", func(t *testing.T) {
		req := requestFrom("192.168.1.1:12345")
		req = req.WithContext(context.WithValue(req.Context(), httpx.CtxKeyUserID, "01USER"))
		require.Equal(t, "01USER:192.168.1.1", extractor(req))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks requests over limit", func(t *testing.T) {
		limited := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
			RequestsPerWindow: 3,
			Window:            time.Minute,
			Burst:             3,
		}, httpx.IPKeyExtractor)(okHandler)

		for i := range 3 {
			rec := httptest.NewRecorder()
			limited.ServeHTTP(rec, requestFrom("192.168.1.1:12345"))
			require.Equal(t, http.StatusOK, rec.Code, "request %d should succeed", i+1)
		}

		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, requestFrom("192.168.1.1:12345"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))

		var body httpx.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, httpx.CodeRateLimited, body.Error)
		require.NotEmpty(t, body.ErrorDescription)
	})

	t.Run("keys are tracked separately", func(t *testing.T) {
		limited := httpx.RateLimitByIP(httpx.RateLimitConfig{
			RequestsPerWindow: 1,
			Window:            time.Minute,
			Burst:             1,
		})(okHandler)

		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, requestFrom("192.168.1.1:12345"))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		limited.ServeHTTP(rec, requestFrom("192.168.1.1:12345"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)

		rec = httptest.NewRecorder()
		limited.ServeHTTP(rec, requestFrom("192.168.1.2:12345"))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("empty key is let through", func(t *testing.T) {
		limited := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
			RequestsPerWindow: 1,
			Window:            time.Minute,
			Burst:             1,
		}, func(*http.Request) string { return "" })(okHandler)

		for range 3 {
			rec := httptest.NewRecorder()
			limited.ServeHTTP(rec, requestFrom("192.168.1.1:12345"))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestRateLimitProfiles(t *testing.T) {
	for name, cfg := range map[string]httpx.RateLimitConfig{
		"strict":   httpx.StrictLimit,
		"moderate": httpx.ModerateLimit,
		"lenient":  httpx.LenientLimit,
		"public":   httpx.PublicLimit,
	} {
		t.Run(name, func(t *testing.T) {
			require.Positive(t, cfg.RequestsPerWindow)
			require.Positive(t, cfg.Window)
			require.Positive(t, cfg.Burst)
		})
	}

	require.Less(t, httpx.StrictLimit.RequestsPerWindow, httpx.ModerateLimit.RequestsPerWindow)
	require.Less(t, httpx.ModerateLimit.RequestsPerWindow, httpx.LenientLimit.RequestsPerWindow)
	require.Less(t, httpx.LenientLimit.RequestsPerWindow, httpx.PublicLimit.RequestsPerWindow)
}

func TestParseRateLimitFromEnv(t *testing.T) {
	def := httpx.RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10}

	t.Run("defaults", func(t *testing.T) {
		require.Equal(t, def, httpx.ParseRateLimitFromEnv("TEST", def))
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "50")
		t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "30")
		t.Setenv("RATELIMIT_TEST_BURST", "7")

		cfg := httpx.ParseRateLimitFromEnv("TEST", def)
		require.Equal(t, httpx.RateLimitConfig{RequestsPerWindow: 50, Window: 30 * time.Second, Burst: 7}, cfg)
	})

	t.Run("ignores invalid values", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "nope")
		t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "-5")
		t.Setenv("RATELIMIT_TEST_BURST", "0")

		require.Equal(t, def, httpx.ParseRateLimitFromEnv("TEST", def))
	})
}

func BenchmarkRateLimitManyIPs(b *testing.B) {
	limited := httpx.RateLimitByIP(httpx.RateLimitConfig{
		RequestsPerWindow: 1000000,
		Window:            time.Minute,
		Burst:             1000,
	})(okHandler)

	for i := 0; b.Loop(); i++ {
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, requestFrom(fmt.Sprintf("192.168.%d.%d:12345", i%255, (i/255)%255)))
	}
}
