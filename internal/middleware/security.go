package middleware

import (
	"net/http"

	"github.com/unrolled/secure"
)

// SecurityConfig holds configuration for security headers.
type SecurityConfig struct {
	// IsDevelopment disables HSTS in dev environments.
	IsDevelopment bool
	// MaxRequestBodySize is the max allowed request body in bytes.
	MaxRequestBodySize int64
}

// DefaultSecurityConfig returns sensible defaults for production.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		IsDevelopment:      false,
		MaxRequestBodySize: 1 << 20, // 1MB
	}
}

// SecureOptions returns the security header policy.
// The policy allows the bundled frontend to load its own scripts and styles.
func SecureOptions(cfg SecurityConfig) secure.Options {
	return secure.Options{
		IsDevelopment:           cfg.IsDevelopment,
		ContentTypeNosniff:      true,
		FrameDeny:               true,
		BrowserXssFilter:        true,
		CustomBrowserXssValue:   "0",
		ReferrerPolicy:          "strict-origin-when-cross-origin",
		ContentSecurityPolicy:   "default-src 'self'; frame-ancestors 'none'; object-src 'none'",
		PermissionsPolicy:       "geolocation=(), microphone=(), camera=(), payment=(), usb=()",
		CrossOriginOpenerPolicy: "same-origin",
		STSSeconds:              31536000,
		STSIncludeSubdomains:    true,
		STSPreload:              true,

		// TLS terminates at the proxy in front of the server.
		ForceSTSHeader: true,
	}
}

// Security returns a middleware that applies security headers to all responses.
func Security(cfg SecurityConfig) func(http.Handler) http.Handler {
	headers := secure.New(SecureOptions(cfg))
	return func(next http.Handler) http.Handler {
		return headers.Handler(ResourcePolicy(next))
	}
}

// ResourcePolicy restricts cross-origin embedding of responses.
// secure.Options has no Cross-Origin-Resource-Policy setting.
func ResourcePolicy(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Resource-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

// NoStore marks responses as uncacheable. Applied to API routes only.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// MaxBodySize returns a middleware that limits request body size.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.ContentLength > maxBytes {
				writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
				return
			}

			// Wrap body with MaxBytesReader for streaming protection
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

			next.ServeHTTP(w, r)
		})
	}
}
