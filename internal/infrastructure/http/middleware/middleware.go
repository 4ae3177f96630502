// Package middleware provides the chi middleware of the JSON API
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/infrastructure/security"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/alchemorsel/cookbook/pkg/logger"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Logger logs every request except the probes listed in skip. Handlers get
// a logger tagged with the request id through logger.FromContext.
func Logger(base *zap.Logger, skip ...string) func(next http.Handler) http.Handler {
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}
	log := base.Named("http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			requestID := chimiddleware.GetReqID(r.Context())

			scoped := log.With(zap.String("request_id", requestID))
			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), scoped)))

			if skipped[r.URL.Path] {
				return
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("ip", r.RemoteAddr),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("latency", time.Since(start)),
				zap.String("user_agent", r.UserAgent()),
			}
			// The auth middleware runs deeper in the chain, so the id is read
			// from the header it left on the response
			if userID := ww.Header().Get(userIDHeader); userID != "" {
				fields = append(fields, zap.String("user_id", userID))
			}

			switch {
			case status >= 500:
				log.Error("Server error", fields...)
			case status >= 400:
				log.Warn("Client error", fields...)
			default:
				log.Info("Request completed", fields...)
			}
		})
	}
}

const userIDHeader = "X-User-ID"

// AuthenticateAPI requires a valid bearer token and stores its user id in
// the request context
func AuthenticateAPI(tokens *security.TokenService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, r, errors.NewUnauthorizedError("Authorization header required"))
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeError(w, r, errors.NewUnauthorizedError("Invalid authorization header format"))
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				writeError(w, r, errors.NewUnauthorizedError("Invalid or expired token"))
				return
			}

			userID := claims.UserUUID()
			w.Header().Set(userIDHeader, userID.String())
			next.ServeHTTP(w, r.WithContext(security.ContextWithUser(r.Context(), userID)))
		})
	}
}

// CORS builds the rs/cors handler from server configuration
func CORS(cfg config.ServerConfig) func(next http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           86400,
	})
	return c.Handler
}

// Security adds security headers for API responses
func Security() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			next.ServeHTTP(w, r)
		})
	}
}

// JSONOnly rejects request bodies that are not JSON
func JSONOnly() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
				if r.ContentLength != 0 && !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
					writeError(w, r, errors.NewBadRequestError("Content-Type must be application/json"))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MaxBody caps the size of request bodies
func MaxBody(limit int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, r *http.Request, appErr *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	_ = json.NewEncoder(w).Encode(errors.ToErrorResponse(appErr, chimiddleware.GetReqID(r.Context())))
}
