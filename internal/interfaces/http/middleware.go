package httpinterface

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/btc-address-daemon/pkg/auth"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/semaphore"
)

var errTooManyRequests = errors.New("too many requests, retry later")

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*jwt.StandardClaims, error)
}

type requestInfoKey struct{}

type requestInfo struct {
	subject string
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set("X-Request-Id", id)
		info := &requestInfo{}
		ctx := context.WithValue(r.Context(), requestInfoKey{}, info)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		fields := log.Fields{
			"id":       id,
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start),
		}
		if info.subject != "" {
			fields["subject"] = info.subject
		}
		log.WithFields(fields).Debug("served request")
	})
}

// concurrencyLimiter rejects requests exceeding the given number of in-flight
// ones.
func concurrencyLimiter(max int) func(http.Handler) http.Handler {
	sem := semaphore.NewWeighted(int64(max))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sem.TryAcquire(1) {
				writeError(w, http.StatusServiceUnavailable, errTooManyRequests)
				return
			}
			defer sem.Release(1)

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimiter delays requests to stay below rps requests per second.
func rateLimiter(rps int) func(http.Handler) http.Handler {
	limiter := ratelimit.New(rps)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter.Take()
			next.ServeHTTP(w, r)
		})
	}
}

func authenticator(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				writeError(w, http.StatusUnauthorized, err)
				return
			}

			claims, err := validator.Validate(r.Context(), token)
			if err != nil {
				status := http.StatusUnauthorized
				if errors.Is(err, auth.ErrAuthorityUnavailable) {
					status = http.StatusServiceUnavailable
				}
				writeError(w, status, err)
				return
			}

			if info, ok := r.Context().Value(requestInfoKey{}).(*requestInfo); ok {
				info.subject = claims.Subject
			}
			next.ServeHTTP(w, r)
		})
	}
}
