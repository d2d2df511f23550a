package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/bloomhaus/petalboard-backend/api/responses"
	pkgerrors "github.com/bloomhaus/petalboard-backend/pkg/errors"
	"github.com/bloomhaus/petalboard-backend/pkg/logger"
)

const maxRateLimitBodyBytes = 1 << 20

// RateLimiter is the counter surface the auth throttles consume.
type RateLimiter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// AuthRateLimitOptions configures one fixed-window throttle.
type AuthRateLimitOptions struct {
	Name       string
	Window     time.Duration
	IPLimit    int
	EmailLimit int
}

// AuthRateLimit enforces per-IP and per-email fixed windows on an auth
// endpoint. The email is read from the JSON body without consuming it.
func AuthRateLimit(limiter RateLimiter, opts AuthRateLimitOptions, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || opts.Window <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			if opts.IPLimit > 0 {
				key := limiter.RateLimitKey("ip:" + opts.Name + ":" + clientIP(r))
				count, err := limiter.IncrWithTTL(ctx, key, opts.Window)
				if err != nil {
					if logg != nil {
						logg.Warn(ctx, "auth rate limit unavailable, allowing request")
					}
				} else if count > int64(opts.IPLimit) {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts"))
					return
				}
			}

			if opts.EmailLimit > 0 {
				email, restored := peekEmail(r)
				r = restored
				if email != "" {
					key := limiter.RateLimitKey("email:" + opts.Name + ":" + hashEmail(email))
					count, err := limiter.IncrWithTTL(ctx, key, opts.Window)
					if err != nil {
						if logg != nil {
							logg.Warn(ctx, "auth rate limit unavailable, allowing request")
						}
					} else if count > int64(opts.EmailLimit) {
						responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts"))
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// peekEmail reads the email field from the request body and restores the body
// so downstream decoding still works.
func peekEmail(r *http.Request) (string, *http.Request) {
	if r.Body == nil {
		return "", r
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRateLimitBodyBytes))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return "", r
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", r
	}
	return strings.ToLower(strings.TrimSpace(payload.Email)), r
}

func hashEmail(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}
