package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/zezinho10632/DouglasApi/internal/api/handlers"
	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/pkg/auth"
	"github.com/zezinho10632/DouglasApi/pkg/config"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
	"github.com/zezinho10632/DouglasApi/pkg/redis"
)

// statusRecorder captures the status written by the next handler
type statusRecorder struct {
	http.ResponseWriter
	status int
	user   string
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			fields := map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}
			if rec.user != "" {
				fields["user"] = rec.user
			}
			log.WithFields(fields).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					handlers.RespondFailure(w, http.StatusInternalServerError, handlers.CodeInternal, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// corsMiddleware allows the configured browser origins
func corsMiddleware(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// Limiter decides whether one more request of key fits the window
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, int, error)
}

// RedisLimiter shares the sliding window across instances through Redis
type RedisLimiter struct {
	limiter *redis.RateLimiter
	limit   int
	window  time.Duration
}

// NewRedisLimiter creates a limiter backed by the Redis sliding window
func NewRedisLimiter(client *redis.Client, cfg config.RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{
		limiter: redis.NewRateLimiter(client, "quality"),
		limit:   cfg.Requests,
		window:  cfg.Window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	return l.limiter.Allow(ctx, redis.RateLimitConfig{Key: key, Limit: l.limit, Window: l.window})
}

// LocalLimiter keeps one token bucket per key in process memory.
// Buckets idle for a full window are refilled, so they are swept.
type LocalLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*localBucket
	every     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter refills cfg.Requests tokens per cfg.Window
func NewLocalLimiter(cfg config.RateLimitConfig) *LocalLimiter {
	every := rate.Inf
	if cfg.Requests > 0 && cfg.Window > 0 {
		every = rate.Every(cfg.Window / time.Duration(cfg.Requests))
	}
	idle := cfg.Window
	if idle <= 0 {
		idle = time.Minute
	}
	return &LocalLimiter{
		buckets:   make(map[string]*localBucket),
		every:     every,
		burst:     cfg.Requests,
		idle:      idle,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(l.every, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	allowed := b.limiter.AllowN(now, 1)
	remaining := int(b.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return allowed, remaining, nil
}

// sweep drops buckets unused for the idle window. Callers hold l.mu.
func (l *LocalLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.idle {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// Len returns the number of tracked keys
func (l *LocalLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// NewLimiter prefers Redis and falls back to the in-process limiter
func NewLimiter(client *redis.Client, cfg config.RateLimitConfig) Limiter {
	if client != nil && client.Enabled() {
		return NewRedisLimiter(client, cfg)
	}
	return NewLocalLimiter(cfg)
}

// clientKey identifies the caller by token subject, or by remote address.
// The limiter runs before authentication, so the token is read here.
func clientKey(r *http.Request, tokens *auth.Tokens) string {
	if tokens != nil {
		if raw, ok := auth.BearerToken(r.Header.Get("Authorization")); ok {
			if claims, err := tokens.Parse(raw); err == nil && claims.UserID != "" {
				return "user:" + claims.UserID
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// rateLimitMiddleware rejects requests over the limit with 429.
// Limiter failures let the request through.
func rateLimitMiddleware(limiter Limiter, tokens *auth.Tokens, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, err := limiter.Allow(r.Context(), clientKey(r, tokens))
			if err != nil {
				log.WithError(err).Warn("Rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				handlers.RespondFailure(w, http.StatusTooManyRequests, handlers.CodeRateLimited, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authMiddleware resolves the bearer token into the request's principal
func authMiddleware(tokens *auth.Tokens, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := auth.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				handlers.RespondFailure(w, http.StatusUnauthorized, handlers.CodeUnauthorized, "Missing authorization header")
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				handlers.RespondFailure(w, http.StatusUnauthorized, handlers.CodeUnauthorized, "Invalid or expired token")
				return
			}

			principal, err := principalFrom(claims)
			if err != nil {
				log.WithError(err).Debug("Token claims rejected")
				handlers.RespondFailure(w, http.StatusUnauthorized, handlers.CodeUnauthorized, "Invalid token claims")
				return
			}

			// Auth runs inside the logging middleware's recorder
			if rec, ok := w.(*statusRecorder); ok {
				rec.user = principal.Email
			}
			next.ServeHTTP(w, r.WithContext(contracts.WithPrincipal(r.Context(), principal)))
		})
	}
}

func principalFrom(c *auth.Claims) (contracts.Principal, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return contracts.Principal{}, err
	}
	role, err := contracts.ParseRole(c.Role)
	if err != nil {
		return contracts.Principal{}, err
	}

	p := contracts.Principal{UserID: id, Email: c.Email, Name: c.Name, Role: role}
	if c.JobTitle != "" {
		if p.JobTitle, err = contracts.ParseJobTitle(c.JobTitle); err != nil {
			return contracts.Principal{}, err
		}
	}
	return p, nil
}
