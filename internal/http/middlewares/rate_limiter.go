package middleware

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	apperrors "task-manager.com/task-manager/internal/errors"
)

// RateLimiter allows perMinute requests per client IP with the given burst.
// Idle clients are forgotten after idleAfter.
func RateLimiter(perMinute, burst int, idleAfter time.Duration) echo.MiddlewareFunc {
	if perMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*client)
		sweptAt = time.Now()
	)

	every := rate.Every(time.Minute / time.Duration(perMinute))
	if burst <= 0 {
		burst = perMinute
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := time.Now()
			key := c.RealIP()

			mu.Lock()
			if now.Sub(sweptAt) > idleAfter {
				for ip, cl := range clients {
					if now.Sub(cl.lastSeen) > idleAfter {
						delete(clients, ip)
					}
				}
				sweptAt = now
			}

			cl, ok := clients[key]
			if !ok {
				cl = &client{limiter: rate.NewLimiter(every, burst)}
				clients[key] = cl
			}
			cl.lastSeen = now
			allowed := cl.limiter.AllowN(now, 1)
			mu.Unlock()

			if !allowed {
				return apperrors.ErrRateLimited
			}
			return next(c)
		}
	}
}
