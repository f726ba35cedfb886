package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/redis/go-redis/v9"

	"github.com/Alijeyrad/nutriplan_backend/config"
)

func NewLimiterWithRedis(rdb *redis.Client, cfg config.RateLimitConfig) fiber.Handler {
	storage := fiberredis.NewFromConnection(rdb)

	maxReq := cfg.RequestsPerWindow
	if maxReq <= 0 {
		maxReq = 20
	}
	window := time.Duration(cfg.WindowSeconds) * time.Second
	if window <= 0 {
		window = 30 * time.Second
	}

	return limiter.New(limiter.Config{
		Storage: storage,

		// sliding window
		Max:               maxReq,
		Expiration:        window,
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}
