package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/quietpage/journal/config"
)

// AuthWindowAllow enforces a fixed-window per-address counter for the
// authentication-sensitive endpoints (login, register, change-password).
// Redis errors fail open: an unreachable counter must not lock out
// legitimate logins.
func AuthWindowAllow(ip, endpoint string) bool {
	cfg := config.Get()
	limit := cfg.AuthRateLimitPerWindow
	windowSec := cfg.AuthRateWindowSeconds
	if limit <= 0 || windowSec <= 0 {
		return true
	}
	rc := GetRedis()
	if rc == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	window := time.Now().Unix() / int64(windowSec)
	key := fmt.Sprintf("authrl:%s:%s:%d", endpoint, ip, window)

	n, err := rc.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if n == 1 {
		_ = rc.Expire(ctx, key, time.Duration(windowSec)*time.Second).Err()
	}
	return n <= int64(limit)
}
