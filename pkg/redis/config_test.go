package redis

import (
	"testing"
	"time"

	"github.com/Alijeyrad/nutriplan_backend/config"
)

func TestFromCentralConfigDefaults(t *testing.T) {
	got := FromCentralConfig(config.RedisConfig{Addr: "cache:6379", PoolSize: 50})

	if got.Addr != "cache:6379" || got.PoolSize != 50 {
		t.Errorf("explicit values lost: %+v", got)
	}
	if got.MinIdleConns != 2 {
		t.Errorf("MinIdleConns = %d, want default 2", got.MinIdleConns)
	}
	if got.DialTimeout() != 5*time.Second || got.ReadTimeout() != 3*time.Second {
		t.Errorf("timeouts = %v/%v", got.DialTimeout(), got.ReadTimeout())
	}
}

func TestNewRedisRequiresAddr(t *testing.T) {
	if _, err := NewRedis(t.Context(), Config{}); err == nil {
		t.Fatal("expected error for empty addr")
	}
}
