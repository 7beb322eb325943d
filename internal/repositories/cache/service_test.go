package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestBalanceKey(t *testing.T) {
	assert.Equal(t, "wallet:balance:42", BalanceKey(42))
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "wallet:user:7", GenerateKey("wallet", "user", 7))
	assert.Equal(t, BalanceKey(7), GenerateKey("wallet", "balance", uint(7)))
}

func TestCacheService_DeleteWithoutKeys(t *testing.T) {
	s := NewCacheService(redis.NewClient(&redis.Options{Addr: "localhost:0"}), time.Minute)
	assert.NoError(t, s.InvalidateBalances(context.Background()))
}

func TestNewRedisClient(t *testing.T) {
	client := NewRedisClient(&RedisConfig{Host: "cache", Port: "6380", DB: 2})
	defer client.Close()

	assert.Equal(t, "cache:6380", client.Options().Addr)
	assert.Equal(t, 2, client.Options().DB)
}
