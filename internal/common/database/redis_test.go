package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipo-readiness/internal/common/config"
)

func TestRedisOptions(t *testing.T) {
	t.Run("address", func(t *testing.T) {
		opts, err := redisOptions(config.RedisConfig{Address: "cache:6379", DB: 2, MinIdleConns: 50})
		require.NoError(t, err)
		assert.Equal(t, "cache:6379", opts.Addr)
		assert.Equal(t, 2, opts.DB)
		assert.Equal(t, 10, opts.PoolSize)
		assert.Equal(t, 10, opts.MinIdleConns)
	})

	t.Run("url wins", func(t *testing.T) {
		opts, err := redisOptions(config.RedisConfig{
			Address:  "ignored:6379",
			URL:      "redis://:secret@sessions:6380/3",
			PoolSize: 4,
		})
		require.NoError(t, err)
		assert.Equal(t, "sessions:6380", opts.Addr)
		assert.Equal(t, "secret", opts.Password)
		assert.Equal(t, 3, opts.DB)
		assert.Equal(t, 4, opts.PoolSize)
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := redisOptions(config.RedisConfig{URL: "http://nope"})
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := redisOptions(config.RedisConfig{})
		assert.EqualError(t, err, "redis address is empty")
	})
}

func TestNewRedis_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}
