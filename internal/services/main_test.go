package services

import (
	"context"
	"testing"

	"dermadect/internal/interfaces"
	"dermadect/internal/llm"
	"dermadect/internal/pkg/caching"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis_rate/v10"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type nopLimiter struct{}

func (nopLimiter) Allow(context.Context, string, redis_rate.Limit) error { return nil }

// newTestContainer wires the service graph against an in-process redis and a
// canned model. Postgres-backed paths are best-effort and stay disabled.
func newTestContainer(t *testing.T, provider llm.Provider) *do.Injector {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	injector := do.New()

	do.ProvideNamed(injector, "redis-db", func(i *do.Injector) (redis.UniversalClient, error) {
		return client, nil
	})

	do.Provide(injector, func(i *do.Injector) (*bun.DB, error) {
		return nil, nil
	})

	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
		return caching.NewCacheRedis(client, false)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Limiter, error) {
		return nopLimiter{}, nil
	})

	do.Provide(injector, func(i *do.Injector) (*redsync.Redsync, error) {
		return redsync.New(goredis.NewPool(client)), nil
	})

	do.Provide(injector, func(i *do.Injector) (llm.Provider, error) {
		return provider, nil
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceGame, error) {
		return NewServiceGame(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceAgent, error) {
		return NewServiceAgent(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceChat, error) {
		return NewServiceChat(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceStats, error) {
		return NewServiceStats(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceQuestion, error) {
		return NewServiceQuestion(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*ServiceConfig, error) {
		return NewServiceConfig(injector)
	})

	return injector
}

// setTestConfig primes the config cache so tunables resolve without postgres.
func setTestConfig(t *testing.T, injector *do.Injector, key string, value any) {
	t.Helper()
	cash, err := do.Invoke[caching.Cache](injector)
	require.NoError(t, err)
	require.NoError(t, cash.Set(context.Background(), DBKeyConfig(key), value, CACHE_TTL_5_MINS))
}

func invokeGame(t *testing.T, injector *do.Injector) *ServiceGame {
	t.Helper()
	service, err := do.Invoke[*ServiceGame](injector)
	require.NoError(t, err)
	return service
}

func invokeAgent(t *testing.T, injector *do.Injector) *ServiceAgent {
	t.Helper()
	service, err := do.Invoke[*ServiceAgent](injector)
	require.NoError(t, err)
	return service
}

func invokeStats(t *testing.T, injector *do.Injector) *ServiceStats {
	t.Helper()
	service, err := do.Invoke[*ServiceStats](injector)
	require.NoError(t, err)
	return service
}

func invokeChat(t *testing.T, injector *do.Injector) *ServiceChat {
	t.Helper()
	service, err := do.Invoke[*ServiceChat](injector)
	require.NoError(t, err)
	return service
}

func invokeQuestion(t *testing.T, injector *do.Injector) *ServiceQuestion {
	t.Helper()
	service, err := do.Invoke[*ServiceQuestion](injector)
	require.NoError(t, err)
	return service
}
