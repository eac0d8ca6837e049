package intergration

import (
	"context"
	"time"

	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type Env struct {
	Redis  *tcredis.RedisContainer
	URL    string
	Cancel context.CancelFunc
}

func Setup(ctx context.Context) (*Env, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)

	redisC, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		cancel()
		return nil, err
	}

	url, err := redisC.ConnectionString(ctx)
	if err != nil {
		cancel()
		_ = redisC.Terminate(ctx)
		return nil, err
	}

	return &Env{
		Redis:  redisC,
		URL:    url,
		Cancel: cancel,
	}, nil
}

func (e *Env) Teardown(ctx context.Context) {
	e.Cancel()
	_ = e.Redis.Terminate(ctx)
}
