package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shyjal/goplaces/internal/domain"
)

func ConnectToRedis(addr string, database int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   database,
	})

	ctx, cancelFunc := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelFunc()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeExternal, "failed to connect to redis", err)
	}

	return rdb, nil
}
