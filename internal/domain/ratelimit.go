package domain

import (
	"context"
)

type RequestLimiterRepository interface {
	Allow(ctx context.Context, key string) (bool, error)
}
