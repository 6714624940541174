package redis

import (
	"context"
	"fmt"

	rd "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Fulfillment-api/internal/application/ports"
	"github.com/jhoicas/Fulfillment-api/pkg/config"
)

var _ ports.SequenceGenerator = (*SequenceGenerator)(nil)

// SequenceGenerator contadores por prefijo con INCR; compartidos entre réplicas.
type SequenceGenerator struct {
	rdb    rd.Cmdable
	prefix string
}

// NewClient abre el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*rd.Client, error) {
	rdb := rd.NewClient(&rd.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// NewSequenceGenerator keyPrefix antecede a cada prefijo de código (fulfillment:seq:WV).
func NewSequenceGenerator(rdb rd.Cmdable, keyPrefix string) *SequenceGenerator {
	return &SequenceGenerator{rdb: rdb, prefix: keyPrefix}
}

// Next devuelve el siguiente código del prefijo, p. ej. PT-000007.
func (g *SequenceGenerator) Next(ctx context.Context, prefix string) (string, error) {
	n, err := g.rdb.Incr(ctx, g.prefix+prefix).Result()
	if err != nil {
		return "", fmt.Errorf("incr %s: %w", prefix, err)
	}
	return fmt.Sprintf("%s-%06d", prefix, n), nil
}
