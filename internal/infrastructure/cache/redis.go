package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Prefix namespaces every key the service writes.
const Prefix = "ibb"

func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// Key joins parts under Prefix: Key("idem", "abc") is "ibb:idem:abc".
func Key(parts ...string) string {
	return Prefix + ":" + strings.Join(parts, ":")
}
