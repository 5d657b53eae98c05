// Package cachesession issues a session token for a user and stores it in
// Redis under a TTL.
package cachesession

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"cmdkit/command"
)

const Name = "CacheSession"

var schema = command.Schema{
	"user_id": {Type: command.KindString, Required: true},
	"ttl_seconds": {
		Type:       command.KindNumber,
		Default:    3600,
		HasDefault: true,
	},
}

type Command struct {
	rdb redis.Cmdable
}

func New(rdb redis.Cmdable) *Command {
	return &Command{rdb: rdb}
}

func (c *Command) Name() string           { return Name }
func (c *Command) Schema() command.Schema { return schema }

func (c *Command) Execute(ctx context.Context, run *command.Run) (any, error) {
	userID := run.Input("user_id").(string)
	ttl := time.Duration(asInt(run.Input("ttl_seconds"))) * time.Second

	token := uuid.NewString()
	key := "session:" + userID

	if err := c.rdb.Set(ctx, key, token, ttl).Err(); err != nil {
		return nil, fmt.Errorf("store session for %s: %w", userID, err)
	}

	return &Output{
		UserID:     userID,
		Token:      token,
		TTLSeconds: int(ttl / time.Second),
	}, nil
}

// asInt accepts the numeric shapes an input can arrive in: int when supplied
// from Go code, float64 when decoded from JSON variables.
func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
