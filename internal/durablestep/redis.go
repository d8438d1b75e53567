package durablestep

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRuntime memoises step results in Redis so a step's result survives
// a process restart and is not recomputed when the Durable Step Runtime
// replays the enclosing function (spec §5: "On process restart, the
// Durable Step Runtime replays the enclosing function; already-succeeded
// steps are skipped and return their memoised value."). Grounded on the
// teacher's pervasive use of github.com/redis/go-redis/v9 for durable
// state (backend/internal/config.RedisConfig and its cache layer).
type RedisRuntime struct {
	client *redis.Client
	policy RetryPolicy
	ttl    time.Duration
}

// NewRedisRuntime builds a RedisRuntime. ttl bounds how long a memoised
// result is retained; zero means no expiry.
func NewRedisRuntime(client *redis.Client, policy RetryPolicy, ttl time.Duration) *RedisRuntime {
	return &RedisRuntime{client: client, policy: policy, ttl: ttl}
}

func redisKey(runID, name string) string {
	return fmt.Sprintf("workflow-engine:step:%s:%s", runID, name)
}

func (r *RedisRuntime) Run(ctx context.Context, runID, name string, fn func(ctx context.Context) (any, error)) (any, error) {
	k := redisKey(runID, name)

	cached, err := r.client.Get(ctx, k).Result()
	if err == nil {
		var value any
		if jsonErr := json.Unmarshal([]byte(cached), &value); jsonErr == nil {
			return value, nil
		}
	} else if err != redis.Nil {
		return nil, fmt.Errorf("durablestep: read memoised result: %w", err)
	}

	value, runErr := r.policy.execute(ctx, fn)
	if runErr != nil {
		return nil, runErr
	}

	encoded, marshalErr := json.Marshal(value)
	if marshalErr == nil {
		r.client.Set(ctx, k, encoded, r.ttl)
	}
	return value, nil
}
