package notify

import (
	"context"       // Context for Redis operations
	"encoding/json" // Job encoding
	"fmt"           // Error wrapping
	"time"          // Blocking pop timeout

	"github.com/google/uuid"       // Job identifiers
	"github.com/redis/go-redis/v9" // Redis client
)

// RedisQueue is a job queue backed by a Redis list. Producers LPUSH and the
// worker BRPOPs, so jobs are delivered in FIFO order to one consumer each.
type RedisQueue struct {
	rdb  *redis.Client // Redis client
	name string        // List key
}

// NewRedisQueue creates a queue on the list named name
func NewRedisQueue(rdb *redis.Client, name string) *RedisQueue {
	return &RedisQueue{rdb: rdb, name: name}
}

// Enqueue pushes job onto the queue and returns without waiting for delivery
func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	return q.rdb.LPush(ctx, q.name, b).Err()
}

// Dequeue pops the oldest job, blocking up to timeout. It returns nil, nil
// when the timeout expires with an empty queue.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.name).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// BRPOP replies with the list name followed by the value
	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &job, nil
}

// Len returns the number of queued jobs
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.name).Result()
}
