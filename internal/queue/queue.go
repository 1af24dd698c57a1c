package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// StreamCompile carries task folders waiting to be compiled.
	StreamCompile = "asset_compile"
	// GroupCompilers is the consumer group of compile workers.
	GroupCompilers = "asset_compilers"
)

// TaskMessage is the payload pushed to the compile stream.
type TaskMessage struct {
	RunID    string `json:"run_id"`
	TaskPath string `json:"task_path"` // relative to the tasks root, slash-separated
}

// Queue manages the Redis stream used to distribute compilation.
type Queue struct {
	client *redis.Client
}

// New creates a Queue from a Redis client.
func New(client *redis.Client) *Queue {
	return &Queue{client: client}
}

// ConnectRedis creates a Redis client from a URL.
func ConnectRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// EnsureStream creates the consumer group if it doesn't exist.
func (q *Queue) EnsureStream(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, StreamCompile, GroupCompilers, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create group %s on %s: %w", GroupCompilers, StreamCompile, err)
	}
	return nil
}

// PushTask adds a task message to the compile stream.
func (q *Queue) PushTask(ctx context.Context, msg TaskMessage) (string, error) {
	id, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamCompile,
		Values: msg.values(),
	}).Result()
	if err != nil {
		return "", fmt.Errorf("push task: %w", err)
	}
	return id, nil
}

// ReadTask reads one task message, waiting up to block. It returns a nil
// message when nothing arrived in time.
func (q *Queue) ReadTask(ctx context.Context, consumer string, block time.Duration) (*TaskMessage, string, error) {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    GroupCompilers,
		Consumer: consumer,
		Streams:  []string{StreamCompile, ">"},
		Count:    1,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("read task: %w", err)
	}

	for _, stream := range streams {
		for _, msg := range stream.Messages {
			task := messageFrom(msg.Values)
			return &task, msg.ID, nil
		}
	}
	return nil, "", nil
}

// AckTask acknowledges a task message.
func (q *Queue) AckTask(ctx context.Context, msgID string) error {
	return q.client.XAck(ctx, StreamCompile, GroupCompilers, msgID).Err()
}

// Status returns the stream length and the messages delivered but not yet
// acknowledged.
func (q *Queue) Status(ctx context.Context) (length, pending int64, err error) {
	length, err = q.client.XLen(ctx, StreamCompile).Result()
	if err != nil {
		return 0, 0, err
	}
	p, err := q.client.XPending(ctx, StreamCompile, GroupCompilers).Result()
	if err != nil {
		if strings.HasPrefix(err.Error(), "NOGROUP") {
			return length, 0, nil
		}
		return 0, 0, err
	}
	return length, p.Count, nil
}

func (m TaskMessage) values() map[string]any {
	return map[string]any{
		"run_id":    m.RunID,
		"task_path": m.TaskPath,
	}
}

func messageFrom(values map[string]any) TaskMessage {
	return TaskMessage{
		RunID:    getString(values, "run_id"),
		TaskPath: getString(values, "task_path"),
	}
}

func getString(values map[string]any, key string) string {
	if v, ok := values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
