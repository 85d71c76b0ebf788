package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/todolite/todolite/internal/models"
)

// RedisStore keeps todos in Redis:
//
//	<prefix>:next_id   INCR counter for IDs
//	<prefix>:todo:<id> JSON record
//	<prefix>:order     sorted set of IDs scored by ID
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps client and checks that the server answers.
func NewRedisStore(ctx context.Context, client *redis.Client, prefix string) (*RedisStore, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) idKey() string           { return s.prefix + ":next_id" }
func (s *RedisStore) orderKey() string        { return s.prefix + ":order" }
func (s *RedisStore) todoKey(id int64) string { return s.prefix + ":todo:" + strconv.FormatInt(id, 10) }

func (s *RedisStore) List(ctx context.Context) ([]models.Task, error) {
	ids, err := s.client.ZRange(ctx, s.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	todos := []models.Task{}
	if len(ids) == 0 {
		return todos, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.prefix + ":todo:" + id
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue // removed between ZRANGE and MGET
		}
		var task models.Task
		if err := json.Unmarshal([]byte(raw), &task); err != nil {
			return nil, fmt.Errorf("decode todo: %w", err)
		}
		todos = append(todos, task)
	}
	return todos, nil
}

func (s *RedisStore) Get(ctx context.Context, id int64) (models.Task, error) {
	raw, err := s.client.Get(ctx, s.todoKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get todo %d: %w", id, err)
	}
	var task models.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return models.Task{}, fmt.Errorf("decode todo %d: %w", id, err)
	}
	return task, nil
}

func (s *RedisStore) Create(ctx context.Context, task models.Task) (models.Task, error) {
	id, err := s.client.Incr(ctx, s.idKey()).Result()
	if err != nil {
		return models.Task{}, fmt.Errorf("allocate id: %w", err)
	}
	task.ID = id
	raw, err := json.Marshal(task)
	if err != nil {
		return models.Task{}, err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.todoKey(id), raw, 0)
		pipe.ZAdd(ctx, s.orderKey(), redis.Z{Score: float64(id), Member: strconv.FormatInt(id, 10)})
		return nil
	})
	if err != nil {
		return models.Task{}, fmt.Errorf("insert todo: %w", err)
	}
	return task, nil
}

func (s *RedisStore) Update(ctx context.Context, id int64, task models.Task) (models.Task, error) {
	task.ID = id
	raw, err := json.Marshal(task)
	if err != nil {
		return models.Task{}, err
	}
	ok, err := s.client.SetXX(ctx, s.todoKey(id), raw, 0).Result()
	if err != nil {
		return models.Task{}, fmt.Errorf("update todo %d: %w", id, err)
	}
	if !ok {
		return models.Task{}, ErrNotFound
	}
	return task, nil
}

func (s *RedisStore) Delete(ctx context.Context, id int64) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.todoKey(id))
		pipe.ZRem(ctx, s.orderKey(), strconv.FormatInt(id, 10))
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
