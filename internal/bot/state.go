package bot

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Состояния диалога.
const (
	stateDefault         = ""
	stateAwaitingPayment = "awaiting_payment"
)

// StateStore хранит состояние диалога пользователя. Состояние — подсказка
// для меню, а не источник истины: истина лежит в леджере.
type StateStore interface {
	Set(ctx context.Context, userID int64, state string) error
	Get(ctx context.Context, userID int64) (string, error)
	Clear(ctx context.Context, userID int64) error
}

// MemoryStateStore — in-memory реализация для single-process запуска без redis.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[int64]string
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[int64]string)}
}

func (s *MemoryStateStore) Set(_ context.Context, userID int64, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == stateDefault {
		delete(s.states, userID)
	} else {
		s.states[userID] = state
	}
	return nil
}

func (s *MemoryStateStore) Get(_ context.Context, userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[userID], nil
}

func (s *MemoryStateStore) Clear(ctx context.Context, userID int64) error {
	return s.Set(ctx, userID, stateDefault)
}

// RedisStateStore переживает рестарт процесса; состояния протухают по TTL.
type RedisStateStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStateStore(addr, password string) (*RedisStateStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &RedisStateStore{
		client: client,
		prefix: "paywall:state:",
		ttl:    24 * time.Hour,
	}, nil
}

func (s *RedisStateStore) key(userID int64) string {
	return s.prefix + strconv.FormatInt(userID, 10)
}

func (s *RedisStateStore) Set(ctx context.Context, userID int64, state string) error {
	if state == stateDefault {
		return s.Clear(ctx, userID)
	}
	return s.client.Set(ctx, s.key(userID), state, s.ttl).Err()
}

func (s *RedisStateStore) Get(ctx context.Context, userID int64) (string, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return stateDefault, nil
	}
	if err != nil {
		return stateDefault, err
	}
	return val, nil
}

func (s *RedisStateStore) Clear(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}
