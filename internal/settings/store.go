// Package settings persists the practice's schedule configuration.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/hackgods/clinic-scheduling/internal/slots"
)

// DefaultKey is where the schedule document lives in Redis.
const DefaultKey = "settings:schedule"

// DefaultConfiguration is served until someone saves schedule settings.
func DefaultConfiguration() slots.ScheduleConfiguration {
	return slots.ScheduleConfiguration{
		StartTime: "08:00 AM",
		EndTime:   "05:00 PM",
		Interval:  30,
		WorkDays:  []int{1, 2, 3, 4, 5},
		LunchBreak: slots.LunchBreak{
			Start:   "12:00 PM",
			End:     "01:00 PM",
			Enabled: false,
		},
	}
}

// RedisStore keeps the configuration as one JSON document.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a store under key, or DefaultKey when key is empty.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key}
}

// Load returns the saved configuration, or DefaultConfiguration if none is saved.
// The stored document is returned as is, without validation.
func (s *RedisStore) Load(ctx context.Context) (slots.ScheduleConfiguration, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return DefaultConfiguration(), nil
	}
	if err != nil {
		return slots.ScheduleConfiguration{}, fmt.Errorf("settings: get schedule: %w", err)
	}

	var cfg slots.ScheduleConfiguration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return slots.ScheduleConfiguration{}, fmt.Errorf("settings: unmarshal schedule: %w", err)
	}
	return cfg, nil
}

// Save overwrites the stored configuration.
func (s *RedisStore) Save(ctx context.Context, cfg slots.ScheduleConfiguration) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("settings: marshal schedule: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("settings: set schedule: %w", err)
	}
	return nil
}

// MemoryStore is an in-process provider.
type MemoryStore struct {
	mu  sync.RWMutex
	cfg slots.ScheduleConfiguration
}

func NewMemoryStore(cfg slots.ScheduleConfiguration) *MemoryStore {
	return &MemoryStore{cfg: cfg}
}

func (m *MemoryStore) Load(ctx context.Context) (slots.ScheduleConfiguration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneConfig(m.cfg), nil
}

func (m *MemoryStore) Save(ctx context.Context, cfg slots.ScheduleConfiguration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cloneConfig(cfg)
	return nil
}

// cloneConfig copies WorkDays so callers never share the backing array.
func cloneConfig(cfg slots.ScheduleConfiguration) slots.ScheduleConfiguration {
	days := make([]int, len(cfg.WorkDays))
	copy(days, cfg.WorkDays)
	cfg.WorkDays = days
	return cfg
}

var (
	_ slots.ConfigProvider = (*RedisStore)(nil)
	_ slots.ConfigProvider = (*MemoryStore)(nil)
)
