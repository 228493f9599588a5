package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horoscope-api/forecast"
)

// memoryKV is an in-process stand-in for Redis that keeps JSON like the real client.
type memoryKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	pingErr error
	gets    int
	setKeys []string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryKV) Get(_ context.Context, key string, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return ErrMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.ttls[key] = ttl
	m.setKeys = append(m.setKeys, key)
	return nil
}

func (m *memoryKV) Ping(context.Context) error {
	return m.pingErr
}

type countingStore struct {
	calls    int
	err      error
	checkErr error
}

func (s *countingStore) Check(context.Context) (map[string]any, error) {
	return map[string]any{"db_ok": s.checkErr == nil}, s.checkErr
}

func (s *countingStore) Daily(_ context.Context, q forecast.DailyQuery) (forecast.Selection, error) {
	s.calls++
	if s.err != nil {
		return forecast.Selection{}, s.err
	}
	stars := 4
	return forecast.Selection{Date: q.Date, Records: []forecast.Record{
		{Sign: q.Sign, Date: q.Date, Category: "love", Forecast: "Call " + q.Sign, Stars: &stars},
	}}, nil
}

func (s *countingStore) Weekly(_ context.Context, q forecast.WeeklyQuery) (forecast.Selection, error) {
	s.calls++
	return forecast.Selection{WeekStart: q.WeekStart, WeekEnd: q.WeekEnd, Records: []forecast.Record{}}, s.err
}

func (s *countingStore) Monthly(_ context.Context, q forecast.MonthlyQuery) (forecast.Selection, error) {
	s.calls++
	return forecast.Selection{Month: q.Month, Records: []forecast.Record{}}, s.err
}

func (s *countingStore) Describe() map[string]any {
	return map[string]any{"backend": "db", "driver": "sqlite"}
}

func TestForecastCacheHit(t *testing.T) {
	store := &countingStore{}
	kv := newMemoryKV()
	c := NewForecastCache(store, kv, time.Minute, nil)
	ctx := context.Background()
	q := forecast.DailyRequest{Sign: "leo", Date: "2025-08-02"}.Normalize()

	first, err := c.Daily(ctx, q)
	require.NoError(t, err)
	second, err := c.Daily(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, first, second)
	require.Len(t, kv.setKeys, 1)
	assert.Equal(t, time.Minute, kv.ttls[kv.setKeys[0]])
}

func TestForecastCacheKeysDifferByQuery(t *testing.T) {
	store := &countingStore{}
	c := NewForecastCache(store, newMemoryKV(), time.Minute, nil)
	ctx := context.Background()

	_, err := c.Daily(ctx, forecast.DailyRequest{Sign: "leo"}.Normalize())
	require.NoError(t, err)
	_, err = c.Daily(ctx, forecast.DailyRequest{Sign: "virgo"}.Normalize())
	require.NoError(t, err)
	_, err = c.Monthly(ctx, forecast.MonthlyRequest{Sign: "leo"}.Normalize())
	require.NoError(t, err)

	assert.Equal(t, 3, store.calls)
	assert.NotEqual(t,
		CacheKey(forecast.Daily, forecast.DailyQuery{Sign: "leo"}),
		CacheKey(forecast.Monthly, forecast.DailyQuery{Sign: "leo"}),
	)
}

func TestForecastCacheEmptySelectionKeepsEmptyRecords(t *testing.T) {
	c := NewForecastCache(&countingStore{}, newMemoryKV(), time.Minute, nil)
	ctx := context.Background()
	q := forecast.WeeklyRequest{Sign: "leo"}.Normalize()

	_, err := c.Weekly(ctx, q)
	require.NoError(t, err)
	sel, err := c.Weekly(ctx, q)
	require.NoError(t, err)
	assert.NotNil(t, sel.Records)
	assert.Empty(t, sel.Records)
}

func TestForecastCacheFallsThroughOnRedisErrors(t *testing.T) {
	store := &countingStore{}
	kv := newMemoryKV()
	kv.getErr = errors.New("connection refused")
	kv.setErr = errors.New("connection refused")
	c := NewForecastCache(store, kv, time.Minute, nil)

	for range 2 {
		sel, err := c.Daily(context.Background(), forecast.DailyQuery{Sign: "leo", Date: "2025-08-02"})
		require.NoError(t, err)
		assert.Len(t, sel.Records, 1)
	}
	assert.Equal(t, 2, store.calls)
}

func TestForecastCacheDoesNotStoreErrors(t *testing.T) {
	boom := errors.New("disk gone")
	store := &countingStore{err: boom}
	kv := newMemoryKV()
	c := NewForecastCache(store, kv, time.Minute, nil)

	_, err := c.Daily(context.Background(), forecast.DailyQuery{Sign: "leo"})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, kv.setKeys)
}

func TestForecastCacheWithoutKV(t *testing.T) {
	store := &countingStore{}
	c := NewForecastCache(store, nil, time.Minute, nil)

	for range 3 {
		_, err := c.Monthly(context.Background(), forecast.MonthlyQuery{Sign: "leo"})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, store.calls)
}

func TestForecastCacheDescribe(t *testing.T) {
	c := NewForecastCache(&countingStore{}, newMemoryKV(), 5*time.Minute, nil)
	assert.Equal(t, map[string]any{
		"backend":            "db",
		"driver":             "sqlite",
		"response_cache_ttl": "5m0s",
	}, c.Describe())
}

func TestForecastCacheCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		c := NewForecastCache(&countingStore{}, newMemoryKV(), time.Minute, nil)
		fields, err := c.Check(context.Background())
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"db_ok": true, "redis_ok": true}, fields)
	})

	t.Run("redis down only degrades", func(t *testing.T) {
		kv := newMemoryKV()
		kv.pingErr = errors.New("connection refused")
		c := NewForecastCache(&countingStore{}, kv, time.Minute, nil)
		fields, err := c.Check(context.Background())
		require.NoError(t, err)
		assert.Equal(t, false, fields["redis_ok"])
	})

	t.Run("store failure is an error", func(t *testing.T) {
		boom := errors.New("db unreachable")
		c := NewForecastCache(&countingStore{checkErr: boom}, newMemoryKV(), time.Minute, nil)
		fields, err := c.Check(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, false, fields["db_ok"])
	})
}

func TestNilRedisClientIsSafe(t *testing.T) {
	var r *RedisClient
	assert.Error(t, r.Set(context.Background(), "k", 1, time.Second))
	assert.Error(t, r.Get(context.Background(), "k", new(int)))
	assert.Error(t, r.Ping(context.Background()))
	assert.NoError(t, r.Close())
}
