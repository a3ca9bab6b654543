package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyashahama/balance-cup-backend/internal/round"
)

func sampleItems() []round.ChoiceItem {
	return []round.ChoiceItem{
		{ID: "a", OptionText1: "Fly", OptionText2: "Swim", Topic: "love"},
		{ID: "b", OptionText1: "Tea", OptionText2: "Coffee", Topic: "love"},
	}
}

// ─── Memory ───────────────────────────────────────────────────────────────────

func TestMemory_MissThenHit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	_, ok, err := m.Get(ctx, "love")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Put(ctx, "love", sampleItems()))

	got, ok, err := m.Get(ctx, " Love ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, sampleItems(), got)
}

func TestMemory_CopiesInAndOut(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	items := sampleItems()
	require.NoError(t, m.Put(ctx, "love", items))
	items[0].OptionText1 = "mutated"

	got, _, _ := m.Get(ctx, "love")
	assert.Equal(t, "Fly", got[0].OptionText1)

	got[1].OptionText2 = "mutated"
	again, _, _ := m.Get(ctx, "love")
	assert.Equal(t, "Coffee", again[1].OptionText2)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	mClock := quartz.NewMock(t)
	m := NewMemory(time.Hour)
	m.clock = mClock

	require.NoError(t, m.Put(ctx, "work", sampleItems()))

	mClock.Advance(59 * time.Minute).MustWait(ctx)
	_, ok, _ := m.Get(ctx, "work")
	assert.True(t, ok)

	mClock.Advance(time.Minute).MustWait(ctx)
	_, ok, _ = m.Get(ctx, "work")
	assert.False(t, ok)
	assert.Zero(t, m.Len())
}

// ─── Redis ────────────────────────────────────────────────────────────────────

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set — skipping redis cache test")
	}
	client, err := Dial(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedis_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := testRedis(t)
	r := NewRedis(client, time.Minute)

	topic := "test-topic-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { client.Del(context.Background(), keyPrefix+normalize(topic)) })

	_, ok, err := r.Get(ctx, topic)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Put(ctx, topic, sampleItems()))

	got, ok, err := r.Get(ctx, topic)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, sampleItems(), got)

	ttl, err := client.TTL(ctx, keyPrefix+normalize(topic)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedis_CorruptedEntry(t *testing.T) {
	ctx := context.Background()
	client := testRedis(t)
	r := NewRedis(client, time.Minute)

	topic := "corrupt-" + time.Now().Format("150405.000000")
	key := keyPrefix + normalize(topic)
	t.Cleanup(func() { client.Del(context.Background(), key) })
	require.NoError(t, client.Set(ctx, key, "not json", time.Minute).Err())

	_, ok, err := r.Get(ctx, topic)
	assert.Error(t, err)
	assert.False(t, ok)
}
