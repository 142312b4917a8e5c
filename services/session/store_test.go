package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatchly/models"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Hour), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	saved := &models.CallSession{
		ID:          "sess-1",
		BusinessID:  "biz-1",
		Channel:     "phone",
		CallerPhone: "+15551230000",
		Stage:       models.StageAskName,
		Status:      models.StatusActive,
	}
	require.NoError(t, store.Save(ctx, saved))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "biz-1", got.BusinessID)
	assert.Equal(t, models.StageAskName, got.Stage)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestRedisStoreUnknownSession(t *testing.T) {
	store, _ := newTestRedisStore(t)

	got, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.CallSession{ID: "sess-ttl", Status: models.StatusActive}))
	mr.FastForward(2 * time.Hour)

	got, err := store.Get(ctx, "sess-ttl")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreDelete(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.CallSession{ID: "sess-del"}))
	require.NoError(t, store.Delete(ctx, "sess-del"))

	got, err := store.Get(ctx, "sess-del")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLockSerializesPerSession(t *testing.T) {
	store := NewInMemoryStore(time.Hour)

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := store.Lock("sess-lock")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestLockDifferentSessionsDoNotBlock(t *testing.T) {
	store := NewInMemoryStore(time.Hour)

	unlockA := store.Lock("sess-a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := store.Lock("sess-b")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different session blocked")
	}
}

func TestLockMapReapsIdleEntries(t *testing.T) {
	store := NewInMemoryStore(time.Hour)

	for i := 0; i < 1000; i++ {
		unlock := store.Lock(fmt.Sprintf("sess-%d", i))
		unlock()
	}

	// Every entry was released, so the map must not retain dead sessions.
	assert.Zero(t, store.locks.held())

	unlock := store.Lock("sess-live")
	assert.Equal(t, 1, store.locks.held())
	unlock()
	assert.Zero(t, store.locks.held())
}

func TestInMemoryStoreExpiry(t *testing.T) {
	store := NewInMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.CallSession{ID: "sess-mem"}))
	time.Sleep(20 * time.Millisecond)

	got, err := store.Get(ctx, "sess-mem")
	require.NoError(t, err)
	assert.Nil(t, got)
}
