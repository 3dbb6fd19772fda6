package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChange(t *testing.T) {
	c := NewChange(Documents, Document("d1"), Documents, "", Cashflow)
	assert.Equal(t, []Collection{Documents, "document/d1", Cashflow}, c.Collections)
	assert.False(t, c.Empty())
	assert.True(t, NewChange().Empty())

	assert.True(t, c.Touches(Cashflow))
	assert.True(t, c.Touches("document/"))
	assert.False(t, c.Touches(Recurring))
	assert.True(t, c.Touches())

	merged := c.Merge(NewChange(Payments("d1"), Cashflow))
	assert.Equal(t, []Collection{Documents, "document/d1", Cashflow, "payments/d1"}, merged.Collections)
}

func TestHubPublish(t *testing.T) {
	hub := NewHub(4)

	all, cancelAll := hub.Subscribe()
	defer cancelAll()
	cash, cancelCash := hub.Subscribe(Cashflow)
	defer cancelCash()
	assert.Equal(t, 2, hub.Subscribers())

	hub.Publish(NewChange(Documents))
	hub.Publish(NewChange(Documents, Cashflow))
	hub.Publish(Change{})

	require.Len(t, all, 2)
	require.Len(t, cash, 1)
	got := <-cash
	assert.Equal(t, []Collection{Documents, Cashflow}, got.Collections)
}

func TestHubNeverBlocks(t *testing.T) {
	hub := NewHub(1)
	ch, cancel := hub.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			hub.Publish(NewChange(Documents))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, ch, 1)
	assert.Equal(t, int64(4), hub.Dropped())
}

func TestHubCancel(t *testing.T) {
	hub := NewHub(0)
	ch, cancel := hub.Subscribe()
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.Subscribers())

	hub.Publish(NewChange(Documents))
	assert.Equal(t, int64(0), hub.Dropped())
}

func TestCache(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewCache(15 * time.Minute)
	c.now = func() time.Time { return now }

	c.Put(TableColumns, "documents", "cols")
	c.Put(Documents, "all", "docs")
	c.Put(Document("d1"), "", "d1")

	v, ok := c.Get(TableColumns, "documents")
	require.True(t, ok)
	assert.Equal(t, "cols", v)
	assert.Equal(t, 3, c.Len())

	t.Run("invalidate by change", func(t *testing.T) {
		c.Invalidate(NewChange(Documents, Document("d1")))
		_, ok := c.Get(Documents, "all")
		assert.False(t, ok)
		_, ok = c.Get(Document("d1"), "")
		assert.False(t, ok)
		_, ok = c.Get(TableColumns, "documents")
		assert.True(t, ok)
	})

	t.Run("expiry", func(t *testing.T) {
		now = now.Add(15 * time.Minute)
		_, ok := c.Get(TableColumns, "documents")
		assert.False(t, ok)
	})
}

func TestGetOrLoad(t *testing.T) {
	c := NewCache(0)
	calls := 0
	load := func() (int, error) {
		calls++
		return 7, nil
	}

	v, err := GetOrLoad(c, Documents, "k", load)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	v, err = GetOrLoad(c, Documents, "k", load)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, err = GetOrLoad(c, Cashflow, "k", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	_, ok := c.Get(Cashflow, "k")
	assert.False(t, ok)
}

func TestCacheFollow(t *testing.T) {
	hub := NewHub(4)
	c := NewCache(0)
	c.Put(Cashflow, "90", "events")

	stop := c.Follow(hub)
	hub.Publish(NewChange(Cashflow))

	assert.Eventually(t, func() bool {
		_, ok := c.Get(Cashflow, "90")
		return !ok
	}, time.Second, 10*time.Millisecond)
	stop()
	assert.Equal(t, 0, hub.Subscribers())
}
