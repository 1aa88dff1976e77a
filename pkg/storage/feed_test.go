package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeed(t *testing.T, bus *Bus) (*RedisFeed, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisFeedFromClient(client, bus), mr
}

func TestRedisFeedPublish(t *testing.T) {
	feed, mr := newTestFeed(t, NewBus())

	err := feed.Publish(context.Background(), Event{
		Table: TableCompanies,
		Type:  EventInsert,
		Row:   Row{"id": "c1", "name": "Tech Innovations Inc."},
	})
	require.NoError(t, err)
	_ = mr // published without error is enough; delivery is covered below
}

func TestRedisFeedFanOut(t *testing.T) {
	mr := miniredis.RunT(t)

	// Two replicas against the same Redis
	busA, busB := NewBus(), NewBus()
	clientA := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	clientB := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer clientA.Close()
	defer clientB.Close()

	feedA := NewRedisFeedFromClient(clientA, busA)
	feedB := NewRedisFeedFromClient(clientB, busB)

	received := make(chan Event, 1)
	busB.Subscribe(TableStudents, EventAll, func(e Event) { received <- e })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feedB.Run(ctx)

	// Give the subscriber loop time to attach
	time.Sleep(50 * time.Millisecond)

	err := feedA.Publish(ctx, Event{
		Table: TableStudents,
		Type:  EventUpdate,
		Row:   Row{"id": "s1", "resume_status": "approved"},
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, TableStudents, event.Table)
		assert.Equal(t, EventUpdate, event.Type)
		assert.Equal(t, "approved", event.Row["resume_status"])
	case <-time.After(2 * time.Second):
		t.Fatal("event did not arrive over the feed")
	}
}

func TestRedisFeedSkipsOwnMessages(t *testing.T) {
	mr := miniredis.RunT(t)

	bus := NewBus()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	feed := NewRedisFeedFromClient(client, bus)

	var count int
	bus.Subscribe(TableProfiles, EventAll, func(Event) { count++ })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, feed.Publish(ctx, Event{Table: TableProfiles, Type: EventInsert}))
	time.Sleep(100 * time.Millisecond)

	// The publishing instance already dispatched locally; the echoed message
	// must not be delivered a second time.
	assert.Zero(t, count)
}
