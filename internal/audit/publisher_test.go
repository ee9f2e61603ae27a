package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHash = "0xdeadbeef"

func TestPublisher_SyncMode(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), Event{
		Action:      ActionCertificateIssued,
		ContentHash: testHash,
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), testHash)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ActionCertificateIssued, events[0].Action)
	assert.NotEqual(t, uuid.Nil, events[0].ID, "publisher stamps an ID")
	assert.False(t, events[0].Timestamp.IsZero(), "publisher stamps a timestamp")
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	err := pub.Emit(context.Background(), Event{
		Action:      ActionCertificateRedeemed,
		ContentHash: testHash,
	})
	require.NoError(t, err)

	// Wait for async processing
	require.Eventually(t, func() bool {
		events, err := pub.List(context.Background(), testHash)
		return err == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), Event{
			Action:      ActionCertificateValidated,
			ContentHash: testHash,
		})
		require.NoError(t, err)
	}

	// Close should drain all events
	pub.Close()

	events, err := store.ListByContentHash(context.Background(), testHash)
	require.NoError(t, err)
	assert.Len(t, events, 10)
}

func TestPublisher_CloseIsIdempotent(t *testing.T) {
	pub := NewPublisher(NewInMemoryStore(), WithAsyncBuffer(10))
	pub.Close()
	pub.Close()
}

type failingSink struct{ calls int }

func (s *failingSink) Publish(context.Context, Event) error {
	s.calls++
	return assert.AnError
}

func TestPublisher_SinkFailureNeverSurfaces(t *testing.T) {
	store := NewInMemoryStore()
	sink := &failingSink{}
	pub := NewPublisher(store, WithSink(sink))
	defer pub.Close()

	err := pub.Emit(context.Background(), Event{
		Action:      ActionCertificateIssued,
		ContentHash: testHash,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sink.calls)

	events, err := store.ListByContentHash(context.Background(), testHash)
	require.NoError(t, err)
	assert.Len(t, events, 1, "store append happens even when the sink fails")
}

func TestInMemoryStore_ListByContentHash(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, Event{Action: ActionCertificateIssued, ContentHash: "0xaaa"}))
	require.NoError(t, store.Append(ctx, Event{Action: ActionRoleGranted}))
	require.NoError(t, store.Append(ctx, Event{Action: ActionCertificateRedeemed, ContentHash: "0xaaa"}))

	events, err := store.ListByContentHash(ctx, "0xaaa")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ActionCertificateIssued, events[0].Action)
	assert.Equal(t, ActionCertificateRedeemed, events[1].Action)

	assert.Len(t, store.All(), 3)
}
