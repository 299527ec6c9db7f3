package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "onboarding/pkg/domain"
	audit "onboarding/pkg/platform/audit"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	clientA := id.NewClientID()
	clientB := id.NewClientID()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, audit.Event{ClientID: clientA, Action: "document_registered", Timestamp: base}))
	require.NoError(t, store.Append(ctx, audit.Event{ClientID: clientB, Action: "document_registered", Timestamp: base.Add(time.Minute)}))
	require.NoError(t, store.Append(ctx, audit.Event{ClientID: clientA, Action: "document_accepted", Timestamp: base.Add(2 * time.Minute)}))

	t.Run("lists by client in append order", func(t *testing.T) {
		events, err := store.ListByClient(ctx, clientA)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "document_registered", events[0].Action)
		assert.Equal(t, "document_accepted", events[1].Action)
	})

	t.Run("lists recent newest first", func(t *testing.T) {
		events, err := store.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "document_accepted", events[0].Action)
		assert.Equal(t, clientB, events[1].ClientID)
	})

	t.Run("clear", func(t *testing.T) {
		store.Clear()
		events, err := store.ListByClient(ctx, clientA)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
