package live

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-portal-server/internal/models"
	"patient-portal-server/internal/models/modelstest"
	"patient-portal-server/internal/store"
)

func next[T any](t *testing.T, ch <-chan Snapshot[T]) Snapshot[T] {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "observation ended early")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}
	return Snapshot[T]{}
}

func ids(items []models.FormResponse) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestObserve_CreateThenDelete(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	responses := store.NewResponseStore(modelstest.OpenDB(t), TopicNotifier{Hub: hub, Topic: ResponseTopic})

	snapshots := Observe(ctx, hub, ResponseTopic("alice"), func(ctx context.Context) ([]models.FormResponse, error) {
		return responses.List(ctx, "alice", store.ListOptions{})
	})

	first := next(t, snapshots)
	require.NoError(t, first.Err)
	assert.Empty(t, first.Items)

	created, err := models.NewFormResponse("p-1", models.FormTypeDailyCheckin, map[string]string{"answer": "Yes"}, time.Now())
	require.NoError(t, err)
	require.NoError(t, responses.Create(ctx, "alice", created))

	afterCreate := next(t, snapshots)
	assert.Contains(t, ids(afterCreate.Items), created.ID)

	require.NoError(t, responses.Delete(ctx, "alice", created.ID))

	afterDelete := next(t, snapshots)
	assert.NotContains(t, ids(afterDelete.Items), created.ID)
}

func TestObserve_OtherOwnerWritesDoNotPush(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	responses := store.NewResponseStore(modelstest.OpenDB(t), TopicNotifier{Hub: hub, Topic: ResponseTopic})
	snapshots := Observe(ctx, hub, ResponseTopic("alice"), func(ctx context.Context) ([]models.FormResponse, error) {
		return responses.List(ctx, "alice", store.ListOptions{})
	})
	next(t, snapshots)

	other, err := models.NewFormResponse("p-2", models.FormTypeDailyCheckin, map[string]string{}, time.Now())
	require.NoError(t, err)
	require.NoError(t, responses.Create(ctx, "bob", other))

	select {
	case <-snapshots:
		t.Fatal("alice should not receive a push for bob's write")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestObserve_DeliversFetchErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	boom := errors.New("backend down")
	snapshots := Observe(ctx, NewHub(), "t", func(context.Context) ([]int, error) {
		return nil, boom
	})

	snap := next(t, snapshots)
	assert.ErrorIs(t, snap.Err, boom)
}

func TestObserve_CancelClosesAndUnsubscribes(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	snapshots := Observe(ctx, hub, "t", func(context.Context) ([]int, error) {
		return []int{1}, nil
	})
	next(t, snapshots)
	assert.Equal(t, 1, hub.SubscriberCount("t"))

	cancel()
	for range snapshots {
	}
	assert.Equal(t, 0, hub.SubscriberCount("t"))
}
