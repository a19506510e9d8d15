package kvstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/docshare/internal/model"
	appErr "github.com/xxxsen/docshare/internal/pkg/errors"
)

func openTestStore(t *testing.T) *ShareStore {
	t.Helper()
	store, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newLink(token, owner, doc string, maxViews *int) *model.ShareLink {
	return &model.ShareLink{
		ID:           "id-" + token,
		Token:        token,
		DocumentID:   doc,
		OwnerID:      owner,
		AccessLevel:  model.AccessLevelView,
		State:        model.ShareStateActive,
		MaxViews:     maxViews,
		PasswordHash: "hash-" + token,
		CreatedAt:    100,
		ExpiresAt:    1000,
	}
}

func intPtr(v int) *int {
	return &v
}

func TestShareStoreCreateAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newLink("tok-1", "owner-1", "doc-1", intPtr(3))))
	got, err := store.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, "doc-1", got.DocumentID)
	require.Equal(t, "hash-tok-1", got.PasswordHash)
	require.Equal(t, 3, *got.MaxViews)
	require.Equal(t, 0, got.ViewCount)

	_, err = store.GetByToken(ctx, "missing")
	require.ErrorIs(t, err, appErr.ErrNotFound)

	err = store.Create(ctx, newLink("tok-1", "owner-2", "doc-2", nil))
	require.ErrorIs(t, err, appErr.ErrConflict)
}

func TestShareStoreListByOwner(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := newLink("tok-a", "owner/1", "doc-1", nil)
	second := newLink("tok-b", "owner/1", "doc-2", nil)
	second.CreatedAt = 200
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Create(ctx, second))
	require.NoError(t, store.Create(ctx, newLink("tok-c", "owner", "doc-1", nil)))

	items, err := store.ListByOwner(ctx, "owner/1", "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "tok-b", items[0].Token)

	items, err = store.ListByOwner(ctx, "owner/1", "doc-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "tok-a", items[0].Token)
}

func TestShareStoreRevoke(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newLink("tok-1", "owner-1", "doc-1", nil)))

	require.ErrorIs(t, store.Revoke(ctx, "owner-2", "tok-1"), appErr.ErrNotFound)
	require.NoError(t, store.Revoke(ctx, "owner-1", "tok-1"))
	require.NoError(t, store.Revoke(ctx, "owner-1", "tok-1"))

	_, err := store.ConsumeView(ctx, "tok-1", 500)
	require.ErrorIs(t, err, appErr.ErrShareRevoked)
}

func TestShareStoreConsumeView(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newLink("tok-1", "owner-1", "doc-1", intPtr(2))))

	count, err := store.ConsumeView(ctx, "tok-1", 500)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	count, err = store.ConsumeView(ctx, "tok-1", 500)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	_, err = store.ConsumeView(ctx, "tok-1", 500)
	require.ErrorIs(t, err, appErr.ErrShareExhausted)

	require.NoError(t, store.Create(ctx, newLink("tok-2", "owner-1", "doc-1", nil)))
	_, err = store.ConsumeView(ctx, "tok-2", 1001)
	require.ErrorIs(t, err, appErr.ErrShareExpired)

	_, err = store.ConsumeView(ctx, "missing", 500)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestShareStoreConsumeViewConcurrent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	const limit, workers = 5, 40
	require.NoError(t, store.Create(ctx, newLink("tok-1", "owner-1", "doc-1", intPtr(limit))))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		counts    []int
		exhausted int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, err := store.ConsumeView(ctx, "tok-1", 500)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				require.ErrorIs(t, err, appErr.ErrShareExhausted)
				exhausted++
				return
			}
			counts = append(counts, count)
		}()
	}
	wg.Wait()

	require.Len(t, counts, limit)
	require.Equal(t, workers-limit, exhausted)
	require.ElementsMatch(t, []int{1, 2, 3, 4, 5}, counts)

	got, err := store.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, limit, got.ViewCount)
}
