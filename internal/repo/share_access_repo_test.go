package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/docshare/internal/model"
	"github.com/xxxsen/docshare/internal/repo"
	"github.com/xxxsen/docshare/internal/testutil"
)

func TestShareAccessRepoListAndPrune(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	accesses := repo.NewShareAccessRepo(db)
	ctx := context.Background()
	token := uuid.NewString()
	for i, ctime := range []int64{100, 200, 300} {
		require.NoError(t, accesses.Create(ctx, &model.ShareAccess{
			ID:         uuid.NewString(),
			ShareToken: token,
			Action:     model.AccessLevelView,
			ViewNumber: i + 1,
			ClientIP:   "10.0.0.1",
			UserAgent:  "test",
			Ctime:      ctime,
		}))
	}

	items, err := accesses.ListByToken(ctx, token, 2, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, 3, items[0].ViewNumber)

	items, err = accesses.ListByToken(ctx, token, 2, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = accesses.DeleteBefore(ctx, 250)
	require.NoError(t, err)
	items, err = accesses.ListByToken(ctx, token, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, int64(300), items[0].Ctime)
}
