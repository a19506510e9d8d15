package model

import (
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/docshare/internal/pkg/errors"
)

func TestAccessLevelAllows(t *testing.T) {
	require.True(t, AccessLevelView.Allows(AccessLevelView))
	require.False(t, AccessLevelView.Allows(AccessLevelDownload))
	require.True(t, AccessLevelDownload.Allows(AccessLevelView))
	require.True(t, AccessLevelDownload.Allows(AccessLevelDownload))
	require.False(t, AccessLevel("edit").Allows(AccessLevelView))
}

func TestShareLinkDerivedState(t *testing.T) {
	limit := 2
	link := &ShareLink{State: ShareStateActive, MaxViews: &limit, ViewCount: 1, ExpiresAt: 100}
	require.False(t, link.IsExpired(100))
	require.True(t, link.IsExpired(101))
	require.False(t, link.IsExhausted())
	link.ViewCount = 2
	require.True(t, link.IsExhausted())
	link.MaxViews = nil
	require.False(t, link.IsExhausted())
	require.False(t, link.RequiresPassword())
}

func TestShareLinkCheckOrder(t *testing.T) {
	limit := 1
	link := &ShareLink{State: ShareStateRevoked, MaxViews: &limit, ViewCount: 1, ExpiresAt: 10}
	require.ErrorIs(t, link.Check(20), appErr.ErrShareRevoked)
	link.State = ShareStateActive
	require.ErrorIs(t, link.Check(20), appErr.ErrShareExpired)
	require.ErrorIs(t, link.Check(5), appErr.ErrShareExhausted)
	link.ViewCount = 0
	require.NoError(t, link.Check(10))
}
