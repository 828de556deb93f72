package suser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"taskboard-backend/pkg/service/suser"
	"taskboard-backend/pkg/testutil"
)

func TestUpsertByLineUserID(t *testing.T) {
	ctx := context.Background()
	base := testutil.CreateBaseDB(ctx, t)
	defer base.Close()
	services := base.GetBaseServices()

	first, err := services.Us.UpsertByLineUserID(ctx, "U123", "Alice", "https://example.com/a.png")
	require.NoError(t, err)
	require.Equal(t, "Alice", first.Name)

	// A second login with fresh profile data updates in place.
	second, err := services.Us.UpsertByLineUserID(ctx, "U123", "Alice Chen", "https://example.com/b.png")
	require.NoError(t, err)
	require.Zero(t, first.ID.Compare(second.ID))
	require.Equal(t, "Alice Chen", second.Name)
	require.Equal(t, "https://example.com/b.png", second.AvatarURL)

	users, err := services.Us.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestGetUserByLineUserID(t *testing.T) {
	ctx := context.Background()
	base := testutil.CreateBaseDB(ctx, t)
	defer base.Close()
	services := base.GetBaseServices()

	created, err := services.Us.UpsertByLineUserID(ctx, "U123", "Alice", "")
	require.NoError(t, err)

	got, err := services.Us.GetUserByLineUserID(ctx, "U123")
	require.NoError(t, err)
	require.Zero(t, got.ID.Compare(created.ID))

	_, err = services.Us.GetUserByLineUserID(ctx, "Unope")
	require.ErrorIs(t, err, suser.ErrNoUserFound)
}
