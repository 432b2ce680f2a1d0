package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaenox/standdown-bot/internal/models"
)

func TestMemoryStorage_SettingsAreCopied(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	settings := s.Settings(ctx)
	settings.AbsenceChecker.IsActive = true

	// Mutating the returned document must not leak into the store.
	require.False(t, s.Settings(ctx).AbsenceChecker.IsActive)
}

func TestMemoryStorage_UpdateChecker(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	channelID, active := "c1", true
	updated, err := s.UpdateChecker(ctx, models.SectionSmoking, models.CheckerPatch{
		ChannelID: &channelID,
		IsActive:  &active,
	})
	require.NoError(t, err)
	require.Equal(t, "c1", updated.SmokingChecker.ChannelID)
	require.True(t, updated.SmokingChecker.IsActive)

	_, err = s.UpdateChecker(ctx, "bogus", models.CheckerPatch{IsActive: &active})
	require.Error(t, err)
}

func TestMemoryStorage_ExcludedUsers(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	added, err := s.AddExcludedUser(ctx, "u1")
	require.NoError(t, err)
	require.True(t, added)

	added, err = s.AddExcludedUser(ctx, "u1")
	require.NoError(t, err)
	require.False(t, added)

	require.Equal(t, []string{"u1"}, s.ExcludedUsers(ctx))

	removed, err := s.RemoveExcludedUser(ctx, "u1")
	require.NoError(t, err)
	require.True(t, removed)
	require.Empty(t, s.ExcludedUsers(ctx))
}
