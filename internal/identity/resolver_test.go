package identity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/patrikb/ligafeed/internal/identity"
	"github.com/patrikb/ligafeed/internal/store/memory"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "FERENCVÁROS", identity.Normalize("  ferencváros "))
	assert.Equal(t, "KOVÁCS PÉTER", identity.Normalize("Kovács   Péter"))
	assert.Equal(t, "", identity.Normalize("   "))
}

func TestResolveTeam(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	r := identity.NewResolver(s, zap.NewNop().Sugar())

	id, _, err := s.CreateOrGetTeam(ctx, "Paksi FC", "", "")
	require.NoError(t, err)

	got, ok, err := r.ResolveTeam(ctx, "  paksi fc ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok, err = r.ResolveTeam(ctx, "Paks")
	require.NoError(t, err)
	assert.False(t, ok, "team resolution has no fuzzy fallback")
}

func TestResolvePlayerReversedNameFallback(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	r := identity.NewResolver(s, zap.NewNop().Sugar())

	teamID, _, err := s.CreateOrGetTeam(ctx, "DVSC", "", "")
	require.NoError(t, err)
	otherID, _, err := s.CreateOrGetTeam(ctx, "ZTE FC", "", "")
	require.NoError(t, err)
	_ = otherID

	playerID, err := s.CreatePlayer(ctx, "Kovács Péter", nil)
	require.NoError(t, err)
	_, err = s.LinkPlayerToTeam(ctx, playerID, teamID)
	require.NoError(t, err)

	// Direct order.
	got, ok, err := r.ResolvePlayer(ctx, "Kovács Péter", "DVSC")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, playerID, got)

	// Reversed order resolves via the fallback.
	got, ok, err = r.ResolvePlayer(ctx, "Péter Kovács", "dvsc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, playerID, got)

	// Same name against another team must fail: lookup is team-scoped.
	_, ok, err = r.ResolvePlayer(ctx, "Péter Kovács", "ZTE FC")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolvePlayerNoFallbackForLongNames(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	r := identity.NewResolver(s, zap.NewNop().Sugar())

	teamID, _, err := s.CreateOrGetTeam(ctx, "MTK Budapest", "", "")
	require.NoError(t, err)
	playerID, err := s.CreatePlayer(ctx, "Kiss János Máté", nil)
	require.NoError(t, err)
	_, err = s.LinkPlayerToTeam(ctx, playerID, teamID)
	require.NoError(t, err)

	// Three tokens: only the exact order matches.
	_, ok, err := r.ResolvePlayer(ctx, "Máté Kiss János", "MTK Budapest")
	require.NoError(t, err)
	assert.False(t, ok)
}
