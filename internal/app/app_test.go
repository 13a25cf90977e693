package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rpggio/folio/internal/config"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.DB.Path = filepath.Join(t.TempDir(), "folio.db")
	cfg.Activity.MaxEntries = 4
	cfg.Activity.RetentionCount = 2
	return cfg
}

func TestOpen_ActorSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	first, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	actorID := first.Activities.Actor().ID
	require.NotEmpty(t, actorID)
	require.NoError(t, first.Close())

	second, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer second.Close()
	require.Equal(t, actorID, second.Activities.Actor().ID)
}

func TestOpen_WiresRetention(t *testing.T) {
	ctx := context.Background()
	a, err := Open(ctx, testConfig(t), nil)
	require.NoError(t, err)
	defer a.Close()

	for i := 0; i < 5; i++ {
		_, err := a.Activities.RecordCreate(ctx, "m1", "Manifest", "")
		require.NoError(t, err)
	}
	_, err = a.Worker.Flush(ctx)
	require.NoError(t, err)

	stats, err := a.Activities.GetArchiveStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.MainCount)
	require.Equal(t, 3, stats.ArchiveCount)

	c, err := a.Discovery.Collection(ctx, "https://example.org")
	require.NoError(t, err)
	require.Equal(t, 5, c.TotalItems)

	require.NoError(t, a.Health(ctx))
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Activity.RetentionCount = 10
	_, err := Open(context.Background(), cfg, nil)
	require.Error(t, err)
}
