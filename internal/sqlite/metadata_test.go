package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/folio/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestMetadataRepository_GetPut(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewMetadataRepository(db)

	_, err := repo.GetMeta(ctx, "actor")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.PutMeta(ctx, "actor", `{"id":"a"}`))
	require.NoError(t, repo.PutMeta(ctx, "actor", `{"id":"b"}`))

	value, err := repo.GetMeta(ctx, "actor")
	require.NoError(t, err)
	require.Equal(t, `{"id":"b"}`, value)
}
