package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_EmptyURLDisablesCache(t *testing.T) {
	client, err := New(context.Background(), "")
	require.NoError(t, err)
	require.Nil(t, client)
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(context.Background(), "http://not-redis")
	require.ErrorContains(t, err, "parse redis URL")
}
