package retention_test

import (
	"testing"

	"github.com/rpggio/folio/internal/domain/retention"
	"github.com/stretchr/testify/require"
)

func TestPolicy_Validate(t *testing.T) {
	require.NoError(t, retention.DefaultPolicy().Validate())
	require.NoError(t, retention.Policy{MaxEntries: 10, RetentionCount: 5}.Validate())

	for _, p := range []retention.Policy{
		{MaxEntries: 10, RetentionCount: 0},
		{MaxEntries: 10, RetentionCount: 10},
		{MaxEntries: 5, RetentionCount: 10},
	} {
		require.ErrorIs(t, p.Validate(), retention.ErrInvalidPolicy, "policy %+v", p)
	}
}

func TestPolicy_Exceeded(t *testing.T) {
	p := retention.Policy{MaxEntries: 10, RetentionCount: 5}
	require.False(t, p.Exceeded(10))
	require.True(t, p.Exceeded(11))
}
