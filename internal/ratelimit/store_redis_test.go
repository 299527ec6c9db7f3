package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindowReply(t *testing.T) {
	t.Run("allowed with integer score", func(t *testing.T) {
		allowed, count, oldest, err := parseWindowReply([]any{int64(1), int64(3), "1740830400000000"})
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 3, count)
		assert.Equal(t, int64(1740830400000000), oldest)
	})

	t.Run("rejected with exponent score", func(t *testing.T) {
		allowed, count, oldest, err := parseWindowReply([]any{int64(0), int64(5), "1.7408304e+15"})
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, 5, count)
		assert.Equal(t, int64(1740830400000000), oldest)
	})

	t.Run("malformed reply", func(t *testing.T) {
		_, _, _, err := parseWindowReply([]any{int64(1), "3"})
		require.Error(t, err)

		_, _, _, err = parseWindowReply([]any{int64(1), int64(3), "not-a-score"})
		require.Error(t, err)
	})
}
