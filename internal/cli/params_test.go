package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	t.Run("typed values", func(t *testing.T) {
		params, err := ParseParams([]string{
			"limit=10",
			"dryRun=true",
			"name=berlin-depot",
			"tags=[\"express\",\"fragile\"]",
		})
		require.NoError(t, err)

		assert.Equal(t, float64(10), params["limit"])
		assert.Equal(t, true, params["dryRun"])
		assert.Equal(t, "berlin-depot", params["name"])
		assert.Equal(t, []interface{}{"express", "fragile"}, params["tags"])
	})

	t.Run("value containing equals sign", func(t *testing.T) {
		params, err := ParseParams([]string{"filter=status=pending"})
		require.NoError(t, err)
		assert.Equal(t, "status=pending", params["filter"])
	})

	t.Run("empty args yield empty map", func(t *testing.T) {
		params, err := ParseParams(nil)
		require.NoError(t, err)
		assert.Empty(t, params)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := ParseParams([]string{"limit"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "key=value")
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := ParseParams([]string{"=10"})
		require.Error(t, err)
	})
}
