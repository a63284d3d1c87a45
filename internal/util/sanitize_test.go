package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	t.Run("replaces unsafe characters", func(t *testing.T) {
		require.Equal(t, "report_2026__.pdf", SanitizeFilename(` report<2026>?.pdf `))
	})

	t.Run("replaces path separators", func(t *testing.T) {
		require.Equal(t, ".._.._etc_passwd", SanitizeFilename("../../etc/passwd"))
	})

	t.Run("falls back for empty names", func(t *testing.T) {
		require.Equal(t, "file", SanitizeFilename("   "))
		require.Equal(t, "file", SanitizeFilename(".."))
	})

	t.Run("strips zero-width characters", func(t *testing.T) {
		require.Equal(t, "receipt scan.png", SanitizeFilename("receipt\u200b scan.png"))
	})

	t.Run("truncates long names by runes", func(t *testing.T) {
		long := make([]rune, 300)
		for i := range long {
			long[i] = 'ä'
		}

		actual := SanitizeFilename(string(long))
		require.Len(t, []rune(actual), 255)
	})
}
