package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMoneyConversion(t *testing.T) {
	t.Parallel()

	t.Run("rounds fractions of a cent", func(t *testing.T) {
		require.Equal(t, int64(1999), CentsFromAmount(19.99))
		require.Equal(t, int64(10), CentsFromAmount(0.1))
		require.Equal(t, int64(3), CentsFromAmount(0.025))
	})

	t.Run("survives binary float noise", func(t *testing.T) {
		// 0.1+0.2 is 0.30000000000000004 in float64.
		require.Equal(t, int64(30), CentsFromAmount(0.1+0.2))
	})

	t.Run("round trips whole cents", func(t *testing.T) {
		require.Equal(t, 123.45, AmountFromCents(12345))
		require.Equal(t, int64(12345), CentsFromAmount(AmountFromCents(12345)))
	})

	t.Run("zero is zero", func(t *testing.T) {
		require.Equal(t, int64(0), CentsFromAmount(0))
		require.Equal(t, 0.0, AmountFromCents(0))
	})
}
