package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeProfitMargin(t *testing.T) {
	t.Run("with cost price", func(t *testing.T) {
		cost := 6.00
		margin, percent := ComputeProfitMargin(10.00, &cost)
		require.NotNil(t, margin)
		require.NotNil(t, percent)
		assert.Equal(t, 4.00, *margin)
		assert.Equal(t, 40.00, *percent)
	})

	t.Run("recomputed after price drop", func(t *testing.T) {
		cost := 6.00
		margin, percent := ComputeProfitMargin(8.00, &cost)
		require.NotNil(t, margin)
		assert.Equal(t, 2.00, *margin)
		assert.Equal(t, 25.00, *percent)
	})

	t.Run("without cost price", func(t *testing.T) {
		margin, percent := ComputeProfitMargin(10.00, nil)
		assert.Nil(t, margin)
		assert.Nil(t, percent)
	})

	t.Run("zero price", func(t *testing.T) {
		cost := 2.00
		margin, percent := ComputeProfitMargin(0, &cost)
		assert.Nil(t, margin)
		assert.Nil(t, percent)
	})

	t.Run("negative margin", func(t *testing.T) {
		cost := 12.50
		margin, percent := ComputeProfitMargin(10.00, &cost)
		require.NotNil(t, margin)
		assert.Equal(t, -2.50, *margin)
		assert.Equal(t, -25.00, *percent)
	})

	t.Run("rounds to cents", func(t *testing.T) {
		cost := 3.333
		margin, percent := ComputeProfitMargin(9.99, &cost)
		require.NotNil(t, margin)
		assert.Equal(t, 6.66, *margin)
		assert.Equal(t, 66.67, *percent)
	})
}
