package services

import (
	"testing"

	"storefront-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.admin.Import(sampleImport("ORD-1"))
	require.NoError(t, err)

	stats, err := env.dashboard.Stats()
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Products)
	assert.Equal(t, 3, stats.Categories)
	assert.Equal(t, 4, stats.Discounts)
	assert.Equal(t, 3, stats.ShippingMethods)
	assert.Equal(t, 1, stats.LowStock)
	assert.Equal(t, 1, stats.OutOfStock)
	assert.Equal(t, 1, stats.Orders)
	assert.Equal(t, 1, stats.OrdersByStatus[models.AdminStatusPending])
	assert.Equal(t, "Test Shop", stats.StoreName)
}
