package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Fulfillment-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestExtendedCost(t *testing.T) {
	assert.True(t, d("112.5").Equal(inventory.ExtendedCost(d("2.50"), 45)))
	assert.True(t, inventory.ExtendedCost(d("2.50"), 0).IsZero())
	assert.True(t, inventory.ExtendedCost(d("-1"), 5).IsZero())
}
