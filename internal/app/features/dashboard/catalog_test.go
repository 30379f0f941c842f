package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductStatus(t *testing.T) {
	tests := []struct {
		stock, min int
		want       string
	}{
		{45, 20, StockIn},
		{12, 15, StockLow},
		{15, 15, StockLow},
		{0, 10, StockOut},
		{-1, 0, StockOut},
	}
	for _, tt := range tests {
		p := Product{Stock: tt.stock, MinStock: tt.min}
		assert.Equal(t, tt.want, p.Status(), "stock=%d min=%d", tt.stock, tt.min)
	}
}

func TestFilterRetailers(t *testing.T) {
	assert.Len(t, FilterRetailers("", "all"), 4)
	assert.Len(t, FilterRetailers("", ""), 4)

	active := FilterRetailers("", RetailerActive)
	assert.Len(t, active, 3)
	for _, r := range active {
		assert.True(t, r.Active())
	}

	byLocation := FilterRetailers("chicago", "all")
	require.Len(t, byLocation, 1)
	assert.Equal(t, "Quick Shop", byLocation[0].Name)

	assert.Empty(t, FilterRetailers("quick", RetailerActive))
}

func TestSearchInventory(t *testing.T) {
	assert.Len(t, SearchInventory("  "), 4)
	assert.Len(t, SearchInventory("electronics"), 2)

	bySKU := SearchInventory("sku-004")
	require.Len(t, bySKU, 1)
	assert.Equal(t, "Smart Wi-Fi Plug", bySKU[0].Name)
}

func TestStockAlerts(t *testing.T) {
	low, out := StockAlerts()
	require.Len(t, low, 1)
	require.Len(t, out, 1)
	assert.Equal(t, "SKU-002", low[0].SKU)
	assert.Equal(t, "SKU-003", out[0].SKU)
}

func TestSummarizeOverview(t *testing.T) {
	ov := SummarizeOverview()
	assert.Equal(t, 4, ov.Retailers)
	assert.Equal(t, 4, ov.Orders)
	assert.InDelta(t, 4770.0, ov.Revenue, 0.001)
	assert.Equal(t, 3, ov.PendingShipments)

	require.Len(t, ov.RecentOrders, 4)
	assert.Equal(t, "ORD-001", ov.RecentOrders[0].ID)
	assert.Equal(t, "ORD-004", ov.RecentOrders[3].ID)
}

func TestCatalogCopiesAreIndependent(t *testing.T) {
	rs := Retailers()
	rs[0].Name = "changed"
	assert.Equal(t, "Acme Retail Store", Retailers()[0].Name)
}

func TestValidatePassword(t *testing.T) {
	assert.Equal(t, MsgPasswordMismatch, validatePassword("secret1", "secret2"))
	assert.Equal(t, MsgPasswordTooShort, validatePassword("abc", "abc"))
	assert.Empty(t, validatePassword("secret1", "secret1"))
}
