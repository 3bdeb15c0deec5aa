package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func widget(stock int) ProductSnapshot {
	return ProductSnapshot{ID: "p1", Name: "Widget", Price: 1000, Quantity: stock, Status: ProductStatusAvailable}
}

func soldOutWidget() ProductSnapshot {
	p := widget(0)
	p.Status = ProductStatusSoldOut
	return p
}

func redM(stock int) *VariantSnapshot {
	return &VariantSnapshot{ID: "v-red-m", Color: "red", Size: "M", Quantity: stock}
}

func redL(stock int) *VariantSnapshot {
	return &VariantSnapshot{ID: "v-red-l", Color: "red", Size: "L", Quantity: stock}
}

// recomputedTotals folds over the items from scratch, independent of the
// cached totals, so tests can assert the totals never drift.
func recomputedTotals(c *Cart) (int, int64) {
	var items int
	var amount int64
	for i := range c.Items {
		items += c.Items[i].Quantity
		amount += c.Items[i].Product.Price * int64(c.Items[i].Quantity)
	}
	return items, amount
}

func assertTotalsConsistent(t *testing.T, c *Cart) {
	t.Helper()
	items, amount := recomputedTotals(c)
	assert.Equal(t, items, c.TotalItems, "TotalItems drifted from a fresh fold")
	assert.Equal(t, amount, c.TotalAmount, "TotalAmount drifted from a fresh fold")
}

func assertUniqueLines(t *testing.T, c *Cart) {
	t.Helper()
	seen := make(map[string]bool, len(c.Items))
	for i := range c.Items {
		key := c.Items[i].Product.ID + "/" + c.Items[i].variantID()
		assert.False(t, seen[key], "duplicate line for %s", key)
		seen[key] = true
	}
}

// --- AddLine ---

func TestAddLine_NewLine(t *testing.T) {
	c := NewCart("u1")

	outcome := c.AddLine(widget(5), nil, 2)

	assert.Equal(t, OutcomeApplied, outcome)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 2, c.TotalItems)
	assert.Equal(t, int64(2000), c.TotalAmount)
	assertTotalsConsistent(t, c)
}

func TestAddLine_SoldOutRejected(t *testing.T) {
	c := NewCart("u1")

	outcome := c.AddLine(soldOutWidget(), nil, 1)

	assert.Equal(t, OutcomeRejectedSoldOut, outcome)
	assert.False(t, outcome.Mutated())
	assert.Empty(t, c.Items)
	assert.Zero(t, c.TotalItems)
}

func TestAddLine_RequestAboveStockRejected(t *testing.T) {
	c := NewCart("u1")

	// Requested quantity alone exceeds stock: rejected, never clamped.
	outcome := c.AddLine(widget(5), nil, 6)

	assert.Equal(t, OutcomeRejectedInsufficientStock, outcome)
	assert.Empty(t, c.Items)
}

func TestAddLine_MergeSameLine(t *testing.T) {
	c := NewCart("u1")

	require.Equal(t, OutcomeApplied, c.AddLine(widget(5), nil, 2))
	outcome := c.AddLine(widget(5), nil, 2)

	assert.Equal(t, OutcomeApplied, outcome)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 4, c.Items[0].Quantity)
	assertTotalsConsistent(t, c)
	assertUniqueLines(t, c)
}

func TestAddLine_MergeClampsToStock(t *testing.T) {
	c := NewCart("u1")
	require.Equal(t, OutcomeApplied, c.AddLine(widget(5), nil, 2))

	// Existing 2, adding 4 with stock 5: only 3 fit.
	outcome := c.AddLine(widget(5), nil, 4)

	assert.Equal(t, OutcomeClamped, outcome)
	assert.True(t, outcome.Mutated())
	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, int64(5000), c.TotalAmount)
	assertTotalsConsistent(t, c)
}

func TestAddLine_MergeNoHeadroomRejected(t *testing.T) {
	c := NewCart("u1")
	require.Equal(t, OutcomeApplied, c.AddLine(widget(3), nil, 3))

	outcome := c.AddLine(widget(3), nil, 1)

	assert.Equal(t, OutcomeRejectedInsufficientStock, outcome)
	assert.Equal(t, 3, c.Items[0].Quantity)
}

func TestAddLine_FinalQuantityIsMinOfSumAndStock(t *testing.T) {
	// Property from the storefront contract: adding q to existing c with
	// stock a yields min(c+q, a) whenever q itself fits the stock.
	tests := []struct {
		name                 string
		stock, existing, add int
		want                 int
		outcome              Outcome
	}{
		{"fits entirely", 10, 3, 4, 7, OutcomeApplied},
		{"clamped to stock", 5, 2, 4, 5, OutcomeClamped},
		{"exactly at stock", 6, 3, 3, 6, OutcomeApplied},
		{"already full", 4, 4, 1, 4, OutcomeRejectedInsufficientStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCart("u1")
			require.Equal(t, OutcomeApplied, c.AddLine(widget(tt.stock), nil, tt.existing))

			outcome := c.AddLine(widget(tt.stock), nil, tt.add)

			assert.Equal(t, tt.outcome, outcome)
			assert.Equal(t, tt.want, c.Items[0].Quantity)
			assertTotalsConsistent(t, c)
		})
	}
}

func TestAddLine_VariantStockGovernsLimit(t *testing.T) {
	c := NewCart("u1")

	// Product itself has plenty of stock; the selected variant has 2.
	p := widget(100)
	outcome := c.AddLine(p, redL(2), 3)

	assert.Equal(t, OutcomeRejectedInsufficientStock, outcome)
	assert.Empty(t, c.Items)

	assert.Equal(t, OutcomeApplied, c.AddLine(p, redL(2), 2))
	assert.Equal(t, 2, c.TotalItems)
}

func TestAddLine_DistinctVariantsAreDistinctLines(t *testing.T) {
	c := NewCart("u1")
	p := widget(10)

	require.Equal(t, OutcomeApplied, c.AddLine(p, redM(3), 1))
	require.Equal(t, OutcomeApplied, c.AddLine(p, redL(2), 1))

	// Same product, different variant IDs: two lines.
	require.Len(t, c.Items, 2)
	assertUniqueLines(t, c)
}

func TestAddLine_VariantAndVariantlessAreDistinctLines(t *testing.T) {
	c := NewCart("u1")
	p := widget(10)

	require.Equal(t, OutcomeApplied, c.AddLine(p, nil, 1))
	require.Equal(t, OutcomeApplied, c.AddLine(p, redM(3), 1))

	require.Len(t, c.Items, 2)
	assert.Equal(t, 1, c.LineQuantity("p1", ""))
	assert.Equal(t, 1, c.LineQuantity("p1", "v-red-m"))
}

func TestAddLine_DoesNotAliasCallerVariant(t *testing.T) {
	c := NewCart("u1")
	v := redM(3)

	require.Equal(t, OutcomeApplied, c.AddLine(widget(10), v, 1))
	v.Quantity = 99

	assert.Equal(t, 3, c.Items[0].Variant.Quantity)
}

// --- UpdateLineQuantity ---

func TestUpdateLineQuantity_Exact(t *testing.T) {
	c := NewCart("u1")
	require.Equal(t, OutcomeApplied, c.AddLine(widget(5), nil, 2))

	outcome := c.UpdateLineQuantity("p1", "", 4)

	assert.Equal(t, OutcomeApplied, outcome)
	assert.Equal(t, 4, c.Items[0].Quantity)
	assertTotalsConsistent(t, c)
}

func TestUpdateLineQuantity_AboveStockRejectsNotClamps(t *testing.T) {
	c := NewCart("u1")
	require.Equal(t, OutcomeApplied, c.AddLine(widget(5), nil, 5))

	// Asymmetry with AddLine: update past stock is rejected outright and
	// leaves the cart unchanged, it is never clamped.
	outcome := c.UpdateLineQuantity("p1", "", 6)

	assert.Equal(t, OutcomeRejectedInsufficientStock, outcome)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, 5, c.TotalItems)
}

func TestUpdateLineQuantity_ZeroRemoves(t *testing.T) {
	c := NewCart("u1")
	require.Equal(t, OutcomeApplied, c.AddLine(widget(5), nil, 2))

	outcome := c.UpdateLineQuantity("p1", "", 0)

	assert.Equal(t, OutcomeRemoved, outcome)
	assert.Empty(t, c.Items)
	assert.Zero(t, c.TotalAmount)
}

func TestUpdateLineQuantity_ZeroEquivalentToRemove(t *testing.T) {
	build := func() *Cart {
		c := NewCart("u1")
		require.Equal(t, OutcomeApplied, c.AddLine(widget(5), nil, 2))
		require.Equal(t, OutcomeApplied, c.AddLine(widget(5), redM(3), 1))
		return c
	}

	viaUpdate := build()
	viaRemove := build()

	viaUpdate.UpdateLineQuantity("p1", "v-red-m", 0)
	viaRemove.RemoveLine("p1", "v-red-m")

	assert.Equal(t, viaRemove.Items, viaUpdate.Items)
	assert.Equal(t, viaRemove.TotalItems, viaUpdate.TotalItems)
	assert.Equal(t, viaRemove.TotalAmount, viaUpdate.TotalAmount)
}

func TestUpdateLineQuantity_AbsentLine(t *testing.T) {
	c := NewCart("u1")

	outcome := c.UpdateLineQuantity("p1", "", 3)

	assert.Equal(t, OutcomeNotInCart, outcome)
	assert.Empty(t, c.Items)
}

func TestUpdateLineQuantity_VariantStockGoverns(t *testing.T) {
	c := NewCart("u1")
	require.Equal(t, OutcomeApplied, c.AddLine(widget(100), redM(3), 1))

	assert.Equal(t, OutcomeRejectedInsufficientStock, c.UpdateLineQuantity("p1", "v-red-m", 4))
	assert.Equal(t, OutcomeApplied, c.UpdateLineQuantity("p1", "v-red-m", 3))
	assert.Equal(t, 3, c.Items[0].Quantity)
}

// --- RemoveLine / Clear / queries ---

func TestRemoveLine_TargetsExactVariant(t *testing.T) {
	c := NewCart("u1")
	p := widget(10)
	require.Equal(t, OutcomeApplied, c.AddLine(p, redM(3), 1))
	require.Equal(t, OutcomeApplied, c.AddLine(p, redL(2), 1))

	outcome := c.RemoveLine("p1", "v-red-m")

	assert.Equal(t, OutcomeRemoved, outcome)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "v-red-l", c.Items[0].Variant.ID)
	assertTotalsConsistent(t, c)
}

func TestRemoveLine_Absent(t *testing.T) {
	c := NewCart("u1")

	assert.Equal(t, OutcomeNotInCart, c.RemoveLine("p1", ""))
}

func TestClear(t *testing.T) {
	c := NewCart("u1")
	require.Equal(t, OutcomeApplied, c.AddLine(widget(5), nil, 2))

	c.Clear()

	assert.Empty(t, c.Items)
	assert.Zero(t, c.TotalItems)
	assert.Zero(t, c.TotalAmount)
	assert.True(t, c.IsEmpty())
}

func TestLineQuantity(t *testing.T) {
	c := NewCart("u1")
	require.Equal(t, OutcomeApplied, c.AddLine(widget(5), nil, 2))

	assert.Equal(t, 2, c.LineQuantity("p1", ""))
	assert.Equal(t, 0, c.LineQuantity("p1", "v-red-m"))
	assert.Equal(t, 0, c.LineQuantity("p2", ""))
}

func TestClone_IsDeep(t *testing.T) {
	c := NewCart("u1")
	require.Equal(t, OutcomeApplied, c.AddLine(widget(5), redM(3), 1))

	cp := c.Clone()
	cp.Items[0].Quantity = 99
	cp.Items[0].Variant.Quantity = 99

	assert.Equal(t, 1, c.Items[0].Quantity)
	assert.Equal(t, 3, c.Items[0].Variant.Quantity)
}

func TestCheckoutItems(t *testing.T) {
	c := NewCart("u1")
	require.Equal(t, OutcomeApplied, c.AddLine(widget(5), nil, 2))
	require.Equal(t, OutcomeApplied, c.AddLine(ProductSnapshot{ID: "p2", Name: "Shirt", Price: 2500, Quantity: 9, Status: ProductStatusAvailable}, redM(3), 1))

	items := c.CheckoutItems()

	require.Len(t, items, 2)
	assert.Equal(t, CheckoutItem{ProductID: "p1", Quantity: 2}, items[0])
	assert.Equal(t, CheckoutItem{ProductID: "p2", Quantity: 1, SelectedColor: "red", SelectedSize: "M"}, items[1])
}

// --- End-to-end scenario from the storefront contract ---

func TestCartScenario_FullWalk(t *testing.T) {
	c := NewCart("u1")

	// Add P1 (price 10.00, stock 5) quantity 2.
	p1 := ProductSnapshot{ID: "P1", Name: "Mug", Price: 1000, Quantity: 5, Status: ProductStatusAvailable}
	require.Equal(t, OutcomeApplied, c.AddLine(p1, nil, 2))
	assert.Equal(t, 2, c.TotalItems)
	assert.Equal(t, int64(2000), c.TotalAmount)

	// Add P1 again quantity 4: clamp to +3, line lands on 5.
	require.Equal(t, OutcomeClamped, c.AddLine(p1, nil, 4))
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, int64(5000), c.TotalAmount)

	// Update to 6 with stock 5: rejected, quantity stays 5.
	require.Equal(t, OutcomeRejectedInsufficientStock, c.UpdateLineQuantity("P1", "", 6))
	assert.Equal(t, 5, c.Items[0].Quantity)

	// P2 in two variants: distinct lines despite the same product ID.
	p2 := ProductSnapshot{ID: "P2", Name: "Shirt", Price: 2500, Quantity: 50, Status: ProductStatusAvailable}
	m := &VariantSnapshot{ID: "P2-red-m", Color: "red", Size: "M", Quantity: 3}
	l := &VariantSnapshot{ID: "P2-red-l", Color: "red", Size: "L", Quantity: 2}
	require.Equal(t, OutcomeApplied, c.AddLine(p2, m, 1))
	require.Equal(t, OutcomeApplied, c.AddLine(p2, l, 1))
	require.Len(t, c.Items, 3)
	assertUniqueLines(t, c)

	// Remove exactly the red/M line; red/L survives.
	require.Equal(t, OutcomeRemoved, c.RemoveLine("P2", "P2-red-m"))
	require.Len(t, c.Items, 2)
	assert.Equal(t, "P2-red-l", c.Items[1].Variant.ID)

	assertTotalsConsistent(t, c)
}
