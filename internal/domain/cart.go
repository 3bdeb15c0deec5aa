package domain

import "time"

// Outcome reports what a cart mutation actually did. Inventory violations
// are outcomes, not errors: callers that ignore the outcome observe the
// legacy no-op behavior, callers that inspect it can tell a cap from a
// genuine no-op without diffing cart state.
type Outcome string

const (
	// OutcomeApplied means the requested change took full effect.
	OutcomeApplied Outcome = "applied"
	// OutcomeClamped means part of the requested quantity was added, up to
	// the snapshot's available stock.
	OutcomeClamped Outcome = "clamped"
	// OutcomeRemoved means the targeted line was removed.
	OutcomeRemoved Outcome = "removed"
	// OutcomeNotInCart means the targeted line does not exist.
	OutcomeNotInCart Outcome = "not_in_cart"
	// OutcomeRejectedSoldOut means the product snapshot is sold out.
	OutcomeRejectedSoldOut Outcome = "rejected_sold_out"
	// OutcomeRejectedInsufficientStock means available stock cannot cover
	// the request at all.
	OutcomeRejectedInsufficientStock Outcome = "rejected_insufficient_stock"
)

// Mutated reports whether the outcome changed the cart.
func (o Outcome) Mutated() bool {
	switch o {
	case OutcomeApplied, OutcomeClamped, OutcomeRemoved:
		return true
	}
	return false
}

// CartLine is one (product, variant-or-none) entry with its own quantity.
// Product and Variant are add-time snapshots, not references.
type CartLine struct {
	Product  ProductSnapshot  `json:"product"`
	Variant  *VariantSnapshot `json:"variant,omitempty"`
	Quantity int              `json:"quantity"`
}

// variantID returns the line's variant ID, or "" for a variant-less line.
func (l *CartLine) variantID() string {
	if l.Variant == nil {
		return ""
	}
	return l.Variant.ID
}

// available returns the stock that governs this line: the variant's count
// when a variant is selected, otherwise the product's.
func (l *CartLine) available() int {
	if l.Variant != nil {
		return l.Variant.Quantity
	}
	return l.Product.Quantity
}

// Subtotal is the line's price contribution in cents.
func (l *CartLine) Subtotal() int64 {
	return l.Product.Price * int64(l.Quantity)
}

// Cart holds the line items and their derived totals for one user.
// TotalItems and TotalAmount are recomputed after every mutation and never
// mutated independently.
type Cart struct {
	UserID      string     `json:"user_id"`
	Items       []CartLine `json:"items"`
	TotalItems  int        `json:"total_items"`
	TotalAmount int64      `json:"total_amount"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewCart returns an empty cart for the given user.
func NewCart(userID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		UserID:    userID,
		Items:     []CartLine{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// findLine returns the index of the line matching (productID, variantID),
// where variantID "" matches a variant-less line. Returns -1 if absent.
func (c *Cart) findLine(productID, variantID string) int {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID && c.Items[i].variantID() == variantID {
			return i
		}
	}
	return -1
}

// recompute refreshes the derived totals from the items.
func (c *Cart) recompute() {
	c.TotalItems = 0
	c.TotalAmount = 0
	for i := range c.Items {
		c.TotalItems += c.Items[i].Quantity
		c.TotalAmount += c.Items[i].Subtotal()
	}
}

// AddLine adds quantity units of the given product (and optional variant)
// to the cart, merging into an existing line when the (product, variant)
// identity matches.
//
// Preconditions are checked in order: a sold-out product is rejected, then
// a request exceeding available stock on its own is rejected. When merging
// would push the line past available stock, the added amount is clamped to
// the remaining headroom; no headroom at all is a rejection. The cart is
// left untouched on any rejection.
func (c *Cart) AddLine(product ProductSnapshot, variant *VariantSnapshot, quantity int) Outcome {
	if product.SoldOut() {
		return OutcomeRejectedSoldOut
	}

	available := product.Quantity
	variantID := ""
	if variant != nil {
		available = variant.Quantity
		variantID = variant.ID
	}
	if available < quantity {
		return OutcomeRejectedInsufficientStock
	}

	if i := c.findLine(product.ID, variantID); i >= 0 {
		headroom := available - c.Items[i].Quantity
		if headroom <= 0 {
			return OutcomeRejectedInsufficientStock
		}
		add := quantity
		outcome := OutcomeApplied
		if add > headroom {
			add = headroom
			outcome = OutcomeClamped
		}
		c.Items[i].Quantity += add
		c.recompute()
		return outcome
	}

	line := CartLine{Product: product, Quantity: quantity}
	if variant != nil {
		v := *variant
		line.Variant = &v
	}
	c.Items = append(c.Items, line)
	c.recompute()
	return OutcomeApplied
}

// UpdateLineQuantity sets the matching line's quantity to exactly the
// requested value. A value of zero or less removes the line. A value above
// the line's available stock is rejected outright; unlike AddLine it is
// never clamped, so an update either lands exactly or not at all.
func (c *Cart) UpdateLineQuantity(productID, variantID string, quantity int) Outcome {
	if quantity <= 0 {
		return c.RemoveLine(productID, variantID)
	}

	i := c.findLine(productID, variantID)
	if i < 0 {
		return OutcomeNotInCart
	}
	if quantity > c.Items[i].available() {
		return OutcomeRejectedInsufficientStock
	}

	c.Items[i].Quantity = quantity
	c.recompute()
	return OutcomeApplied
}

// RemoveLine deletes the matching line.
func (c *Cart) RemoveLine(productID, variantID string) Outcome {
	i := c.findLine(productID, variantID)
	if i < 0 {
		return OutcomeNotInCart
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.recompute()
	return OutcomeRemoved
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []CartLine{}
	c.recompute()
}

// LineQuantity returns the quantity of the matching line, or 0. Product
// pages use it to render "already in cart: N".
func (c *Cart) LineQuantity(productID, variantID string) int {
	if i := c.findLine(productID, variantID); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a deep copy. Callers receive clones so no external code can
// alias the cart owned by the service.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = make([]CartLine, len(c.Items))
	for i := range c.Items {
		cp.Items[i] = c.Items[i]
		if c.Items[i].Variant != nil {
			v := *c.Items[i].Variant
			cp.Items[i].Variant = &v
		}
	}
	return &cp
}

// CheckoutItem is one cart line in the form the order service accepts.
type CheckoutItem struct {
	ProductID     string `json:"product_id"`
	Quantity      int    `json:"quantity"`
	SelectedColor string `json:"selected_color,omitempty"`
	SelectedSize  string `json:"selected_size,omitempty"`
}

// CheckoutItems converts the cart lines into order submission entries.
func (c *Cart) CheckoutItems() []CheckoutItem {
	items := make([]CheckoutItem, len(c.Items))
	for i := range c.Items {
		items[i] = CheckoutItem{
			ProductID: c.Items[i].Product.ID,
			Quantity:  c.Items[i].Quantity,
		}
		if c.Items[i].Variant != nil {
			items[i].SelectedColor = c.Items[i].Variant.Color
			items[i].SelectedSize = c.Items[i].Variant.Size
		}
	}
	return items
}
