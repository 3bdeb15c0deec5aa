package domain

// Product availability statuses as reported by the catalog.
const (
	ProductStatusAvailable = "available"
	ProductStatusSoldOut   = "sold_out"
)

// ProductSnapshot is the catalog product copied into a cart line at
// add-time. It is immutable once embedded; it can go stale relative to the
// live catalog, which is resolved at checkout, not here.
type ProductSnapshot struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"` // unit price in cents
	Quantity int    `json:"quantity"`
	Status   string `json:"status"`
}

// SoldOut reports whether the snapshot was taken from a sold-out product.
func (p ProductSnapshot) SoldOut() bool {
	return p.Status == ProductStatusSoldOut
}

// VariantSnapshot is the selected color/size configuration copied into a
// cart line at add-time. A variant carries its own inventory count, which
// governs quantity limits instead of the product's.
type VariantSnapshot struct {
	ID       string `json:"id"`
	Color    string `json:"color"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// Product is the live catalog read model returned by the catalog service.
// The cart trusts these fields as given and never mutates them.
type Product struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Price    int64            `json:"price"`
	Quantity int              `json:"quantity"`
	Status   string           `json:"status"`
	Variants []ProductVariant `json:"variants,omitempty"`
}

// ProductVariant is the live variant read model.
type ProductVariant struct {
	ID       string `json:"id"`
	Color    string `json:"color"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// Variant returns the live variant with the given ID, or nil.
func (p *Product) Variant(id string) *ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}
