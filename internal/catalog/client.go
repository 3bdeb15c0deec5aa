// Package catalog is the read-side client for the product catalog service.
// The cart consults it at add-time to snapshot price and stock, and again at
// checkout to re-validate every line against live inventory.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mireska/cartsvc/internal/domain"
	"github.com/mireska/cartsvc/pkg/httpclient"
)

// Client fetches products from the catalog service over HTTP.
type Client struct {
	http    httpclient.Doer
	baseURL string
}

// NewClient creates a catalog client. baseURL is the catalog service root,
// e.g. "http://catalog:8080".
func NewClient(doer httpclient.Doer, baseURL string) *Client {
	return &Client{
		http:    doer,
		baseURL: baseURL,
	}
}

// GetProduct fetches the live product with the given ID. A missing product
// surfaces as an ErrNotFound application error.
func (c *Client) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	endpoint := c.baseURL + "/api/v1/products/" + url.PathEscape(productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create product request: %w", err)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call catalog service: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ResponseError(resp, "catalog")
	}
	defer resp.Body.Close()

	var body struct {
		Data *domain.Product `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode product response: %w", err)
	}
	if body.Data == nil {
		return nil, fmt.Errorf("catalog returned empty product body")
	}

	return body.Data, nil
}

// Snapshot converts a live product (and optionally one of its variants) into
// the immutable snapshots embedded in cart lines. Returns an error when
// variantID names a variant the product does not have.
func Snapshot(p *domain.Product, variantID string) (domain.ProductSnapshot, *domain.VariantSnapshot, error) {
	ps := domain.ProductSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Quantity: p.Quantity,
		Status:   p.Status,
	}

	if variantID == "" {
		return ps, nil, nil
	}

	v := p.Variant(variantID)
	if v == nil {
		return domain.ProductSnapshot{}, nil, fmt.Errorf("product %s has no variant %s", p.ID, variantID)
	}
	return ps, &domain.VariantSnapshot{
		ID:       v.ID,
		Color:    v.Color,
		Size:     v.Size,
		Quantity: v.Quantity,
	}, nil
}
