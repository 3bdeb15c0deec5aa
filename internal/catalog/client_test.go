package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireska/cartsvc/internal/domain"
	apperrors "github.com/mireska/cartsvc/pkg/errors"
	"github.com/mireska/cartsvc/pkg/httpclient"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	return NewClient(httpclient.New(cfg), srv.URL)
}

func TestClient_GetProduct_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/products/prod-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{
			"id":"prod-1","name":"Widget","price":1990,"quantity":5,"status":"available",
			"variants":[{"id":"var-1","color":"red","size":"M","quantity":3}]
		}}`))
	})

	p, err := client.GetProduct(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "prod-1", p.ID)
	assert.Equal(t, int64(1990), p.Price)
	assert.Equal(t, 5, p.Quantity)
	require.Len(t, p.Variants, 1)
	assert.Equal(t, "var-1", p.Variants[0].ID)
}

func TestClient_GetProduct_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"product not found"}}`))
	})

	p, err := client.GetProduct(context.Background(), "missing")
	assert.Nil(t, p)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestClient_GetProduct_EmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})

	p, err := client.GetProduct(context.Background(), "prod-1")
	assert.Nil(t, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty product body")
}

func TestSnapshot_ProductOnly(t *testing.T) {
	p := &domain.Product{ID: "p1", Name: "Widget", Price: 1000, Quantity: 5, Status: domain.ProductStatusAvailable}

	ps, vs, err := Snapshot(p, "")
	require.NoError(t, err)
	assert.Nil(t, vs)
	assert.Equal(t, domain.ProductSnapshot{ID: "p1", Name: "Widget", Price: 1000, Quantity: 5, Status: domain.ProductStatusAvailable}, ps)
}

func TestSnapshot_WithVariant(t *testing.T) {
	p := &domain.Product{
		ID: "p1", Name: "Shirt", Price: 2500, Quantity: 50, Status: domain.ProductStatusAvailable,
		Variants: []domain.ProductVariant{{ID: "v1", Color: "red", Size: "M", Quantity: 3}},
	}

	_, vs, err := Snapshot(p, "v1")
	require.NoError(t, err)
	require.NotNil(t, vs)
	assert.Equal(t, &domain.VariantSnapshot{ID: "v1", Color: "red", Size: "M", Quantity: 3}, vs)
}

func TestSnapshot_UnknownVariant(t *testing.T) {
	p := &domain.Product{ID: "p1", Status: domain.ProductStatusAvailable}

	_, _, err := Snapshot(p, "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no variant")
}
