package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jpagency/paywall_bot/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInvoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/invoice/create", r.URL.Path)
		assert.Equal(t, "Token test-key", r.Header.Get("Authorization"))

		var req createInvoiceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "shop-1", req.ShopID)
		assert.Equal(t, 10.0, req.Amount)
		assert.Equal(t, "USD", req.Currency)

		json.NewEncoder(w).Encode(createInvoiceResponse{
			Status: "success",
			Result: CreatedInvoice{UUID: "INV-1", Link: "https://pay.cryptocloud.plus/INV-1"},
		})
	}))
	defer srv.Close()

	client := NewCryptoCloudClient("test-key", "shop-1", utils.InitLogger())
	client.SetBaseURL(srv.URL)

	created, err := client.CreateInvoice(context.Background(), 10.0, "USD", "order-1")
	require.NoError(t, err)
	assert.Equal(t, "INV-1", created.UUID)
	assert.Equal(t, "https://pay.cryptocloud.plus/INV-1", created.Link)
}

func TestCreateInvoiceRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(createInvoiceResponse{Status: "error"})
	}))
	defer srv.Close()

	client := NewCryptoCloudClient("test-key", "shop-1", utils.InitLogger())
	client.SetBaseURL(srv.URL)

	_, err := client.CreateInvoice(context.Background(), 10.0, "USD", "order-1")
	assert.Error(t, err)
}

func TestCreateInvoiceUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewCryptoCloudClient("test-key", "shop-1", utils.InitLogger())
	client.SetBaseURL(srv.URL)

	_, err := client.CreateInvoice(context.Background(), 10.0, "USD", "order-1")
	assert.Error(t, err)
}
