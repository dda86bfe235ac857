package skinport

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tradableJSON = `[
	{"market_hash_name":"AWP | Dragon Lore","currency":"USD","slug":"awp-dragon-lore","min_price":10500.5,"quantity":5},
	{"market_hash_name":"Glock-18 | Fade","currency":"USD","slug":"glock-18-fade","min_price":1200,"quantity":1}
]`

const nonTradableJSON = `[
	{"market_hash_name":"AWP | Dragon Lore","currency":"USD","slug":"awp-dragon-lore","min_price":9800,"quantity":2},
	{"market_hash_name":"★ Karambit","currency":"USD","slug":"karambit","min_price":null,"quantity":3}
]`

func marketServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("tradable") == "true" {
			w.Write([]byte(tradableJSON))
			return
		}
		w.Write([]byte(nonTradableJSON))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestGetAllItems_Merge(t *testing.T) {
	client := NewClient(Config{APIURL: marketServer(t, nil).URL})

	items, err := client.GetAllItems(context.Background(), "730", "USD")
	require.NoError(t, err)
	require.Len(t, items, 3)

	byName := make(map[string]Item)
	for _, item := range items {
		byName[item.MarketHashName] = item
	}

	lore := byName["AWP | Dragon Lore"]
	if assert.NotNil(t, lore.MinPriceTradable) {
		assert.True(t, decimal.RequireFromString("10500.5").Equal(*lore.MinPriceTradable))
	}
	if assert.NotNil(t, lore.MinPriceNonTradable) {
		assert.True(t, decimal.NewFromInt(9800).Equal(*lore.MinPriceNonTradable))
	}
	assert.Equal(t, 7, lore.Quantity)
	assert.True(t, decimal.NewFromInt(9800).Equal(*lore.MinPrice()))

	glock := byName["Glock-18 | Fade"]
	assert.Nil(t, glock.MinPriceNonTradable)
	assert.True(t, decimal.NewFromInt(1200).Equal(*glock.MinPrice()))

	karambit := byName["★ Karambit"]
	assert.Nil(t, karambit.MinPrice())
	assert.Equal(t, 3, karambit.Quantity)
}

func TestGetAllItems_Auth(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("client_id:api_key"))
		if r.Header.Get("Authorization") != expected {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	_, err := NewClient(Config{APIURL: ts.URL, ClientID: "client_id", APIKey: "api_key"}).GetAllItems(context.Background(), "", "")
	assert.NoError(t, err)

	_, err = NewClient(Config{APIURL: ts.URL}).GetAllItems(context.Background(), "", "")
	assert.ErrorContains(t, err, "unexpected status code: 401")
}

func TestGetAllItems_Cache(t *testing.T) {
	var hits atomic.Int32
	client := NewClient(Config{APIURL: marketServer(t, &hits).URL})

	_, err := client.GetAllItems(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())

	_, err = client.GetAllItems(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "Should not increment request count due to caching")

	_, err = client.GetAllItems(context.Background(), "", "EUR")
	require.NoError(t, err)
	assert.Equal(t, int32(4), hits.Load())
}

func TestGetAllItems_Brotli(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "br", r.Header.Get("Accept-Encoding"))
		var buf bytes.Buffer
		bw := brotli.NewWriter(&buf)
		bw.Write([]byte(tradableJSON))
		bw.Close()
		w.Header().Set("Content-Encoding", "br")
		w.Write(buf.Bytes())
	}))
	defer ts.Close()

	items, err := NewClient(Config{APIURL: ts.URL}).GetAllItems(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestGetAllItems_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"errors":[{"id":"server_error","message":"Something went wrong"}]}`))
	}))
	defer ts.Close()

	_, err := NewClient(Config{APIURL: ts.URL}).GetAllItems(context.Background(), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch")

	var apiErr *ErrorResponse
	if assert.ErrorAs(t, err, &apiErr) {
		assert.Equal(t, "server_error", apiErr.Errors[0].ID)
	}
}

func TestGetAllItems_InvalidJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`invalid-json`))
	}))
	defer ts.Close()

	_, err := NewClient(Config{APIURL: ts.URL}).GetAllItems(context.Background(), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid character")
}

func TestQuotes(t *testing.T) {
	client := NewClient(Config{APIURL: marketServer(t, nil).URL})

	quotes, err := client.Quotes(context.Background(), "USD", []string{"AWP | Dragon Lore", "M4A4 | Howl"})
	require.NoError(t, err)
	assert.Len(t, quotes, 1)
	assert.Contains(t, quotes, "AWP | Dragon Lore")
}
