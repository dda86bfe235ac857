// Package skinport reads public market prices from Skinport. The quotes are
// reference data for display; loan logic never reads them.
package skinport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/sync/errgroup"
)

const (
	defaultAppID    = "730" // CS2
	defaultCurrency = "USD"
	defaultCacheTTL = 5 * time.Minute
)

type Config struct {
	APIURL   string
	ClientID string
	APIKey   string
	CacheTTL time.Duration
}

type cachedResponse struct {
	items  []Item
	expiry time.Time
}

type Client struct {
	client *http.Client
	config Config

	cacheMu   sync.RWMutex
	cacheData map[string]cachedResponse
}

func NewClient(cfg Config) *Client {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	return &Client{
		client: &http.Client{
			Transport: &AuthTransport{
				ClientID: cfg.ClientID,
				APIKey:   cfg.APIKey,
				Base:     http.DefaultTransport,
			},
			Timeout: 10 * time.Second,
		},
		config:    cfg,
		cacheData: make(map[string]cachedResponse),
	}
}

// AuthTransport sets Skinport headers and Basic Auth when credentials are configured.
type AuthTransport struct {
	ClientID string
	APIKey   string
	Base     http.RoundTripper
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.ClientID != "" || t.APIKey != "" {
		auth := t.ClientID + ":" + t.APIKey
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(auth)))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "br")
	return t.Base.RoundTrip(req)
}

// GetAllItems returns every item for appID in currency, merging tradable and
// non-tradable offers. Results are cached per (appID, currency).
func (c *Client) GetAllItems(ctx context.Context, appID, currency string) ([]Item, error) {
	if appID == "" {
		appID = defaultAppID
	}
	if currency == "" {
		currency = defaultCurrency
	}

	cacheKey := appID + ":" + currency

	c.cacheMu.RLock()
	data, ok := c.cacheData[cacheKey]
	if ok && time.Now().Before(data.expiry) {
		c.cacheMu.RUnlock()
		return data.items, nil
	}
	c.cacheMu.RUnlock()

	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	// Another caller may have filled the cache while we waited.
	data, ok = c.cacheData[cacheKey]
	if ok && time.Now().Before(data.expiry) {
		return data.items, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	var tradableItems, nonTradableItems []RawItem

	g.Go(func() error {
		var err error
		tradableItems, err = c.fetchItems(ctx, appID, currency, true)
		if err != nil {
			return fmt.Errorf("failed to fetch tradable items: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		nonTradableItems, err = c.fetchItems(ctx, appID, currency, false)
		if err != nil {
			return fmt.Errorf("failed to fetch non-tradable items: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := mergeItems(tradableItems, nonTradableItems)

	c.cacheData[cacheKey] = cachedResponse{
		items:  result,
		expiry: time.Now().Add(c.config.CacheTTL),
	}

	return result, nil
}

// Quotes returns the market entries whose names are in names, keyed by name.
// Names missing from the market are absent from the result.
func (c *Client) Quotes(ctx context.Context, currency string, names []string) (map[string]Item, error) {
	items, err := c.GetAllItems(ctx, defaultAppID, currency)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}

	out := make(map[string]Item, len(names))
	for _, item := range items {
		if _, ok := wanted[item.MarketHashName]; ok {
			out[item.MarketHashName] = item
		}
	}
	return out, nil
}

func mergeItems(tradable, nonTradable []RawItem) []Item {
	itemMap := make(map[string]*Item, len(tradable))

	for _, item := range tradable {
		itemMap[item.MarketHashName] = &Item{
			MarketHashName:   item.MarketHashName,
			Currency:         item.Currency,
			Slug:             item.Slug,
			MinPriceTradable: item.MinPrice,
			Quantity:         item.Quantity,
		}
	}

	for _, item := range nonTradable {
		if existing, ok := itemMap[item.MarketHashName]; ok {
			existing.MinPriceNonTradable = item.MinPrice
			existing.Quantity += item.Quantity
			continue
		}
		itemMap[item.MarketHashName] = &Item{
			MarketHashName:      item.MarketHashName,
			Currency:            item.Currency,
			Slug:                item.Slug,
			MinPriceNonTradable: item.MinPrice,
			Quantity:            item.Quantity,
		}
	}

	result := make([]Item, 0, len(itemMap))
	for _, item := range itemMap {
		result = append(result, *item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].MarketHashName < result[j].MarketHashName })
	return result
}

func (c *Client) fetchItems(ctx context.Context, appID, currency string, tradable bool) ([]RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.APIURL+"/items", nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	q.Add("app_id", appID)
	q.Add("currency", currency)
	q.Add("tradable", strconv.FormatBool(tradable))
	req.URL.RawQuery = q.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "br" {
		body = brotli.NewReader(resp.Body)
	}

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(body)
		var apiErr ErrorResponse
		if err := json.Unmarshal(raw, &apiErr); err == nil && len(apiErr.Errors) > 0 {
			return nil, &apiErr
		}
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(raw))
	}

	var items []RawItem
	if err := json.NewDecoder(body).Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}
