// internal/dex/screener/client.go

package screener

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const rateLimit = 300 // requests per minute

// PairInfo is the price/metadata result for one trading pair. The zero value
// means "no data": any transport or parse failure degrades to it and callers
// treat the absence of a price as a first-class outcome.
type PairInfo struct {
	Price    float64
	HasPrice bool
	Icon     string
}

// apiResponse mirrors the DexScreener pairs payload.
type apiResponse struct {
	SchemaVersion string    `json:"schemaVersion"`
	Pairs         []apiPair `json:"pairs"`
}

type apiPair struct {
	ChainId     string `json:"chainId"`
	PairAddress string `json:"pairAddress"`
	PriceUsd    string `json:"priceUsd"`
	Icon        string `json:"icon"`
}

// Client queries the DexScreener API for pair prices.
type Client struct {
	baseURL     string
	chainID     string
	client      *http.Client
	logger      *zap.Logger
	rateLimiter *time.Ticker
}

// NewClient creates a DexScreener client for one chain.
func NewClient(baseURL, chainID string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		chainID: chainID,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:      logger.Named("dexscreener"),
		rateLimiter: time.NewTicker(time.Minute / rateLimit),
	}
}

// GetPairInfo fetches the current price and icon for a pair. Failures never
// surface as errors: the zero PairInfo comes back instead.
func (c *Client) GetPairInfo(ctx context.Context, pairID string) PairInfo {
	url := fmt.Sprintf("%s/latest/dex/pairs/%s/%s", c.baseURL, c.chainID, pairID)

	response, err := c.doRequest(ctx, url)
	if err != nil {
		c.logger.Debug("Pair lookup failed", zap.String("pair", pairID), zap.Error(err))
		return PairInfo{}
	}

	if len(response.Pairs) == 0 {
		return PairInfo{}
	}

	pair := response.Pairs[0]
	info := PairInfo{Icon: pair.Icon}
	if pair.PriceUsd == "" {
		return info
	}

	price, err := strconv.ParseFloat(pair.PriceUsd, 64)
	if err != nil {
		c.logger.Debug("Unparseable priceUsd",
			zap.String("pair", pairID),
			zap.String("price_usd", pair.PriceUsd))
		return PairInfo{}
	}

	info.Price = price
	info.HasPrice = true
	return info
}

// doRequest executes an HTTP request honoring the rate limit.
func (c *Client) doRequest(ctx context.Context, url string) (*apiResponse, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.rateLimiter.C:
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var response apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &response, nil
}
