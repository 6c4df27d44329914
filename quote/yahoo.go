package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultYahooURL is the public Yahoo Finance chart endpoint.
const DefaultYahooURL = "https://query1.finance.yahoo.com"

// YahooClient fetches the latest price for a symbol from the Yahoo v8
// chart API. If the regular market price is missing it falls back to the
// last close in the returned chart, so callers see a single lookup.
type YahooClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewYahoo builds a client against baseURL (DefaultYahooURL if empty).
// timeout bounds the whole request; an expired request is reported as
// ErrPriceUnavailable like any other fetch failure.
func NewYahoo(baseURL string, timeout time.Duration) *YahooClient {
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &YahooClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chartMeta struct {
	Symbol             string   `json:"symbol"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	PreviousClose      *float64 `json:"previousClose"`
}

type chartQuote struct {
	Close []*float64 `json:"close"`
}

type chartResult struct {
	Meta       chartMeta `json:"meta"`
	Indicators struct {
		Quote []chartQuote `json:"quote"`
	} `json:"indicators"`
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *YahooClient) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1m", c.baseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrPriceUnavailable, symbol, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "papertrade/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrPriceUnavailable, symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return decimal.Zero, fmt.Errorf("%w: %s: status %d: %s", ErrPriceUnavailable, symbol, resp.StatusCode, body)
	}

	var cr chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: decode: %v", ErrPriceUnavailable, symbol, err)
	}
	if cr.Chart.Error != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %s", ErrPriceUnavailable, symbol, cr.Chart.Error.Description)
	}
	if len(cr.Chart.Result) == 0 {
		return decimal.Zero, fmt.Errorf("%w: %s: empty chart result", ErrPriceUnavailable, symbol)
	}

	price, ok := extractPrice(cr.Chart.Result[0])
	if !ok || price <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %s: no usable price in chart", ErrPriceUnavailable, symbol)
	}
	return decimal.NewFromFloat(price), nil
}

// extractPrice prefers the live regular market price and otherwise walks
// the chart closes backwards for the most recent non-null one.
func extractPrice(res chartResult) (float64, bool) {
	if p := res.Meta.RegularMarketPrice; p != nil && *p > 0 {
		return *p, true
	}
	for _, q := range res.Indicators.Quote {
		for i := len(q.Close) - 1; i >= 0; i-- {
			if c := q.Close[i]; c != nil && *c > 0 {
				return *c, true
			}
		}
	}
	if p := res.Meta.PreviousClose; p != nil && *p > 0 {
		return *p, true
	}
	return 0, false
}
