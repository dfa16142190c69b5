/*
Package pricefeed looks up market prices from public sources.

PURPOSE:
  One client, two endpoints by instrument kind:
    mutual funds: https://api.mfapi.in/mf/{scheme}    -> data[0].nav
    equities:     https://query1.finance.yahoo.com/v8/finance/chart/{symbol}
                                                      -> meta.regularMarketPrice

  The HTTP client carries a timeout so every lookup has a bounded-time
  contract; the refresh sweep relies on that rather than its own
  cancellation logic.

FAILURE MODEL:
  Every failure (transport, non-200, missing fields, unparsable price)
  surfaces as a finance.PriceLookupError for that symbol. Callers treat
  these as per-symbol and non-fatal.

SEE ALSO:
  - invest/refresh.go: The sweep consuming this client
*/
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/moneta/finance-engine/finance"
)

const (
	mutualFundURL = "https://api.mfapi.in/mf/%s"
	equityURL     = "https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=1d&range=1d"

	defaultTimeout = 10 * time.Second
)

// Client fetches prices over HTTP. Safe for concurrent use.
type Client struct {
	http *http.Client
	log  logrus.FieldLogger

	// Overridable in tests.
	mutualFundBase string
	equityBase     string
}

func NewClient(log logrus.FieldLogger) *Client {
	return &Client{
		http:           &http.Client{Timeout: defaultTimeout},
		log:            log,
		mutualFundBase: mutualFundURL,
		equityBase:     equityURL,
	}
}

// NewClientWithBases creates a client against alternate endpoints.
// Used by tests to point at a local server.
func NewClientWithBases(log logrus.FieldLogger, httpClient *http.Client, mutualFundBase, equityBase string) *Client {
	return &Client{
		http:           httpClient,
		log:            log,
		mutualFundBase: mutualFundBase,
		equityBase:     equityBase,
	}
}

// LookupPrice returns the latest price for a symbol. Mutual funds use
// the scheme-code NAV endpoint; everything else uses the equity chart
// endpoint.
func (c *Client) LookupPrice(ctx context.Context, symbol string, kind finance.InvestmentType) (decimal.Decimal, error) {
	if symbol == "" {
		return decimal.Zero, &finance.PriceLookupError{Symbol: symbol, Kind: kind, Cause: fmt.Errorf("empty symbol")}
	}

	var (
		price decimal.Decimal
		err   error
	)
	if kind == finance.MutualFund {
		price, err = c.mutualFundNAV(ctx, symbol)
	} else {
		price, err = c.equityPrice(ctx, symbol)
	}
	if err != nil {
		return decimal.Zero, &finance.PriceLookupError{Symbol: symbol, Kind: kind, Cause: err}
	}

	c.log.WithFields(logrus.Fields{"symbol": symbol, "price": price.String()}).Debug("price lookup")
	return price, nil
}

// mutualFundNAV reads the latest NAV. The API returns NAVs as strings,
// newest first.
func (c *Client) mutualFundNAV(ctx context.Context, scheme string) (decimal.Decimal, error) {
	var payload struct {
		Data []struct {
			NAV string `json:"nav"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf(c.mutualFundBase, scheme), &payload); err != nil {
		return decimal.Zero, err
	}
	if len(payload.Data) == 0 {
		return decimal.Zero, fmt.Errorf("no data for scheme code %s", scheme)
	}

	nav, err := decimal.NewFromString(payload.Data[0].NAV)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparsable nav %q: %w", payload.Data[0].NAV, err)
	}
	return nav, nil
}

func (c *Client) equityPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	var payload struct {
		Chart struct {
			Result []struct {
				Meta struct {
					RegularMarketPrice *float64 `json:"regularMarketPrice"`
				} `json:"meta"`
			} `json:"result"`
		} `json:"chart"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf(c.equityBase, symbol), &payload); err != nil {
		return decimal.Zero, err
	}
	if len(payload.Chart.Result) == 0 || payload.Chart.Result[0].Meta.RegularMarketPrice == nil {
		return decimal.Zero, fmt.Errorf("no market price for %s", symbol)
	}
	return decimal.NewFromFloat(*payload.Chart.Result[0].Meta.RegularMarketPrice), nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "finance-engine/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
