package pricefeed_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneta/finance-engine/finance"
	"github.com/moneta/finance-engine/pricefeed"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *pricefeed.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return pricefeed.NewClientWithBases(quietLogger(), srv.Client(),
		srv.URL+"/mf/%s", srv.URL+"/chart/%s")
}

func TestLookupPrice_MutualFundNAV(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mf/120503", r.URL.Path)
		fmt.Fprint(w, `{"meta":{"scheme_name":"Test Fund"},"data":[{"date":"28-08-2026","nav":"45.6789"},{"date":"27-08-2026","nav":"45.1"}]}`)
	})

	price, err := client.LookupPrice(context.Background(), "120503", finance.MutualFund)
	require.NoError(t, err)
	assert.Equal(t, "45.6789", price.String())
}

func TestLookupPrice_Equity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chart/RELIANCE.NS", r.URL.Path)
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"regularMarketPrice":2875.5}}],"error":null}}`)
	})

	price, err := client.LookupPrice(context.Background(), "RELIANCE.NS", finance.Stock)
	require.NoError(t, err)
	assert.Equal(t, "2875.5", price.String())
}

func TestLookupPrice_EmptyResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	})

	_, err := client.LookupPrice(context.Background(), "999999", finance.MutualFund)
	require.Error(t, err)
	assert.ErrorIs(t, err, finance.ErrPriceLookup)
}

func TestLookupPrice_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.LookupPrice(context.Background(), "AAPL", finance.Stock)
	require.Error(t, err)
	assert.ErrorIs(t, err, finance.ErrPriceLookup)

	var lookupErr *finance.PriceLookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "AAPL", lookupErr.Symbol)
}

func TestLookupPrice_EmptySymbol(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.LookupPrice(context.Background(), "", finance.Stock)
	assert.ErrorIs(t, err, finance.ErrPriceLookup)
}
