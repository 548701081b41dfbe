package okx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screener-engine/internal/domain"
)

func newTestServer(t *testing.T, routes map[string]string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 100, 5*time.Second)
}

func TestGetInstrumentsFiltersLiveQuote(t *testing.T) {
	c := newTestServer(t, map[string]string{
		"/public/instruments": `{"code":"0","msg":"","data":[
			{"instId":"BTC-USDT","baseCcy":"BTC","quoteCcy":"USDT","state":"live"},
			{"instId":"ETH-BTC","baseCcy":"ETH","quoteCcy":"BTC","state":"live"},
			{"instId":"OLD-USDT","baseCcy":"OLD","quoteCcy":"USDT","state":"suspend"}
		]}`,
	})

	got, err := c.GetInstruments(context.Background(), "USDT")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "BTC-USDT", got[0].InstID)
}

func TestGetTickers(t *testing.T) {
	c := newTestServer(t, map[string]string{
		"/market/tickers": `{"code":"0","msg":"","data":[
			{"instId":"BTC-USDT","last":"110","open24h":"100","high24h":"112","low24h":"95","volCcy24h":"123456.5"},
			{"instId":"BAD-USDT","last":"oops","open24h":"0","high24h":"","low24h":"","volCcy24h":""}
		]}`,
	})

	got, err := c.GetTickers(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.TickerSnapshot{
		Symbol: "BTC-USDT", Price: 110, Change24h: 10, Volume24h: 123456.5, High24h: 112, Low24h: 95,
	}, got[0])
	assert.Zero(t, got[1].Price)
	assert.Zero(t, got[1].Change24h)
}

func TestGetCandlesOldestFirst(t *testing.T) {
	c := newTestServer(t, map[string]string{
		"/market/candles": `{"code":"0","msg":"","data":[
			["1700003600000","101","103","100","102","50","5100","5100","1"],
			["1700000000000","100","102","99","101","40","4040","4040","1"]
		]}`,
	})

	got, err := c.GetCandles(context.Background(), "BTC-USDT", "1H", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.Candle{Timestamp: 1700000000000, Open: 100, High: 102, Low: 99, Close: 101, Volume: 40}, got[0])
	assert.Equal(t, 102.0, got[1].Close)
}

func TestAPIErrors(t *testing.T) {
	c := newTestServer(t, map[string]string{
		"/market/ticker": `{"code":"51001","msg":"Instrument ID does not exist","data":[]}`,
	})

	_, err := c.GetTickerSnapshot(context.Background(), "NOPE-USDT")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "51001", apiErr.Code)

	_, err = c.GetCandles(context.Background(), "BTC-USDT", "1H", 10)
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestGetTickerSnapshotEmpty(t *testing.T) {
	c := newTestServer(t, map[string]string{
		"/market/ticker": `{"code":"0","msg":"","data":[]}`,
	})
	_, err := c.GetTickerSnapshot(context.Background(), "BTC-USDT")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
