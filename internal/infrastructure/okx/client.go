package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"screener-engine/internal/domain"
)

const DefaultBaseURL = "https://www.okx.com/api/v5"

// Client reads public spot market data from the OKX v5 REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL string, requestsPerSecond float64, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// APIError is a non-zero OKX response code.
type APIError struct {
	Code string
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("okx API error %s: %s", e.Code, e.Msg)
}

type envelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type Instrument struct {
	InstID   string `json:"instId"`
	BaseCcy  string `json:"baseCcy"`
	QuoteCcy string `json:"quoteCcy"`
	State    string `json:"state"`
}

type ticker struct {
	InstID    string `json:"instId"`
	Last      string `json:"last"`
	Open24h   string `json:"open24h"`
	High24h   string `json:"high24h"`
	Low24h    string `json:"low24h"`
	VolCcy24h string `json:"volCcy24h"` // quote currency volume for spot
}

// get performs a rate-limited GET and decodes the data field into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("okx API error: HTTP %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if env.Code != "0" {
		return &APIError{Code: env.Code, Msg: env.Msg}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", path, err)
	}
	return nil
}

// GetInstruments returns live spot instruments quoted in quoteCcy.
func (c *Client) GetInstruments(ctx context.Context, quoteCcy string) ([]Instrument, error) {
	var all []Instrument
	if err := c.get(ctx, "/public/instruments", url.Values{"instType": {"SPOT"}}, &all); err != nil {
		return nil, err
	}

	var live []Instrument
	for _, inst := range all {
		if inst.State == "live" && (quoteCcy == "" || inst.QuoteCcy == quoteCcy) {
			live = append(live, inst)
		}
	}
	return live, nil
}

// GetTickers returns 24h snapshots for every spot instrument.
func (c *Client) GetTickers(ctx context.Context) ([]domain.TickerSnapshot, error) {
	var raw []ticker
	if err := c.get(ctx, "/market/tickers", url.Values{"instType": {"SPOT"}}, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.TickerSnapshot, 0, len(raw))
	for _, t := range raw {
		out = append(out, t.snapshot())
	}
	return out, nil
}

// GetTickerSnapshot returns the 24h snapshot of one instrument.
func (c *Client) GetTickerSnapshot(ctx context.Context, instID string) (domain.TickerSnapshot, error) {
	var raw []ticker
	if err := c.get(ctx, "/market/ticker", url.Values{"instId": {instID}}, &raw); err != nil {
		return domain.TickerSnapshot{}, err
	}
	if len(raw) == 0 {
		return domain.TickerSnapshot{}, fmt.Errorf("ticker %s: %w", instID, domain.ErrNotFound)
	}
	return raw[0].snapshot(), nil
}

// GetCandles returns up to limit candles for bar (e.g. "1H"), oldest first.
func (c *Client) GetCandles(ctx context.Context, instID, bar string, limit int) ([]domain.Candle, error) {
	q := url.Values{
		"instId": {instID},
		"bar":    {bar},
		"limit":  {strconv.Itoa(limit)},
	}
	var rows [][]string
	if err := c.get(ctx, "/market/candles", q, &rows); err != nil {
		return nil, err
	}

	// OKX returns newest first
	candles := make([]domain.Candle, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		if len(row) < 6 {
			return nil, fmt.Errorf("candles %s: short row of %d fields", instID, len(row))
		}
		ts, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("candles %s: timestamp: %w", instID, err)
		}
		candles = append(candles, domain.Candle{
			Timestamp: ts,
			Open:      parseNumber(row[1]),
			High:      parseNumber(row[2]),
			Low:       parseNumber(row[3]),
			Close:     parseNumber(row[4]),
			Volume:    parseNumber(row[5]),
		})
	}
	return candles, nil
}

func (t ticker) snapshot() domain.TickerSnapshot {
	last := parseNumber(t.Last)
	open := parseNumber(t.Open24h)
	snap := domain.TickerSnapshot{
		Symbol:    t.InstID,
		Price:     last,
		Volume24h: parseNumber(t.VolCcy24h),
		High24h:   parseNumber(t.High24h),
		Low24h:    parseNumber(t.Low24h),
	}
	if open > 0 {
		snap.Change24h = (last - open) / open * 100
	}
	return snap
}

// parseNumber reads an OKX decimal string; empty or malformed values are 0.
func parseNumber(s string) float64 {
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}
