package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecouncil/internal/agent"
	"tradecouncil/internal/config"
	"tradecouncil/internal/market"
	"tradecouncil/internal/source"
)

type cannedSource struct {
	name   string
	series market.PriceSeries
	err    error
}

func (s *cannedSource) Name() string { return s.name }
func (s *cannedSource) Fetch(ctx context.Context, req source.Request) (market.PriceSeries, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.series, nil
}

type cannedAgent struct {
	name string
	vote agent.Vote
}

func (a *cannedAgent) Name() string { return a.name }
func (a *cannedAgent) Kind() string { return "rule" }
func (a *cannedAgent) Produce(ctx context.Context, ticker string, actx agent.Context) (agent.Vote, error) {
	v := a.vote
	v.Agent = a.name
	return v, nil
}

func trendingBars() market.PriceSeries {
	closes := []float64{10, 10, 10, 10, 12, 12, 12, 12}
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{Timestamp: int64(i+1) * 86400_000, Open: c, High: c, Low: c, Close: c}
	}
	return market.PriceSeries(bars)
}

func newTestServer(t *testing.T, src source.BarSource) *Server {
	t.Helper()
	resolver, err := source.NewResolver(source.ResolverConfig{
		Sources:         []source.BarSource{src},
		RateLimitPerMin: 6000,
	})
	require.NoError(t, err)

	registry := agent.NewRegistry()
	require.NoError(t, registry.Register(&cannedAgent{name: "bull", vote: agent.Vote{Action: agent.ActionBuy, Confidence: 0.9}}))
	require.NoError(t, registry.Register(&cannedAgent{name: "bear", vote: agent.Vote{Action: agent.ActionSell, Confidence: 0.3}}))
	registry.Seal()

	srv, err := New(Config{
		Resolver: resolver,
		Ensemble: agent.NewEnsemble(registry, 2),
		Registry: registry,
		Backtest: config.BacktestConfig{FastWindow: 2, SlowWindow: 4, InitialCash: 1000},
	})
	require.NoError(t, err)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &cannedSource{name: "yahoo", series: trendingBars()})
	w := doJSON(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "yahoo")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestPricesEndpoint(t *testing.T) {
	srv := newTestServer(t, &cannedSource{name: "yahoo", series: trendingBars()})
	w := doJSON(t, srv, http.MethodGet, "/api/market/prices?ticker=aapl", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Ticker string       `json:"ticker"`
		Source string       `json:"source"`
		Bars   []market.Bar `json:"bars"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "AAPL", resp.Ticker)
	assert.Equal(t, "yahoo", resp.Source)
	assert.Len(t, resp.Bars, 8)
}

func TestPricesEndpointRequiresTicker(t *testing.T) {
	srv := newTestServer(t, &cannedSource{name: "yahoo", series: trendingBars()})
	w := doJSON(t, srv, http.MethodGet, "/api/market/prices", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPricesEndpointAllSourcesFailed(t *testing.T) {
	srv := newTestServer(t, &cannedSource{name: "yahoo", err: errors.New("down")})
	w := doJSON(t, srv, http.MethodGet, "/api/market/prices?ticker=AAPL&source=auto", nil)
	// auto 链路全挂 → 502 且带逐源明细
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "attempts")
}

func TestBacktestRunEndpoint(t *testing.T) {
	srv := newTestServer(t, &cannedSource{name: "yahoo", series: trendingBars()})
	w := doJSON(t, srv, http.MethodPost, "/api/backtest/run", map[string]any{"ticker": "AAPL"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Stats struct {
			FinalEquity float64 `json:"final_equity"`
			Trades      int     `json:"trades"`
		} `json:"stats"`
		Trades []json.RawMessage `json:"trades"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1000.0, resp.Stats.FinalEquity)
	assert.Equal(t, 2, resp.Stats.Trades)
	assert.Len(t, resp.Trades, 2)
}

func TestBacktestRunRejectsInvertedWindows(t *testing.T) {
	srv := newTestServer(t, &cannedSource{name: "yahoo", series: trendingBars()})
	w := doJSON(t, srv, http.MethodPost, "/api/backtest/run", map[string]any{
		"ticker": "AAPL", "fast_window": 50, "slow_window": 20,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBacktestChartEndpoint(t *testing.T) {
	srv := newTestServer(t, &cannedSource{name: "yahoo", series: trendingBars()})
	w := doJSON(t, srv, http.MethodGet, "/api/backtest/chart?ticker=AAPL", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "echarts")
}

func TestSignalEndpoint(t *testing.T) {
	srv := newTestServer(t, &cannedSource{name: "yahoo", series: trendingBars()})
	w := doJSON(t, srv, http.MethodPost, "/api/agents/signal", map[string]any{
		"tickers": []string{"AAPL", "msft", "AAPL"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Results []struct {
			Ticker     string  `json:"ticker"`
			FinalVote  string  `json:"final_vote"`
			FinalScore float64 `json:"final_score"`
			Decisions  []struct {
				Agent string `json:"agent"`
			} `json:"decisions"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// 去重后两个标的，顺序保持
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "AAPL", resp.Results[0].Ticker)
	assert.Equal(t, "MSFT", resp.Results[1].Ticker)
	require.Len(t, resp.Results[0].Decisions, 2)
	// (+1*0.9 + -1*0.3) / 2 = 0.3 → buy
	assert.InDelta(t, 0.3, resp.Results[0].FinalScore, 1e-9)
	assert.Equal(t, "buy", resp.Results[0].FinalVote)
}

func TestSignalEndpointRequiresTickers(t *testing.T) {
	srv := newTestServer(t, &cannedSource{name: "yahoo", series: trendingBars()})
	w := doJSON(t, srv, http.MethodPost, "/api/agents/signal", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAgentsPingEndpoint(t *testing.T) {
	srv := newTestServer(t, &cannedSource{name: "yahoo", series: trendingBars()})
	w := doJSON(t, srv, http.MethodGet, "/api/agents/ping", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Agents []string          `json:"agents"`
		Kinds  map[string]string `json:"kinds"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"bull", "bear"}, resp.Agents)
	assert.Equal(t, "rule", resp.Kinds["bull"])
}
