package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pricepeak/internal/generator"
	"pricepeak/internal/model"
	"pricepeak/internal/portfolio"
	"pricepeak/internal/random"
	"pricepeak/internal/summary"
)

var testNow = time.Date(2024, 2, 20, 10, 0, 0, 0, time.UTC)

type fakeSnapshots struct {
	snap      *model.Snapshot
	err       error
	refreshed int
}

func (f *fakeSnapshots) Latest() *model.Snapshot { return f.snap }

func (f *fakeSnapshots) Refresh(context.Context) (*model.Snapshot, error) {
	f.refreshed++
	return f.snap, f.err
}

type fixedSummarizer string

func (f fixedSummarizer) Summarize(context.Context, string) (string, error) { return string(f), nil }

func testSeries(t *testing.T, id string, days int, seed int64) model.Series {
	t.Helper()
	return generator.New(random.New(seed), generator.WithClock(func() time.Time { return testNow })).Generate(id, days)
}

func testSnapshot(t *testing.T) *model.Snapshot {
	blended := testSeries(t, "Gold", 60, 9)
	return &model.Snapshot{
		Portfolio:  model.Portfolio{"Gold": 100},
		Blended:    blended,
		MonteCarlo: &model.MonteCarloResult{Mean: 1900, VaR95: 40},
	}
}

func setup(t *testing.T, snaps *fakeSnapshots, sum summary.Summarizer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	pm, err := portfolio.NewManager(context.Background(), &portfolio.MemoryStore{}, model.Portfolio{"Gold": 60, "Silver": 40}, zap.NewNop())
	require.NoError(t, err)

	defaults := Defaults{Days: 504, Horizon: 30, Paths: 100, Draws: 20, Workers: 2, Lookback: 20, Strategy: model.StrategyMomentum}
	h := NewHandler(snaps, pm, sum, defaults, zap.NewNop(), generator.WithClock(func() time.Time { return testNow }))
	h.now = func() time.Time { return testNow }
	return NewRouter(h)
}

func do(t *testing.T, r http.Handler, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndInstruments(t *testing.T) {
	r := setup(t, &fakeSnapshots{}, summary.NoopSummarizer{})

	w := do(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/instruments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out []instrumentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 8)
	assert.Equal(t, instrumentResponse{Name: "Crude Oil", InitialPrice: 85, Trend: 0.1, BaseVol: 2}, out[0])
}

func TestSeries(t *testing.T) {
	r := setup(t, &fakeSnapshots{}, summary.NoopSummarizer{})

	tests := []struct {
		name   string
		url    string
		status int
	}{
		{"ok", "/series/Gold?days=30&seed=5", http.StatusOK},
		{"bad days", "/series/Gold?days=abc", http.StatusBadRequest},
		{"zero days", "/series/Gold?days=0", http.StatusBadRequest},
		{"too many days", "/series/Gold?days=5001", http.StatusBadRequest},
		{"bad seed", "/series/Gold?seed=x", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodGet, tt.url, nil)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	a := do(t, r, http.MethodGet, "/series/Gold?days=30&seed=5", nil)
	b := do(t, r, http.MethodGet, "/series/Gold?days=30&seed=5", nil)
	assert.Equal(t, a.Body.String(), b.Body.String())

	var s model.Series
	require.NoError(t, json.Unmarshal(a.Body.Bytes(), &s))
	require.Len(t, s, 30)
	assert.Equal(t, "2024-02-19", s[29].Date.Format(model.DateLayout))
	assert.NotNil(t, s[29].RSI)
}

func TestPortfolio(t *testing.T) {
	r := setup(t, &fakeSnapshots{}, summary.NoopSummarizer{})

	w := do(t, r, http.MethodGet, "/portfolio", nil)
	assert.JSONEq(t, `{"Gold":60,"Silver":40}`, w.Body.String())

	w = do(t, r, http.MethodPut, "/portfolio", map[string]float64{"Copper": 100})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, "/portfolio", nil)
	assert.JSONEq(t, `{"Copper":100}`, w.Body.String())

	w = do(t, r, http.MethodPut, "/portfolio", map[string]float64{"Copper": -5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPortfolioEdits(t *testing.T) {
	r := setup(t, &fakeSnapshots{}, summary.NoopSummarizer{})

	w := do(t, r, http.MethodPut, "/portfolio/Copper", map[string]float64{"weight": 30})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"Gold":60,"Silver":40,"Copper":0}`, w.Body.String())

	w = do(t, r, http.MethodPut, "/portfolio/Copper", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodDelete, "/portfolio/Silver", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"Gold":60,"Copper":0}`, w.Body.String())

	w = do(t, r, http.MethodPost, "/portfolio/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"Crude Oil":50,"Gold":50}`, w.Body.String())
}

func TestBlend(t *testing.T) {
	r := setup(t, &fakeSnapshots{}, summary.NoopSummarizer{})
	oil := testSeries(t, "Crude Oil", 20, 1)
	gold := testSeries(t, "Gold", 20, 2)

	w := do(t, r, http.MethodPost, "/portfolio/blend", blendRequest{
		Series:  map[string]model.Series{"Crude Oil": oil, "Gold": gold},
		Weights: model.Portfolio{"Crude Oil": 50, "Gold": 50},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var out model.Series
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 20)
	assert.InDelta(t, (oil[0].Price+gold[0].Price)/2, out[0].Price, 1e-9)

	w = do(t, r, http.MethodPost, "/portfolio/blend", blendRequest{
		Series:  map[string]model.Series{"Crude Oil": oil, "Gold": gold[:10]},
		Weights: model.Portfolio{"Gold": 100},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, r, http.MethodPost, "/portfolio/blend", map[string]any{"weights": map[string]float64{"Gold": 1}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMonteCarlo(t *testing.T) {
	r := setup(t, &fakeSnapshots{}, summary.NoopSummarizer{})

	w := do(t, r, http.MethodPost, "/risk/montecarlo", monteCarloRequest{Price: 100, Volatility: 2, Paths: 50, Seed: 1})
	require.Equal(t, http.StatusOK, w.Code)
	var res model.MonteCarloResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 50, res.Paths)
	assert.Equal(t, 30, res.Horizon)
	assert.Len(t, res.Histogram, 10)

	w = do(t, r, http.MethodPost, "/risk/montecarlo", monteCarloRequest{Price: 0, Volatility: 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/risk/montecarlo", monteCarloRequest{Price: 100, Volatility: 2, Paths: MaxPaths + 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/risk/montecarlo", monteCarloRequest{Price: 100, Volatility: 2, Horizon: MaxHorizon + 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBacktest(t *testing.T) {
	snaps := &fakeSnapshots{snap: testSnapshot(t)}
	r := setup(t, snaps, summary.NoopSummarizer{})

	w := do(t, r, http.MethodPost, "/backtest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res model.BacktestResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, model.StrategyMomentum, res.Strategy)
	assert.Equal(t, 20, res.Lookback)

	w = do(t, r, http.MethodPost, "/backtest", backtestRequest{Strategy: "meanreversion", Lookback: 5})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/backtest", backtestRequest{Strategy: "carry"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/backtest", backtestRequest{Lookback: 60})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFrontier(t *testing.T) {
	r := setup(t, &fakeSnapshots{}, summary.NoopSummarizer{})

	w := do(t, r, http.MethodPost, "/frontier", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res model.FrontierResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []string{"Gold", "Silver"}, res.Instruments)
	assert.Len(t, res.Points, 20)

	w = do(t, r, http.MethodPost, "/frontier", frontierRequest{Instruments: []string{"Gold"}, Draws: -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/frontier", frontierRequest{Instruments: []string{"Gold"}, Draws: MaxDraws + 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSnapshot(t *testing.T) {
	snaps := &fakeSnapshots{snap: testSnapshot(t)}
	r := setup(t, snaps, summary.NoopSummarizer{})

	w := do(t, r, http.MethodGet, "/snapshot", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, snaps.refreshed)

	w = do(t, r, http.MethodGet, "/snapshot?refresh=true", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, snaps.refreshed)

	failing := &fakeSnapshots{err: errors.New("boom")}
	w = do(t, setup(t, failing, summary.NoopSummarizer{}), http.MethodGet, "/snapshot", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"boom"}`, w.Body.String())
}

func TestNewsAndCalendar(t *testing.T) {
	r := setup(t, &fakeSnapshots{}, summary.NoopSummarizer{})

	w := do(t, r, http.MethodGet, "/news?instruments=Gold,%20Copper&seed=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var headlines []model.Headline
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &headlines))
	assert.Len(t, headlines, 6)

	w = do(t, r, http.MethodGet, "/calendar", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var events []model.CalendarEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 4)
	assert.True(t, events[0].Date.After(testNow))
}

func TestSummary(t *testing.T) {
	snaps := &fakeSnapshots{snap: testSnapshot(t)}

	w := do(t, setup(t, snaps, summary.NoopSummarizer{}), http.MethodPost, "/summary", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, setup(t, snaps, fixedSummarizer("Gold drifts lower.")), http.MethodPost, "/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"summary":"Gold drifts lower."}`, w.Body.String())

	empty := &fakeSnapshots{snap: &model.Snapshot{}}
	w = do(t, setup(t, empty, fixedSummarizer("x")), http.MethodPost, "/summary", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
