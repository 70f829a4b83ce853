// Package api exposes the analytics over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pricepeak/internal/backtest"
	"pricepeak/internal/calculator"
	"pricepeak/internal/frontier"
	"pricepeak/internal/generator"
	"pricepeak/internal/model"
	"pricepeak/internal/news"
	"pricepeak/internal/portfolio"
	"pricepeak/internal/random"
	"pricepeak/internal/risk"
	"pricepeak/internal/strategy"
	"pricepeak/internal/summary"
)

// Snapshots serves pipeline snapshots.
type Snapshots interface {
	Latest() *model.Snapshot
	Refresh(ctx context.Context) (*model.Snapshot, error)
}

// Portfolios holds the current allocation.
type Portfolios interface {
	Get() model.Portfolio
	Set(ctx context.Context, id string, weight float64) (model.Portfolio, error)
	Remove(ctx context.Context, id string) (model.Portfolio, error)
	Replace(ctx context.Context, p model.Portfolio) (model.Portfolio, error)
	Reset(ctx context.Context) (model.Portfolio, error)
}

// Defaults are the parameters used when a request leaves them out.
type Defaults struct {
	Days     int
	Horizon  int
	Paths    int
	Draws    int
	Workers  int
	Lookback int
	Strategy model.StrategyKind
}

// Request size ceilings.
const (
	MaxDays    = 5000
	MaxHorizon = 3650
	MaxPaths   = 100000
	MaxDraws   = 100000
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler serves the HTTP endpoints.
type Handler struct {
	snaps      Snapshots
	portfolios Portfolios
	summarizer summary.Summarizer
	defaults   Defaults
	genOpts    []generator.Option
	now        func() time.Time
	logger     *zap.Logger
}

// NewHandler creates a Handler.
func NewHandler(snaps Snapshots, portfolios Portfolios, sum summary.Summarizer, defaults Defaults, logger *zap.Logger, genOpts ...generator.Option) *Handler {
	return &Handler{
		snaps:      snaps,
		portfolios: portfolios,
		summarizer: sum,
		defaults:   defaults,
		genOpts:    genOpts,
		now:        time.Now,
		logger:     logger,
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type instrumentResponse struct {
	Name         string  `json:"name"`
	InitialPrice float64 `json:"initialPrice"`
	Trend        float64 `json:"trend"`
	BaseVol      float64 `json:"baseVol"`
}

// Instruments lists the known instruments and their starting conditions.
func (h *Handler) Instruments(c *gin.Context) {
	out := make([]instrumentResponse, 0, len(generator.Universe))
	for _, id := range generator.Universe {
		p := generator.Lookup(id)
		out = append(out, instrumentResponse{Name: id, InitialPrice: p.InitialPrice, Trend: p.Trend, BaseVol: p.BaseVol})
	}
	c.JSON(http.StatusOK, out)
}

// Series generates and annotates one instrument.
//
// GET /series/:instrument?days=504&seed=42
func (h *Handler) Series(c *gin.Context) {
	days, err := intQuery(c, "days", h.defaults.Days)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := bounded("days", days, MaxDays); err != nil {
		h.fail(c, err)
		return
	}
	seed, err := seedQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	s := generator.New(random.New(seed), h.genOpts...).Generate(c.Param("instrument"), days)
	c.JSON(http.StatusOK, calculator.Annotate(s))
}

// GetPortfolio returns the current allocation.
func (h *Handler) GetPortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, h.portfolios.Get())
}

// PutPortfolio replaces the allocation.
func (h *Handler) PutPortfolio(c *gin.Context) {
	var p model.Portfolio
	if err := c.ShouldBindJSON(&p); err != nil {
		h.fail(c, invalid(err.Error()))
		return
	}
	h.portfolioResult(c)(h.portfolios.Replace(c.Request.Context(), p))
}

type weightRequest struct {
	Weight *float64 `json:"weight" binding:"required"`
}

// SetWeight changes one instrument's weight, trimmed so the total stays at
// or under 100.
func (h *Handler) SetWeight(c *gin.Context) {
	var req weightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, invalid(err.Error()))
		return
	}
	h.portfolioResult(c)(h.portfolios.Set(c.Request.Context(), c.Param("instrument"), *req.Weight))
}

// RemoveInstrument drops an instrument from the allocation.
func (h *Handler) RemoveInstrument(c *gin.Context) {
	h.portfolioResult(c)(h.portfolios.Remove(c.Request.Context(), c.Param("instrument")))
}

// ResetPortfolio restores the reset allocation.
func (h *Handler) ResetPortfolio(c *gin.Context) {
	h.portfolioResult(c)(h.portfolios.Reset(c.Request.Context()))
}

func (h *Handler) portfolioResult(c *gin.Context) func(model.Portfolio, error) {
	return func(p model.Portfolio, err error) {
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

type blendRequest struct {
	Series    map[string]model.Series `json:"series" binding:"required"`
	Weights   model.Portfolio         `json:"weights" binding:"required"`
	Reference string                  `json:"reference"`
}

// Blend aggregates caller-supplied series by weight.
func (h *Handler) Blend(c *gin.Context) {
	var req blendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, invalid(err.Error()))
		return
	}
	if req.Reference == "" {
		req.Reference = generator.DefaultInstrument
	}
	out, err := portfolio.Blend(req.Series, req.Weights, req.Reference)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type monteCarloRequest struct {
	Price      float64 `json:"price"`
	Volatility float64 `json:"volatility"`
	Horizon    int     `json:"horizon"`
	Paths      int     `json:"paths"`
	Seed       int64   `json:"seed"`
}

// MonteCarlo simulates terminal prices from a caller-supplied start.
func (h *Handler) MonteCarlo(c *gin.Context) {
	var req monteCarloRequest
	if err := bindOptional(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if req.Horizon == 0 {
		req.Horizon = h.defaults.Horizon
	}
	if req.Paths == 0 {
		req.Paths = h.defaults.Paths
	}
	if req.Horizon > MaxHorizon || req.Paths > MaxPaths {
		h.fail(c, invalid(fmt.Sprintf("horizon must not exceed %d and paths %d", MaxHorizon, MaxPaths)))
		return
	}
	res, err := risk.NewSimulator(random.New(req.Seed)).
		SimulateParallel(c.Request.Context(), req.Price, req.Volatility, req.Horizon, req.Paths, h.defaults.Workers)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type backtestRequest struct {
	Series   model.Series `json:"series"`
	Strategy string       `json:"strategy"`
	Lookback int          `json:"lookback"`
}

// Backtest replays a strategy over the supplied series, or over the latest
// blended series when none is given.
func (h *Handler) Backtest(c *gin.Context) {
	var req backtestRequest
	if err := bindOptional(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	kind := h.defaults.Strategy
	if req.Strategy != "" {
		k, err := strategy.Parse(req.Strategy)
		if err != nil {
			h.fail(c, err)
			return
		}
		kind = k
	}
	if req.Lookback == 0 {
		req.Lookback = h.defaults.Lookback
	}
	if req.Series == nil {
		snap, err := h.snapshot(c.Request.Context(), false)
		if err != nil {
			h.fail(c, err)
			return
		}
		req.Series = snap.Blended
	}

	res, err := backtest.Run(req.Series, kind, req.Lookback)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type frontierRequest struct {
	Instruments []string `json:"instruments"`
	Draws       int      `json:"draws"`
	Seed        int64    `json:"seed"`
}

// Frontier samples random weightings over the given instruments, or over
// the held ones when none are given.
func (h *Handler) Frontier(c *gin.Context) {
	var req frontierRequest
	if err := bindOptional(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if req.Draws == 0 {
		req.Draws = h.defaults.Draws
	}
	if req.Draws > MaxDraws {
		h.fail(c, invalid(fmt.Sprintf("draws must not exceed %d", MaxDraws)))
		return
	}
	if len(req.Instruments) == 0 {
		req.Instruments = h.portfolios.Get().Instruments()
	}
	res, err := frontier.NewSampler(random.New(req.Seed)).Sample(req.Instruments, req.Draws)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Snapshot returns the latest pipeline pass. ?refresh=true forces a new one.
func (h *Handler) Snapshot(c *gin.Context) {
	snap, err := h.snapshot(c.Request.Context(), c.Query("refresh") == "true")
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// News returns simulated headlines for ?instruments=a,b or the held instruments.
func (h *Handler) News(c *gin.Context) {
	var ids []string
	if v := c.Query("instruments"); v != "" {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	} else {
		ids = h.portfolios.Get().Instruments()
	}
	seed, err := seedQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, news.Headlines(ids, random.New(seed)))
}

// Calendar returns the upcoming macro events.
func (h *Handler) Calendar(c *gin.Context) {
	c.JSON(http.StatusOK, news.Calendar(h.now()))
}

// Summary asks the text collaborator for commentary on the latest snapshot.
func (h *Handler) Summary(c *gin.Context) {
	ctx := c.Request.Context()
	snap, err := h.snapshot(ctx, false)
	if err != nil {
		h.fail(c, err)
		return
	}
	prompt, ok := summary.SnapshotPrompt(snap)
	if !ok {
		h.fail(c, invalid("portfolio has no weight allocated"))
		return
	}
	text, err := h.summarizer.Summarize(ctx, prompt)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": text})
}

func (h *Handler) snapshot(ctx context.Context, refresh bool) (*model.Snapshot, error) {
	if !refresh {
		if snap := h.snaps.Latest(); snap != nil {
			return snap, nil
		}
	}
	return h.snaps.Refresh(ctx)
}

// fail maps err onto a status code and writes the error body.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrInvalidParameter):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrAggregationMismatch):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, summary.ErrDisabled):
		status = http.StatusServiceUnavailable
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", model.ErrInvalidParameter, msg)
}

// bindOptional decodes a JSON body when one is present.
func bindOptional(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return invalid(err.Error())
	}
	return nil
}

// bounded checks 0 < n <= limit.
func bounded(key string, n, limit int) error {
	if n <= 0 || n > limit {
		return invalid(fmt.Sprintf("%s must be in [1, %d], got %d", key, limit, n))
	}
	return nil
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, invalid(key + " must be an integer")
	}
	return n, nil
}

func seedQuery(c *gin.Context) (int64, error) {
	v := c.Query("seed")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, invalid("seed must be an integer")
	}
	return n, nil
}
