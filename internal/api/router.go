package api

import "github.com/gin-gonic/gin"

// NewRouter wires the handler onto a gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", h.Health)
	r.GET("/instruments", h.Instruments)
	r.GET("/series/:instrument", h.Series)

	r.GET("/portfolio", h.GetPortfolio)
	r.PUT("/portfolio", h.PutPortfolio)
	r.PUT("/portfolio/:instrument", h.SetWeight)
	r.DELETE("/portfolio/:instrument", h.RemoveInstrument)
	r.POST("/portfolio/reset", h.ResetPortfolio)
	r.POST("/portfolio/blend", h.Blend)

	r.POST("/risk/montecarlo", h.MonteCarlo)
	r.POST("/backtest", h.Backtest)
	r.POST("/frontier", h.Frontier)

	r.GET("/snapshot", h.Snapshot)
	r.GET("/news", h.News)
	r.GET("/calendar", h.Calendar)
	r.POST("/summary", h.Summary)
	return r
}
