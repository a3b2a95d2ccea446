// Package api exposes the desk over HTTP.
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"StockSignals/internal/desk"
	"StockSignals/internal/metrics"
	"StockSignals/internal/model"
	"StockSignals/internal/portfolio"
	"StockSignals/internal/registry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

type Handler struct {
	desk       *desk.Desk
	health     *metrics.Health
	loc        *time.Location
	staleAfter time.Duration
}

// NewHandler creates a Handler. Times are rendered in loc; a nil loc means UTC.
func NewHandler(d *desk.Desk, health *metrics.Health, loc *time.Location, staleAfter time.Duration) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	if health == nil {
		health = metrics.NewHealth()
	}
	return &Handler{desk: d, health: health, loc: loc, staleAfter: staleAfter}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	s := r.Group("/signals")
	{
		s.GET("", h.ListSignals)
		s.DELETE("", h.ClearSignals)
		s.GET("/buy", h.BuyCandidates)
		s.GET("/sell", h.SellCandidates)
	}
	p := r.Group("/portfolio")
	{
		p.GET("", h.Portfolio)
		p.POST("/buy", h.Buy)
		p.POST("/sell", h.Sell)
		p.DELETE("/:symbol", h.Remove)
	}
}

// NewRouter builds the engine with the API, /metrics from g and /healthz.
func NewRouter(h *Handler, g prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(), gin.Recovery())

	router.GET("/healthz", h.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

type signalView struct {
	model.Signal
	LocalTime string `json:"local_time"`
}

func (h *Handler) views(signals []model.Signal) []signalView {
	out := make([]signalView, len(signals))
	for i, s := range signals {
		out[i] = signalView{Signal: s, LocalTime: s.Time.In(h.loc).Format("2006-01-02 15:04:05")}
	}
	return out
}

// parseStrength reads ?strength=strong,medium,low. Absent means all.
func parseStrength(raw string) (registry.Filter, error) {
	if raw == "" {
		return registry.AllStrengths, nil
	}
	var f registry.Filter
	for _, part := range strings.Split(raw, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "strong":
			f.Strong = true
		case "medium":
			f.Medium = true
		case "low":
			f.Low = true
		default:
			return f, fmt.Errorf("unknown strength %q", part)
		}
	}
	return f, nil
}

func (h *Handler) ListSignals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"signals": h.views(h.desk.Signals())})
}

func (h *Handler) ClearSignals(c *gin.Context) {
	h.desk.ClearSignals()
	c.Status(http.StatusNoContent)
}

func (h *Handler) BuyCandidates(c *gin.Context) {
	f, err := parseStrength(c.Query("strength"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signals": h.views(h.desk.BuyCandidates(f))})
}

func (h *Handler) SellCandidates(c *gin.Context) {
	f, err := parseStrength(c.Query("strength"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signals": h.views(h.desk.SellCandidates(f))})
}

type PortfolioResp struct {
	Holdings   []portfolio.Entry `json:"holdings"`
	Realized   decimal.Decimal   `json:"realized_profit"`
	Unrealized decimal.Decimal   `json:"unrealized_profit"`
}

func (h *Handler) Portfolio(c *gin.Context) {
	c.JSON(http.StatusOK, PortfolioResp{
		Holdings:   h.desk.Portfolio(),
		Realized:   h.desk.RealizedProfit(),
		Unrealized: h.desk.UnrealizedProfit(),
	})
}

type BuyReq struct {
	Symbol string  `json:"symbol" binding:"required"`
	Price  float64 `json:"price" binding:"required,gt=0"`
}

func (h *Handler) Buy(c *gin.Context) {
	var req BuyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.desk.Buy(req.Symbol, req.Price); err != nil {
		ledgerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"symbol": req.Symbol, "price": req.Price})
}

type SellReq struct {
	Symbol string `json:"symbol" binding:"required"`
}

func (h *Handler) Sell(c *gin.Context) {
	var req SellReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profit, err := h.desk.Sell(req.Symbol)
	if err != nil {
		ledgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol":          req.Symbol,
		"profit":          profit,
		"realized_profit": h.desk.RealizedProfit(),
	})
}

func (h *Handler) Remove(c *gin.Context) {
	if err := h.desk.Remove(c.Param("symbol")); err != nil {
		ledgerError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Healthz(c *gin.Context) {
	rep := h.health.Report(time.Now(), h.staleAfter)
	code := http.StatusOK
	if rep.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, rep)
}

func ledgerError(c *gin.Context, err error) {
	if errors.Is(err, portfolio.ErrInvalidOperation) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
