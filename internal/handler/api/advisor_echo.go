package api

import (
	"encoding/json"
	"errors"
	"time"

	models "StockSage/internal/domain/models"
	icache "StockSage/internal/service/cache"
	"StockSage/internal/service/ratelimit"
	"StockSage/internal/usecase"
	xhttp "StockSage/pkg/http"
	xlogger "StockSage/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AdvisorEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type AdvisorEchoHandler struct {
	logger  *xlogger.Logger
	advisor *usecase.Advisor
	cache   icache.BytesCache
	rl      *ratelimit.Limiter
}

func NewAdvisorEchoHandler(logger *xlogger.Logger, advisor *usecase.Advisor) *AdvisorEchoHandler {
	return &AdvisorEchoHandler{logger: logger, advisor: advisor, rl: ratelimit.New()}
}

// SetCache injects a bytes cache for the read-heavy endpoints.
func (h *AdvisorEchoHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *AdvisorEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/recommend", h.Recommend)
	g.GET("/watchlist", h.Watchlist)
	g.GET("/watchlist/:id", h.Entry)
	g.POST("/watchlist/:id/refresh", h.Refresh)
	g.DELETE("/watchlist/:id", h.Remove)
	g.POST("/learn", h.Learn)
	g.GET("/weights", h.Weights)
	g.GET("/adjustments", h.Adjustments)
	g.GET("/performance", h.Performance)
	g.GET("/insights", h.Insights)
}

type recommendResponse struct {
	Recommendation *models.Recommendation `json:"recommendation"`
	Entry          *models.WatchEntry     `json:"entry,omitempty"`
}

func (h *AdvisorEchoHandler) Recommend(c echo.Context) error {
	req := &models.RecommendRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":recommend", 10, 5) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("rate_limited", "", "too many requests", 429))
	}

	rec, entry, err := h.advisor.Recommend(c.Request().Context(), *req)
	if err != nil && !errors.Is(err, models.ErrInsufficientSignals) {
		h.logger.Error("recommend usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, recommendResponse{Recommendation: rec, Entry: entry})
}

func (h *AdvisorEchoHandler) Watchlist(c echo.Context) error {
	entries := h.advisor.Watchlist()
	if limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 0); limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return xhttp.SuccessResponse(c, entries)
}

func (h *AdvisorEchoHandler) Entry(c echo.Context) error {
	entry, err := h.advisor.Entry(c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrEntryNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("watchlist entry not found"))
		}
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, entry)
}

func (h *AdvisorEchoHandler) Refresh(c echo.Context) error {
	req := &models.RefreshRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	entry, err := h.advisor.Refresh(c.Request().Context(), req.ID, req.LatestPrice)
	if err != nil {
		if errors.Is(err, models.ErrEntryNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("watchlist entry not found"))
		}
		h.logger.Error("refresh usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, entry)
}

func (h *AdvisorEchoHandler) Remove(c echo.Context) error {
	if err := h.advisor.Remove(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, models.ErrEntryNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("watchlist entry not found"))
		}
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.NoContentResponse(c)
}

type learnResponse struct {
	Adjustments []models.LearningAdjustment `json:"adjustments"`
	Weights     *models.WeightVector        `json:"weights"`
}

func (h *AdvisorEchoHandler) Learn(c echo.Context) error {
	req := &models.LearnRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":learn", 2, 1) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("rate_limited", "", "too many requests", 429))
	}

	adjs, err := h.advisor.Learn(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("learn usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, learnResponse{Adjustments: adjs, Weights: h.advisor.Weights()})
}

func (h *AdvisorEchoHandler) Weights(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.advisor.Weights())
}

func (h *AdvisorEchoHandler) Adjustments(c echo.Context) error {
	req := &models.AdjustmentsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	adjs, err := h.advisor.Adjustments(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("adjustments usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if since := xhttp.ParseTimeDefault(c.QueryParam("since"), time.Time{}); !since.IsZero() {
		filtered := adjs[:0:0]
		for _, a := range adjs {
			if !a.AppliedAt.Before(since) {
				filtered = append(filtered, a)
			}
		}
		adjs = filtered
	}
	return xhttp.SuccessResponse(c, adjs)
}

func (h *AdvisorEchoHandler) Performance(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.advisor.Summary())
}

func (h *AdvisorEchoHandler) Insights(c echo.Context) error {
	const cacheKey = "insights"
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
			h.logger.Warn("insights cache_get_error", xlogger.Error(err))
		} else if ok {
			return c.JSONBlob(200, b)
		}
	}
	res := h.advisor.Insights()
	if h.cache != nil {
		// cache the full envelope so hits and misses serve the same body
		body := xhttp.APIResponse{Status: 200, Message: "OK", Data: res}
		if b, err := json.Marshal(body); err == nil {
			if err := h.cache.SetBytes(cacheKey, b, 30*time.Second); err != nil {
				h.logger.Warn("insights cache_set_error", xlogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, res)
}
