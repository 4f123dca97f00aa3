package handler

import (
	"errors"
	"net/http"
	"time"

	response "meetup-go-app/backend/internal/infra/common"
	kpisvc "meetup-go-app/backend/internal/service/kpi"

	"github.com/gin-gonic/gin"
)

// KpiHandler 负责运营日报的查询接口与开发环境的手动聚合入口。
type KpiHandler struct {
	aggregator *kpisvc.Service
	query      *kpisvc.QueryService
}

// NewKpiHandler 构造 KPI Handler。
func NewKpiHandler(aggregator *kpisvc.Service, query *kpisvc.QueryService) *KpiHandler {
	return &KpiHandler{aggregator: aggregator, query: query}
}

// Daily 返回单日 KPI，路径里的日期格式为 2006-01-02。
func (h *KpiHandler) Daily(c *gin.Context) {
	date, ok := h.parseDate(c, c.Param("date"))
	if !ok {
		return
	}

	view, err := h.query.Daily(c.Request.Context(), date)
	if err != nil {
		if errors.Is(err, kpisvc.ErrKpiNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound, err.Error(), nil)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "load daily kpi failed", nil)
		return
	}

	response.Success(c, http.StatusOK, view, nil)
}

// Summary 返回区间 KPI 列表与合计，区间两端含当日。
func (h *KpiHandler) Summary(c *gin.Context) {
	start, ok := h.parseDate(c, c.Query("start_date"))
	if !ok {
		return
	}
	end, ok := h.parseDate(c, c.Query("end_date"))
	if !ok {
		return
	}

	summary, err := h.query.Summary(c.Request.Context(), start, end)
	if err != nil {
		if errors.Is(err, kpisvc.ErrInvalidRange) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidDateRange, err.Error(), nil)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "load kpi summary failed", nil)
		return
	}

	response.Success(c, http.StatusOK, summary, nil)
}

// All 返回全部已聚合的日记录。
func (h *KpiHandler) All(c *gin.Context) {
	views, err := h.query.All(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "load kpi records failed", nil)
		return
	}
	response.Success(c, http.StatusOK, views, nil)
}

// Aggregate 手动触发某一日的聚合，仅在开发环境注册此路由。
func (h *KpiHandler) Aggregate(c *gin.Context) {
	date, ok := h.parseDate(c, c.Param("date"))
	if !ok {
		return
	}

	if err := h.aggregator.AggregateDaily(c.Request.Context(), date); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "aggregate kpi failed", nil)
		return
	}
	response.NoContent(c)
}

func (h *KpiHandler) parseDate(c *gin.Context, raw string) (time.Time, bool) {
	date, err := time.ParseInLocation("2006-01-02", raw, h.aggregator.Location())
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid date, expect YYYY-MM-DD", nil)
		return time.Time{}, false
	}
	return date, true
}
