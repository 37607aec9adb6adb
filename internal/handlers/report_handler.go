package handlers

import (
	"net/http"
	"strconv"

	"retail-backoffice/internal/reports"

	"github.com/gin-gonic/gin"
)

// ReportHandler exposes the reporting aggregation engine. All endpoints
// accept optional ?start= and ?end= bounds (YYYY-MM-DD or RFC 3339, UTC).
type ReportHandler struct {
	reports *reports.Engine
}

func NewReportHandler(engine *reports.Engine) *ReportHandler {
	return &ReportHandler{reports: engine}
}

func reportRange(c *gin.Context) (start, end string) {
	return c.Query("start"), c.Query("end")
}

func limitQuery(c *gin.Context, fallback int) (int, bool) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(fallback)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer", "code": "invalid_limit"})
		return 0, false
	}
	return limit, true
}

// GET /api/reports/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	start, end := reportRange(c)
	summary, err := h.reports.Summary(c.Request.Context(), start, end)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GET /api/reports/customers/totals
func (h *ReportHandler) TotalSalesPerCustomer(c *gin.Context) {
	start, end := reportRange(c)
	rows, err := h.reports.TotalSalesPerCustomer(c.Request.Context(), start, end)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GET /api/reports/customers/top?limit=5
func (h *ReportHandler) TopCustomersBySales(c *gin.Context) {
	limit, ok := limitQuery(c, 5)
	if !ok {
		return
	}
	start, end := reportRange(c)
	rows, err := h.reports.TopCustomersBySales(c.Request.Context(), limit, start, end)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GET /api/reports/customers/frequency
func (h *ReportHandler) CustomerPurchaseFrequency(c *gin.Context) {
	start, end := reportRange(c)
	rows, err := h.reports.CustomerPurchaseFrequency(c.Request.Context(), start, end)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GET /api/reports/daily
func (h *ReportHandler) SalesSummaryByDay(c *gin.Context) {
	start, end := reportRange(c)
	rows, err := h.reports.SalesSummaryByDay(c.Request.Context(), start, end)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GET /api/reports/customers/summary
func (h *ReportHandler) SalesSummaryByCustomer(c *gin.Context) {
	start, end := reportRange(c)
	rows, err := h.reports.SalesSummaryByCustomer(c.Request.Context(), start, end)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GET /api/reports/products/top?limit=5
func (h *ReportHandler) TopProductsByQuantity(c *gin.Context) {
	limit, ok := limitQuery(c, 5)
	if !ok {
		return
	}
	start, end := reportRange(c)
	rows, err := h.reports.TopProductsByQuantity(c.Request.Context(), limit, start, end)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
