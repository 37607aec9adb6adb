package handlers

import (
	"net/http"
	"strconv"

	"retail-backoffice/internal/catalog"
	"retail-backoffice/internal/models"
	"retail-backoffice/internal/sales"

	"github.com/gin-gonic/gin"
)

// SaleHandler exposes the sale transaction engine over HTTP.
type SaleHandler struct {
	sales   *sales.Engine
	catalog *catalog.Service
}

func NewSaleHandler(engine *sales.Engine, cat *catalog.Service) *SaleHandler {
	return &SaleHandler{sales: engine, catalog: cat}
}

// CheckoutRequest is what the till sends us: who bought, and what.
type CheckoutRequest struct {
	CustomerID uint `json:"customer_id" binding:"required"`
	Items      []struct {
		ProductID uint `json:"product_id" binding:"required"`
		Quantity  int  `json:"quantity" binding:"required"`
	} `json:"items" binding:"required,min=1,dive"`
}

// Checkout resolves each line against the catalog - the authoritative read
// that freezes name and unit price - and hands the batch to the engine.
// POST /api/checkout
func (h *SaleHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "bad_request"})
		return
	}

	items := make([]sales.LineItem, 0, len(req.Items))
	for _, line := range req.Items {
		product, err := h.catalog.GetProductByID(c.Request.Context(), line.ProductID)
		if err != nil {
			respondErr(c, err)
			return
		}
		items = append(items, sales.LineItem{
			ProductID:   product.ID,
			Name:        product.Name,
			Quantity:    line.Quantity,
			PriceAtSale: product.SellingPrice,
		})
	}

	sale, err := h.sales.CreateSale(c.Request.Context(), req.CustomerID, items)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// GetSale returns one sale with its items.
// GET /api/sales/:id?include_deleted=true
func (h *SaleHandler) GetSale(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	includeDeleted := c.Query("include_deleted") == "true"

	sale, err := h.sales.GetSaleByID(c.Request.Context(), id, includeDeleted)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// ListSales returns one page of sales, newest first.
// GET /api/sales?page=1&per_page=20
func (h *SaleHandler) ListSales(c *gin.Context) {
	page, perPage := pageParams(c)
	result, err := h.sales.ListSales(c.Request.Context(), page, perPage)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "per_page": perPage, "sales": result})
}

// ListSalesByCustomer returns one page of a customer's sales, newest first.
// GET /api/customers/:id/sales
func (h *SaleHandler) ListSalesByCustomer(c *gin.Context) {
	customerID, ok := idParam(c, "id")
	if !ok {
		return
	}
	page, perPage := pageParams(c)
	result, err := h.sales.ListSalesByCustomer(c.Request.Context(), customerID, page, perPage)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "per_page": perPage, "sales": result})
}

// RecentSales returns the most recent sales, newest first.
// GET /api/sales/recent?limit=10
func (h *SaleHandler) RecentSales(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer", "code": "invalid_limit"})
		return
	}

	result := make([]models.Sale, 0, limit)
	for sale, iterErr := range h.sales.RecentSales(c.Request.Context(), limit) {
		if iterErr != nil {
			respondErr(c, iterErr)
			return
		}
		result = append(result, sale)
	}
	c.JSON(http.StatusOK, result)
}

// DeleteSale voids a sale and its items as one unit.
// DELETE /api/sales/:id
func (h *SaleHandler) DeleteSale(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.sales.DeleteSale(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sale deleted", "sale_id": id})
}
