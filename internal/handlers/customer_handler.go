package handlers

import (
	"net/http"

	"retail-backoffice/internal/customers"

	"github.com/gin-gonic/gin"
)

// CustomerHandler exposes customer maintenance.
type CustomerHandler struct {
	customers *customers.Service
}

func NewCustomerHandler(svc *customers.Service) *CustomerHandler {
	return &CustomerHandler{customers: svc}
}

// POST /api/customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req customers.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "bad_request"})
		return
	}
	customer, err := h.customers.Create(c.Request.Context(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// GET /api/customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	customer, err := h.customers.GetByID(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// GET /api/customers?name=ali&page=1&per_page=20
func (h *CustomerHandler) List(c *gin.Context) {
	if partial := c.Query("name"); partial != "" {
		result, err := h.customers.SearchByName(c.Request.Context(), partial)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	page, perPage := pageParams(c)
	result, err := h.customers.List(c.Request.Context(), page, perPage)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// PUT /api/customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var upd customers.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "bad_request"})
		return
	}
	customer, err := h.customers.ApplyUpdate(c.Request.Context(), id, upd)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// DELETE /api/customers/:id
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.customers.Delete(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted", "customer_id": id})
}

// POST /api/customers/:id/loyalty
func (h *CustomerHandler) AddLoyaltyPoints(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Points int `json:"points" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "bad_request"})
		return
	}
	customer, err := h.customers.AddLoyaltyPoints(c.Request.Context(), id, req.Points)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// PUT /api/customers/:id/discount
func (h *CustomerHandler) SetDiscountRate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		DiscountRate int `json:"discount_rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "bad_request"})
		return
	}
	customer, err := h.customers.SetDiscountRate(c.Request.Context(), id, req.DiscountRate)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}
