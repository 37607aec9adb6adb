package handlers

import (
	"net/http"
	"strconv"

	"retail-backoffice/internal/catalog"

	"github.com/gin-gonic/gin"
)

// ProductHandler exposes catalog maintenance.
type ProductHandler struct {
	catalog *catalog.Service
}

func NewProductHandler(svc *catalog.Service) *ProductHandler {
	return &ProductHandler{catalog: svc}
}

// GET /api/products?name=choc&category_id=3&in_stock=true
func (h *ProductHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if partial := c.Query("name"); partial != "" {
		result, err := h.catalog.SearchProductsByName(ctx, partial)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}
	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || categoryID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id", "code": "invalid_id"})
			return
		}
		result, err := h.catalog.ListProductsByCategory(ctx, uint(categoryID))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}
	if c.Query("in_stock") == "true" {
		result, err := h.catalog.ListProductsInStock(ctx)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	result, err := h.catalog.ListProducts(ctx)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	product, err := h.catalog.GetProductByID(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// GET /api/products/scan/:barcode - the till's barcode scanner path
func (h *ProductHandler) Scan(c *gin.Context) {
	barcode := c.Param("barcode")
	product, err := h.catalog.GetProductByBarcode(c.Request.Context(), barcode)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// POST /api/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalog.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "bad_request"})
		return
	}
	product, err := h.catalog.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// PUT /api/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var upd catalog.ProductUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "bad_request"})
		return
	}
	product, err := h.catalog.UpdateProduct(c.Request.Context(), id, upd)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// POST /api/products/:id/restock
func (h *ProductHandler) Restock(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "bad_request"})
		return
	}
	product, err := h.catalog.Restock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted", "product_id": id})
}

// POST /api/categories
func (h *ProductHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "bad_request"})
		return
	}
	category, err := h.catalog.CreateCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// GET /api/categories
func (h *ProductHandler) ListCategories(c *gin.Context) {
	result, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// PUT /api/categories/:id
func (h *ProductHandler) UpdateCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "bad_request"})
		return
	}
	category, err := h.catalog.UpdateCategory(c.Request.Context(), id, req.Name, req.Description)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}
