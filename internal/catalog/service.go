package catalog

import (
	"context"
	"errors"
	"strings"

	"retail-backoffice/internal/apperr"
	"retail-backoffice/internal/logger"
	"retail-backoffice/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service maintains products and categories. Prices it hands out are the
// authoritative values checkout snapshots into sale items.
type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewService(db *gorm.DB, baseLog *logger.Logger) *Service {
	return &Service{db: db, log: baseLog.With("service", "catalog")}
}

// CreateProductRequest carries the fields a new product needs.
type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	Brand         string          `json:"brand"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	Stock         int             `json:"stock"`
	Barcode       string          `json:"barcode" binding:"required"`
	CategoryID    uint            `json:"category_id" binding:"required"`
	Unit          string          `json:"unit"`
	ImageURL      string          `json:"image_url"`
}

// ProductUpdate enumerates the fields a caller may change. Nil means keep.
// Stock is deliberately absent: it only moves through checkout and Restock.
type ProductUpdate struct {
	Name          *string          `json:"name"`
	Brand         *string          `json:"brand"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	Barcode       *string          `json:"barcode"`
	CategoryID    *uint            `json:"category_id"`
	Unit          *string          `json:"unit"`
	ImageURL      *string          `json:"image_url"`
}

func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error) {
	if req.Name == "" {
		return nil, apperr.Validation("missing_name", "product name is required")
	}
	if req.SellingPrice.IsNegative() || req.PurchasePrice.IsNegative() {
		return nil, apperr.Validation("negative_price", "prices must not be negative")
	}
	if req.Stock < 0 {
		return nil, apperr.Validation("negative_stock", "stock must not be negative, got %d", req.Stock)
	}
	if _, err := s.GetCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product := models.Product{
		Name:          req.Name,
		Brand:         req.Brand,
		PurchasePrice: req.PurchasePrice,
		SellingPrice:  req.SellingPrice,
		Stock:         req.Stock,
		Barcode:       req.Barcode,
		CategoryID:    req.CategoryID,
		Unit:          req.Unit,
		ImageURL:      req.ImageURL,
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("duplicate_barcode", "a product with barcode %s already exists", req.Barcode)
		}
		return nil, err
	}

	s.log.Info("product created", "product_id", product.ID, "barcode", product.Barcode)
	return &product, nil
}

func (s *Service) GetProductByID(ctx context.Context, productID uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product_not_found", "product %d not found", productID)
		}
		return nil, err
	}
	return &product, nil
}

func (s *Service) GetProductByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Where("barcode = ?", barcode).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product_not_found", "no product with barcode %s", barcode)
		}
		return nil, err
	}
	return &product, nil
}

// SearchProductsByName matches case-insensitively on a name substring.
func (s *Service) SearchProductsByName(ctx context.Context, partial string) ([]models.Product, error) {
	var products []models.Product
	pattern := "%" + strings.ToLower(partial) + "%"
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", pattern).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Service) ListProductsByCategory(ctx context.Context, categoryID uint) ([]models.Product, error) {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Service) ListProductsInStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("stock > 0").
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateProduct changes only the fields the request names.
func (s *Service) UpdateProduct(ctx context.Context, productID uint, upd ProductUpdate) (*models.Product, error) {
	product, err := s.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if upd.Name != nil {
		if *upd.Name == "" {
			return nil, apperr.Validation("missing_name", "product name must not be empty")
		}
		changes["name"] = *upd.Name
	}
	if upd.Brand != nil {
		changes["brand"] = *upd.Brand
	}
	if upd.PurchasePrice != nil {
		if upd.PurchasePrice.IsNegative() {
			return nil, apperr.Validation("negative_price", "purchase price must not be negative")
		}
		changes["purchase_price"] = *upd.PurchasePrice
	}
	if upd.SellingPrice != nil {
		if upd.SellingPrice.IsNegative() {
			return nil, apperr.Validation("negative_price", "selling price must not be negative")
		}
		changes["selling_price"] = *upd.SellingPrice
	}
	if upd.Barcode != nil {
		changes["barcode"] = *upd.Barcode
	}
	if upd.CategoryID != nil {
		if _, err := s.GetCategory(ctx, *upd.CategoryID); err != nil {
			return nil, err
		}
		changes["category_id"] = *upd.CategoryID
	}
	if upd.Unit != nil {
		changes["unit"] = *upd.Unit
	}
	if upd.ImageURL != nil {
		changes["image_url"] = *upd.ImageURL
	}
	if len(changes) == 0 {
		return product, nil
	}

	if err := s.db.WithContext(ctx).Model(product).Updates(changes).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("duplicate_barcode", "a product with that barcode already exists")
		}
		return nil, err
	}
	return product, nil
}

// Restock adds delivered units to a product's stock.
func (s *Service) Restock(ctx context.Context, productID uint, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("invalid_quantity", "restock quantity must be positive, got %d", quantity)
	}
	if _, err := s.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", quantity)).Error
	if err != nil {
		return nil, err
	}

	s.log.Info("product restocked", "product_id", productID, "quantity", quantity)
	return s.GetProductByID(ctx, productID)
}

func (s *Service) DeleteProduct(ctx context.Context, productID uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, productID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product_not_found", "product %d not found", productID)
	}
	s.log.Info("product deleted", "product_id", productID)
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	if name == "" {
		return nil, apperr.Validation("missing_name", "category name is required")
	}
	category := models.Category{Name: name, Description: description}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("duplicate_category", "category %s already exists", name)
		}
		return nil, err
	}
	return &category, nil
}

func (s *Service) GetCategory(ctx context.Context, categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("category_not_found", "category %d not found", categoryID)
		}
		return nil, err
	}
	return &category, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Service) UpdateCategory(ctx context.Context, categoryID uint, name, description *string) (*models.Category, error) {
	category, err := s.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if name != nil {
		if *name == "" {
			return nil, apperr.Validation("missing_name", "category name must not be empty")
		}
		changes["name"] = *name
	}
	if description != nil {
		changes["description"] = *description
	}
	if len(changes) == 0 {
		return category, nil
	}

	if err := s.db.WithContext(ctx).Model(category).Updates(changes).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("duplicate_category", "a category with that name already exists")
		}
		return nil, err
	}
	return category, nil
}
