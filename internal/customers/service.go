package customers

import (
	"context"
	"errors"
	"strings"

	"retail-backoffice/internal/apperr"
	"retail-backoffice/internal/logger"
	"retail-backoffice/internal/models"

	"gorm.io/gorm"
)

// Service maintains the customer store.
type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewService(db *gorm.DB, baseLog *logger.Logger) *Service {
	return &Service{db: db, log: baseLog.With("service", "customers")}
}

// CreateRequest carries the fields a new customer needs.
type CreateRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone"`
	CustomerType string `json:"customer_type"`
	CompanyName  string `json:"company_name"`
	DiscountRate int    `json:"discount_rate"`
}

// Update enumerates the fields a caller may change. Nil means keep.
type Update struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	CompanyName *string `json:"company_name"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Customer, error) {
	if req.Name == "" {
		return nil, apperr.Validation("missing_name", "customer name is required")
	}
	if req.Email == "" {
		return nil, apperr.Validation("missing_email", "customer email is required")
	}
	if req.DiscountRate < 0 || req.DiscountRate > 100 {
		return nil, apperr.Validation("invalid_discount", "discount rate must be 0-100, got %d", req.DiscountRate)
	}

	customerType := req.CustomerType
	if customerType == "" {
		customerType = "individual"
	}
	if customerType != "individual" && customerType != "business" {
		return nil, apperr.Validation("invalid_customer_type", "customer type must be individual or business, got %q", customerType)
	}

	customer := models.Customer{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		CustomerType: customerType,
		CompanyName:  req.CompanyName,
		DiscountRate: req.DiscountRate,
	}
	if err := s.db.WithContext(ctx).Create(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("duplicate_email", "a customer with email %s already exists", req.Email)
		}
		return nil, err
	}

	s.log.Info("customer created", "customer_id", customer.ID)
	return &customer, nil
}

func (s *Service) GetByID(ctx context.Context, customerID uint) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("customer_not_found", "customer %d not found", customerID)
		}
		return nil, err
	}
	return &customer, nil
}

// SearchByName matches case-insensitively on a name substring.
func (s *Service) SearchByName(ctx context.Context, partial string) ([]models.Customer, error) {
	var customers []models.Customer
	pattern := "%" + strings.ToLower(partial) + "%"
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", pattern).
		Order("name ASC").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *Service) List(ctx context.Context, page, perPage int) ([]models.Customer, error) {
	if page < 1 || perPage < 1 {
		return nil, apperr.Validation("invalid_page", "page and per_page must be >= 1, got %d/%d", page, perPage)
	}
	var customers []models.Customer
	err := s.db.WithContext(ctx).
		Order("name ASC, id ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

// ApplyUpdate changes only the fields the request names.
func (s *Service) ApplyUpdate(ctx context.Context, customerID uint, upd Update) (*models.Customer, error) {
	customer, err := s.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if upd.Name != nil {
		if *upd.Name == "" {
			return nil, apperr.Validation("missing_name", "customer name must not be empty")
		}
		changes["name"] = *upd.Name
	}
	if upd.Email != nil {
		if *upd.Email == "" {
			return nil, apperr.Validation("missing_email", "customer email must not be empty")
		}
		changes["email"] = *upd.Email
	}
	if upd.Phone != nil {
		changes["phone"] = *upd.Phone
	}
	if upd.CompanyName != nil {
		changes["company_name"] = *upd.CompanyName
	}
	if len(changes) == 0 {
		return customer, nil
	}

	if err := s.db.WithContext(ctx).Model(customer).Updates(changes).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("duplicate_email", "a customer with that email already exists")
		}
		return nil, err
	}
	return customer, nil
}

func (s *Service) Delete(ctx context.Context, customerID uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Customer{}, customerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("customer_not_found", "customer %d not found", customerID)
	}
	s.log.Info("customer deleted", "customer_id", customerID)
	return nil
}

// AddLoyaltyPoints credits points after a committed sale.
func (s *Service) AddLoyaltyPoints(ctx context.Context, customerID uint, points int) (*models.Customer, error) {
	if points <= 0 {
		return nil, apperr.Validation("invalid_points", "points must be positive, got %d", points)
	}

	customer, err := s.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(customer).
		Update("loyalty_points", gorm.Expr("loyalty_points + ?", points)).Error
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, customerID)
}

// SetDiscountRate replaces the customer's percentage discount.
func (s *Service) SetDiscountRate(ctx context.Context, customerID uint, rate int) (*models.Customer, error) {
	if rate < 0 || rate > 100 {
		return nil, apperr.Validation("invalid_discount", "discount rate must be 0-100, got %d", rate)
	}

	customer, err := s.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(customer).Update("discount_rate", rate).Error; err != nil {
		return nil, err
	}
	return customer, nil
}
