package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User - back-office staff account
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`    // Never return this in JSON
	Role         string    `json:"role"` // 'admin' or 'staff'
	CreatedAt    time.Time `json:"created_at"`
}

// Customer - who we sell to
type Customer struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"size:100;index" json:"name"`
	Email         string         `gorm:"uniqueIndex;size:100" json:"email"`
	Phone         string         `gorm:"size:15" json:"phone"`
	CustomerType  string         `gorm:"size:50;default:individual" json:"customer_type"` // 'individual' or 'business'
	CompanyName   string         `gorm:"size:100" json:"company_name,omitempty"`
	LoyaltyPoints int            `gorm:"default:0" json:"loyalty_points"`
	DiscountRate  int            `gorm:"default:0" json:"discount_rate"` // percentage
	CreatedAt     time.Time      `json:"created_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// Category - product grouping
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;size:100" json:"name"`
	Description string         `json:"description,omitempty"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Product - the inventory
type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:150" json:"name"`
	Brand         string          `gorm:"size:100" json:"brand"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,2)" json:"purchase_price"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(12,2)" json:"selling_price"`
	Stock         int             `gorm:"default:0" json:"stock"`
	Barcode       string          `gorm:"uniqueIndex;size:64" json:"barcode"`
	CategoryID    uint            `gorm:"index" json:"category_id"`
	Unit          string          `gorm:"size:20" json:"unit"`
	ImageURL      string          `json:"image_url,omitempty"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// Sale - the transaction header. Immutable once committed, except for the
// deletion marker.
type Sale struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CustomerID  uint            `gorm:"index" json:"customer_id"`
	Timestamp   time.Time       `gorm:"index" json:"timestamp"` // server-assigned, UTC
	TotalAmount decimal.Decimal `gorm:"type:decimal(14,2)" json:"total_amount"`
	Items       []SaleItem      `gorm:"foreignKey:SaleID" json:"items"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// SaleItem - one product line within a sale. Name and PriceAtSale are
// snapshots frozen at checkout; later product edits never touch them.
type SaleItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	SaleID      uint            `gorm:"index" json:"sale_id"`
	ProductID   uint            `gorm:"index" json:"product_id"`
	Name        string          `gorm:"size:150" json:"name"`
	Quantity    int             `json:"quantity"`
	PriceAtSale decimal.Decimal `gorm:"type:decimal(12,2)" json:"price_at_sale"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}
