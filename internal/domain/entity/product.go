package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint/internal/domain/cart"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog item with its on-hand stock
type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Code      string          `gorm:"size:100;uniqueIndex;not null" json:"code"` // Barcode or PLU
	Name      string          `gorm:"size:255;not null;index" json:"name"`
	Category  string          `gorm:"size:100;not null;default:'Uncategorized'" json:"category"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	Taxable   bool            `gorm:"not null;default:true" json:"taxable"`
	Stock     int             `gorm:"not null;default:0" json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// CartItem converts the product into the shape the cart consumes
func (p *Product) CartItem() cart.Item {
	return cart.Item{
		ID:       p.ID.String(),
		Code:     p.Code,
		Name:     p.Name,
		Price:    p.Price,
		Category: p.Category,
		Taxable:  p.Taxable,
		Stock:    p.Stock,
	}
}

// InventoryVersion is a single-row stamp bumped on every stock write
type InventoryVersion struct {
	ID        int       `gorm:"primaryKey;autoIncrement:false" json:"-"`
	Version   int64     `gorm:"not null;default:0" json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the InventoryVersion model
func (InventoryVersion) TableName() string {
	return "inventory_versions"
}
