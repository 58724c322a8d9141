package catalog

import (
	"strings"
	"time"

	"github.com/catalogdash/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product represents a catalog entry stored as a remote document.
// ID is assigned by the remote document store on creation. ImageURL is
// derived from ImageID at read time and is never authoritative: the pair
// must stay consistent, and replacing an image removes the old remote file
// so no orphaned storage object is left behind.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock"`
	Description string          `json:"description,omitempty"`
	ImageID     string          `json:"image_id,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ProductFields is the writable field set for create and update operations.
// The document identifier and image reference are managed separately.
type ProductFields struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	Stock       int64
	Description string
}

const (
	maxNameLength        = 200
	maxCategoryLength    = 100
	maxDescriptionLength = 2000
)

// Validate checks the invariants for a product's writable fields.
func (f ProductFields) Validate() error {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name is required")
	}
	if len(name) > maxNameLength {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	category := strings.TrimSpace(f.Category)
	if category == "" {
		return shared.NewDomainError("INVALID_CATEGORY", "Product category is required")
	}
	if len(category) > maxCategoryLength {
		return shared.NewDomainError("INVALID_CATEGORY", "Product category cannot exceed 100 characters")
	}
	if !f.Price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Product price must be positive")
	}
	if f.Stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Product stock cannot be negative")
	}
	if len(f.Description) > maxDescriptionLength {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Product description cannot exceed 2000 characters")
	}
	return nil
}

// Apply copies the writable fields onto the product.
func (p *Product) Apply(f ProductFields) {
	p.Name = strings.TrimSpace(f.Name)
	p.Category = strings.TrimSpace(f.Category)
	p.Price = f.Price
	p.Stock = f.Stock
	p.Description = f.Description
}
