package domain

import (
	"context"
	"fmt"
	"time"
)

// Product is the slice of the storefront catalog the service needs: identity,
// kind, publication status and the dangerous goods meta.
type Product struct {
	ID       string  `json:"id"`
	ParentID *string `json:"parentId,omitempty"` // set on variations only
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Status   string  `json:"status"`

	// Stored "yes"/"no" on simple products and variations. Variable products
	// never store it; their status is derived from their variations.
	DangerousGoods string `json:"-"`
	Classification string `json:"dangerousGoodsClassification,omitempty"`
	UNNumber       string `json:"dangerousGoodsUnNumber,omitempty"`

	VariationIDs []string  `json:"variationIds,omitempty"` // variable products only
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (p *Product) IsType(t string) bool {
	return p.Type == t
}

// HasDangerousGoodsFlag reports the stored flag; meaningless on variable products.
func (p *Product) HasDangerousGoodsFlag() bool {
	return p.DangerousGoods == DangerousGoodsYes
}

func (p *Product) IsPublished() bool {
	return p.Status == ProductStatusPublish
}

// Validate checks the structural rules of a synced product record.
func (p *Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidProduct)
	}
	if !isOneOf(p.Type, ProductTypes) {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidProduct, p.Type)
	}
	if p.Status == "" {
		p.Status = ProductStatusPublish
	}
	if !isOneOf(p.Status, ProductStatuses) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidProduct, p.Status)
	}
	if p.IsType(ProductTypeVariation) && (p.ParentID == nil || *p.ParentID == "") {
		return fmt.Errorf("%w: variation %s has no parent", ErrInvalidProduct, p.ID)
	}
	if !p.IsType(ProductTypeVariation) && p.ParentID != nil {
		return fmt.Errorf("%w: only variations have a parent", ErrInvalidProduct)
	}
	switch p.DangerousGoods {
	case "":
		if !p.IsType(ProductTypeVariable) {
			p.DangerousGoods = DangerousGoodsNo
		}
	case DangerousGoodsYes, DangerousGoodsNo:
		if p.IsType(ProductTypeVariable) {
			return fmt.Errorf("%w: variable products derive dangerous goods from their variations", ErrInvalidProduct)
		}
	default:
		return fmt.Errorf("%w: dangerous goods flag must be %q or %q", ErrInvalidProduct, DangerousGoodsYes, DangerousGoodsNo)
	}
	return nil
}

// --- Interfaces ---

type ProductRepository interface {
	GetProductByID(ctx context.Context, id string) (*Product, error)
	// GetAvailableVariations returns the published variations of a variable product.
	GetAvailableVariations(ctx context.Context, parentID string) ([]Product, error)
	UpsertProduct(ctx context.Context, product *Product) error
	SetDangerousGoods(ctx context.Context, id, flag, classification, unNumber string) error
	// ListDangerousProductIDs returns published simple products and variations flagged "yes".
	ListDangerousProductIDs(ctx context.Context) ([]string, error)
}
