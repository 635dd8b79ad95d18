package usecase

import (
	"context"
	"errors"

	"dangerous-goods-backend/internal/domain"
	"dangerous-goods-backend/pkg/logger"
)

// ClassificationUsecase decides whether a product counts as dangerous goods.
// Lookups fail open: anything unresolvable is treated as not dangerous so it
// never blocks a cart or checkout.
type ClassificationUsecase struct {
	productRepo domain.ProductRepository
}

func NewClassificationUsecase(productRepo domain.ProductRepository) *ClassificationUsecase {
	return &ClassificationUsecase{productRepo: productRepo}
}

// IsDangerousGood resolves productID and classifies it.
func (u *ClassificationUsecase) IsDangerousGood(ctx context.Context, productID string) bool {
	if productID == "" {
		return false
	}
	product, err := u.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.WithContext(ctx).Warn().Err(err).Str("product_id", productID).Msg("dangerous goods lookup failed, treating as not dangerous")
		}
		return false
	}
	return u.IsDangerousProduct(ctx, product)
}

// IsDangerousProduct classifies an already-resolved product.
func (u *ClassificationUsecase) IsDangerousProduct(ctx context.Context, product *domain.Product) bool {
	if product == nil {
		return false
	}

	switch product.Type {
	case domain.ProductTypeSimple, domain.ProductTypeVariation:
		return product.HasDangerousGoodsFlag()
	case domain.ProductTypeVariable:
		variations, err := u.productRepo.GetAvailableVariations(ctx, product.ID)
		if err != nil {
			logger.WithContext(ctx).Warn().Err(err).Str("product_id", product.ID).Msg("variation lookup failed, treating as not dangerous")
			return false
		}
		for _, v := range variations {
			if v.IsType(domain.ProductTypeVariation) && v.HasDangerousGoodsFlag() {
				return true
			}
		}
	}
	return false
}
