package usecase

import (
	"context"
	"fmt"
	"time"

	"dangerous-goods-backend/internal/domain"
	"dangerous-goods-backend/pkg/logger"
	"dangerous-goods-backend/pkg/utils"
)

// EvaluationInvalidator drops memoized cart evaluations.
type EvaluationInvalidator interface {
	InvalidateAll()
}

// ProductDangerousGoodsView is the dangerous goods state the storefront shows
// on a product page and in product API responses.
type ProductDangerousGoodsView struct {
	ProductID      string  `json:"id"`
	Type           string  `json:"type"`
	DangerousGoods bool    `json:"dangerous_goods"`
	Classification string  `json:"dangerous_goods_classification,omitempty"`
	UNNumber       string  `json:"dangerous_goods_un_number,omitempty"`
	Badge          string  `json:"badge,omitempty"`
	Notice         *Notice `json:"notice,omitempty"`
}

type CatalogUsecase struct {
	repo       domain.ProductRepository
	classifier *ClassificationUsecase
	evaluator  EvaluationInvalidator
	settings   SettingsProvider
	notices    *NoticeBuilder
}

func NewCatalogUsecase(
	repo domain.ProductRepository,
	classifier *ClassificationUsecase,
	evaluator EvaluationInvalidator,
	settings SettingsProvider,
	notices *NoticeBuilder,
) *CatalogUsecase {
	return &CatalogUsecase{
		repo:       repo,
		classifier: classifier,
		evaluator:  evaluator,
		settings:   settings,
		notices:    notices,
	}
}

// UpsertProduct stores a product record synced from the storefront.
func (u *CatalogUsecase) UpsertProduct(ctx context.Context, product *domain.Product) error {
	product.Name = utils.SanitizeText(product.Name)
	if err := product.Validate(); err != nil {
		return err
	}
	product.UpdatedAt = time.Now()

	if err := u.repo.UpsertProduct(ctx, product); err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	// The flag or the variation set may have changed.
	u.evaluator.InvalidateAll()
	return nil
}

// SetDangerousGoods writes the dangerous goods meta of a simple product or a
// variation. Variable products derive their status and cannot be flagged.
func (u *CatalogUsecase) SetDangerousGoods(ctx context.Context, productID string, dangerous bool, classification, unNumber string) error {
	product, err := u.repo.GetProductByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("product %s: %w", productID, err)
	}
	if product.IsType(domain.ProductTypeVariable) {
		return fmt.Errorf("%w: flag the variations of variable product %s instead", domain.ErrInvalidProduct, productID)
	}

	flag := domain.DangerousGoodsNo
	if dangerous {
		flag = domain.DangerousGoodsYes
	}
	classification = utils.SanitizeText(classification)
	unNumber = utils.SanitizeText(unNumber)

	if err := u.repo.SetDangerousGoods(ctx, productID, flag, classification, unNumber); err != nil {
		return fmt.Errorf("set dangerous goods: %w", err)
	}
	u.evaluator.InvalidateAll()

	logger.WithContext(ctx).Info().
		Str("product_id", productID).
		Str("dangerous_goods", flag).
		Msg("dangerous goods flag updated")
	return nil
}

func (u *CatalogUsecase) GetProductDangerousGoods(ctx context.Context, productID string) (*ProductDangerousGoodsView, error) {
	product, err := u.repo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", productID, err)
	}

	view := &ProductDangerousGoodsView{
		ProductID:      product.ID,
		Type:           product.Type,
		DangerousGoods: u.classifier.IsDangerousProduct(ctx, product),
		Classification: product.Classification,
		UNNumber:       product.UNNumber,
	}
	if view.DangerousGoods {
		notice := u.notices.Product(u.settings.Get(ctx))
		view.Badge = ShopLoopBadge
		view.Notice = &notice
	}
	return view, nil
}

// ListDangerousProducts returns the ids of every published simple product and
// variation flagged as dangerous.
func (u *CatalogUsecase) ListDangerousProducts(ctx context.Context) ([]string, error) {
	ids, err := u.repo.ListDangerousProductIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list dangerous products: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
