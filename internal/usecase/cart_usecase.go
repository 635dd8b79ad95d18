package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dangerous-goods-backend/internal/domain"
	"dangerous-goods-backend/pkg/logger"

	"github.com/google/uuid"
)

// CartEvaluator is the aggregator as used by the cart and order pipelines.
type CartEvaluator interface {
	ItemEvaluator
	EvaluationInvalidator
	Invalidate(cartID string)
}

type CartItemView struct {
	domain.LineItem
	DangerousGoods bool   `json:"dangerousGoods"`
	Warning        string `json:"warning,omitempty"`
}

type FeeView struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Tax    string `json:"tax"`
	Total  string `json:"total"`
}

// CartView is a cart after one fee-calculation pass.
type CartView struct {
	ID                  string         `json:"id"`
	UserID              string         `json:"userId"`
	Items               []CartItemView `json:"items"`
	Fees                []FeeView      `json:"fees"`
	FeeTotal            string         `json:"feeTotal"`
	HasDangerousGoods   bool           `json:"hasDangerousGoods"`
	DangerousGoodsItems []string       `json:"dangerousGoodsItems"`
	Notices             []Notice       `json:"notices"`

	cart *domain.Cart
}

// Cart returns the underlying cart with the fees of this pass applied.
func (v *CartView) Cart() *domain.Cart {
	return v.cart
}

type CartUsecase struct {
	cartRepo        domain.CartRepository
	productRepo     domain.ProductRepository
	evaluator       CartEvaluator
	settings        SettingsProvider
	notices         *NoticeBuilder
	feeProviders    []domain.CartFeeProvider
	maxCartQuantity int
}

func NewCartUsecase(
	cartRepo domain.CartRepository,
	productRepo domain.ProductRepository,
	evaluator CartEvaluator,
	settings SettingsProvider,
	notices *NoticeBuilder,
	feeProviders []domain.CartFeeProvider,
	maxCartQuantity int,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:        cartRepo,
		productRepo:     productRepo,
		evaluator:       evaluator,
		settings:        settings,
		notices:         notices,
		feeProviders:    feeProviders,
		maxCartQuantity: maxCartQuantity,
	}
}

// --- Cart Logic ---

func (u *CartUsecase) GetMyCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := u.cartRepo.GetCartByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	now := time.Now()
	cart = &domain.Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.cartRepo.CreateCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	logger.WithContext(ctx).Info().Str("cart_id", cart.ID).Str("user_id", userID).Msg("created cart")
	return cart, nil
}

// ViewMyCart loads the cart and runs a calculation pass over it.
func (u *CartUsecase) ViewMyCart(ctx context.Context, userID string) (*CartView, error) {
	cart, err := u.GetMyCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.CalculateTotals(ctx, cart), nil
}

func (u *CartUsecase) AddToCart(ctx context.Context, userID, productID string, variationID *string, quantity int) (*CartView, error) {
	if err := u.validateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := u.validatePurchasable(ctx, productID, variationID); err != nil {
		return nil, err
	}

	cart, err := u.GetMyCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	newTotal := quantity
	for _, item := range cart.Items {
		if item.SameProduct(productID, variationID) {
			newTotal += item.Quantity
			break
		}
	}
	if err := u.validateQuantity(newTotal); err != nil {
		return nil, err
	}

	if err := u.cartRepo.UpsertItem(ctx, cart.ID, domain.LineItem{
		ID:          uuid.NewString(),
		ProductID:   productID,
		VariationID: variationID,
		Quantity:    newTotal,
	}); err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	u.evaluator.Invalidate(cart.ID)

	return u.ViewMyCart(ctx, userID)
}

// UpdateCartItemQuantity sets a line's quantity; zero or less removes it.
func (u *CartUsecase) UpdateCartItemQuantity(ctx context.Context, userID, productID string, variationID *string, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return u.RemoveFromCart(ctx, userID, productID, variationID)
	}
	if err := u.validateQuantity(quantity); err != nil {
		return nil, err
	}

	cart, err := u.GetMyCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	var existing *domain.LineItem
	for i := range cart.Items {
		if cart.Items[i].SameProduct(productID, variationID) {
			existing = &cart.Items[i]
			break
		}
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: item is not in the cart", domain.ErrNotFound)
	}

	updated := *existing
	updated.Quantity = quantity
	if err := u.cartRepo.UpsertItem(ctx, cart.ID, updated); err != nil {
		return nil, fmt.Errorf("update cart: %w", err)
	}
	u.evaluator.Invalidate(cart.ID)

	return u.ViewMyCart(ctx, userID)
}

func (u *CartUsecase) RemoveFromCart(ctx context.Context, userID, productID string, variationID *string) (*CartView, error) {
	cart, err := u.GetMyCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := u.cartRepo.RemoveItem(ctx, cart.ID, productID, variationID); err != nil {
		return nil, fmt.Errorf("remove from cart: %w", err)
	}
	u.evaluator.Invalidate(cart.ID)

	return u.ViewMyCart(ctx, userID)
}

// CalculateTotals runs one fee-calculation pass: fees are rebuilt from
// scratch by every registered provider, then warnings are attached.
func (u *CartUsecase) CalculateTotals(ctx context.Context, cart *domain.Cart) *CartView {
	cart.ResetFees()
	for _, provider := range u.feeProviders {
		if err := provider.ApplyFees(ctx, cart); err != nil {
			logger.WithContext(ctx).Error().Err(err).Str("cart_id", cart.ID).Msg("fee provider failed, skipping")
		}
	}

	eval := u.evaluator.EvaluateCart(ctx, cart)

	view := &CartView{
		ID:                  cart.ID,
		UserID:              cart.UserID,
		Items:               make([]CartItemView, len(cart.Items)),
		Fees:                make([]FeeView, len(cart.Fees)),
		FeeTotal:            cart.FeeTotal().StringFixed(2),
		HasDangerousGoods:   eval.HasDangerousGoods,
		DangerousGoodsItems: eval.MatchedItemIDs,
		Notices:             []Notice{},
		cart:                cart,
	}
	for i, item := range cart.Items {
		iv := CartItemView{LineItem: item}
		if eval.Contains(item.EffectiveProductID()) {
			iv.DangerousGoods = true
			iv.Warning = CartItemWarning
		}
		view.Items[i] = iv
	}
	for i, fee := range cart.Fees {
		view.Fees[i] = toFeeView(fee)
	}
	if eval.HasDangerousGoods {
		settings := u.settings.Get(ctx)
		view.Notices = append(view.Notices, u.notices.Cart(settings), u.notices.Checkout(settings))
	}
	return view
}

func (u *CartUsecase) validateQuantity(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	if u.maxCartQuantity > 0 && quantity > u.maxCartQuantity {
		return fmt.Errorf("%w: quantity exceeds maximum of %d", domain.ErrValidation, u.maxCartQuantity)
	}
	return nil
}

// validatePurchasable checks that the line references a published simple
// product, or a published variation of the given variable product.
func (u *CartUsecase) validatePurchasable(ctx context.Context, productID string, variationID *string) error {
	product, err := u.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("product %s: %w", productID, err)
	}
	if !product.IsPublished() {
		return fmt.Errorf("%w: product %s is not available", domain.ErrValidation, productID)
	}

	switch product.Type {
	case domain.ProductTypeSimple:
		if variationID != nil {
			return fmt.Errorf("%w: simple products have no variations", domain.ErrValidation)
		}
	case domain.ProductTypeVariable:
		if variationID == nil || *variationID == "" {
			return fmt.Errorf("%w: please select a variation", domain.ErrValidation)
		}
		variation, err := u.productRepo.GetProductByID(ctx, *variationID)
		if err != nil {
			return fmt.Errorf("variation %s: %w", *variationID, err)
		}
		if variation.ParentID == nil || *variation.ParentID != productID || !variation.IsPublished() {
			return fmt.Errorf("%w: variation %s is not available for product %s", domain.ErrValidation, *variationID, productID)
		}
	default:
		return fmt.Errorf("%w: add the parent product with a variation id", domain.ErrValidation)
	}
	return nil
}

func toFeeView(fee domain.Fee) FeeView {
	return FeeView{
		Name:   fee.Name,
		Amount: fee.Amount.StringFixed(2),
		Tax:    fee.TaxTotal.StringFixed(2),
		Total:  fee.Total().StringFixed(2),
	}
}
