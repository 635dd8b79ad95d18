package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dangerous-goods-backend/internal/domain"
	"dangerous-goods-backend/pkg/logger"

	"github.com/google/uuid"
)

// FeeSettings is the settings surface orders need: reads plus the label migration.
type FeeSettings interface {
	SettingsProvider
	RelabelFee(ctx context.Context, from, to string) (string, bool, error)
}

type OrderUsecase struct {
	orderRepo   domain.OrderRepository
	productRepo domain.ProductRepository
	cartRepo    domain.CartRepository
	carts       *CartUsecase
	classifier  *ClassificationUsecase
	evaluator   CartEvaluator
	settings    FeeSettings
	publisher   domain.EventPublisher
	txManager   domain.TransactionManager
}

func NewOrderUsecase(
	orderRepo domain.OrderRepository,
	productRepo domain.ProductRepository,
	cartRepo domain.CartRepository,
	carts *CartUsecase,
	classifier *ClassificationUsecase,
	evaluator CartEvaluator,
	settings FeeSettings,
	publisher domain.EventPublisher,
	txManager domain.TransactionManager,
) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		carts:       carts,
		classifier:  classifier,
		evaluator:   evaluator,
		settings:    settings,
		publisher:   publisher,
		txManager:   txManager,
	}
}

// --- Checkout ---

// Checkout turns the user's cart into an order. The fee pass that runs here is
// the one whose fees are fixed on the order.
func (u *OrderUsecase) Checkout(ctx context.Context, userID string) (*domain.Order, error) {
	cart, err := u.carts.GetMyCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	view := u.carts.CalculateTotals(ctx, cart)
	now := time.Now()

	order := &domain.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    domain.OrderStatusPending,
		Items:     make([]domain.OrderItem, 0, len(cart.Items)),
		Fees:      make([]domain.Fee, 0, len(cart.Fees)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, item := range cart.Items {
		oi := domain.OrderItem{
			ID:          uuid.NewString(),
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Quantity:    item.Quantity,
			Meta:        []domain.ItemMeta{},
		}

		product, err := u.productRepo.GetProductByID(ctx, item.EffectiveProductID())
		switch {
		case errors.Is(err, domain.ErrNotFound):
			// Removed from the catalog since it was added; sold as not dangerous.
			logger.WithContext(ctx).Warn().
				Str("product_id", item.EffectiveProductID()).
				Str("cart_id", cart.ID).
				Msg("cart item no longer in catalog, checking out without product details")
		case err != nil:
			return nil, fmt.Errorf("product %s: %w", item.EffectiveProductID(), err)
		default:
			oi.Name = product.Name
			if view.HasDangerousGoods && containsID(view.DangerousGoodsItems, item.EffectiveProductID()) {
				oi.Meta = dangerousGoodsMeta(product, true)
			}
		}
		order.Items = append(order.Items, oi)
	}

	for _, fee := range cart.Fees {
		fee.ID = uuid.NewString()
		order.Fees = append(order.Fees, fee)
	}

	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.orderRepo.CreateOrder(txCtx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := u.cartRepo.ClearCart(txCtx, cart.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.evaluator.Invalidate(cart.ID)

	logger.WithContext(ctx).Info().
		Str("order_id", order.ID).
		Str("user_id", userID).
		Bool("dangerous_goods", view.HasDangerousGoods).
		Str("fee_total", order.FeeTotal().StringFixed(2)).
		Msg("order placed")

	if view.HasDangerousGoods {
		u.publishOrderPlaced(ctx, order, view.DangerousGoodsItems)
	}
	return order, nil
}

func (u *OrderUsecase) publishOrderPlaced(ctx context.Context, order *domain.Order, items []string) {
	if u.publisher == nil {
		return
	}
	evt := domain.DangerousGoodsOrderPlaced{
		OrderID:        order.ID,
		UserID:         order.UserID,
		ItemProductIDs: items,
		PlacedAt:       order.CreatedAt,
	}
	if fee, ok := order.FeeNamed(u.settings.Get(ctx).FeeLabel); ok {
		evt.FeeName = fee.Name
		evt.FeeAmount = fee.Amount
	}
	if err := u.publisher.PublishDangerousGoodsOrder(ctx, evt); err != nil {
		logger.WithContext(ctx).Error().Err(err).Str("order_id", order.ID).Msg("failed to publish dangerous goods order event")
	}
}

// --- Queries ---

func (u *OrderUsecase) GetMyOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := u.orderRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// GetOrder returns an order to its owner or to a store manager. Other callers
// get ErrNotFound so order ids cannot be enumerated.
func (u *OrderUsecase) GetOrder(ctx context.Context, actor *domain.User, id string) (*domain.Order, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	order, err := u.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", id, err)
	}
	if order.UserID != actor.ID && !actor.CanManageStore() {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	return order, nil
}

// --- REST shape ---

type OrderItemView struct {
	ID             string            `json:"id"`
	ProductID      string            `json:"product_id"`
	VariationID    *string           `json:"variation_id"`
	Name           string            `json:"name"`
	Quantity       int               `json:"quantity"`
	DangerousGoods bool              `json:"dangerous_goods"`
	MetaData       []domain.ItemMeta `json:"meta_data"`
}

type DangerousGoodsSummary struct {
	HasDangerousGoods       bool     `json:"has_dangerous_goods"`
	DangerousGoodsFee       *FeeView `json:"dangerous_goods_fee"`
	DangerousGoodsItems     []string `json:"dangerous_goods_items"`
	RequiresSpecialHandling bool     `json:"requires_special_handling"`
}

// OrderView is the order as returned by the API, with dangerous goods
// details resolved against the current catalog.
type OrderView struct {
	ID                    string                `json:"id"`
	UserID                string                `json:"user_id"`
	Status                string                `json:"status"`
	LineItems             []OrderItemView       `json:"line_items"`
	FeeLines              []FeeView             `json:"fee_lines"`
	FeeTotal              string                `json:"fee_total"`
	HasDangerousGoods     bool                  `json:"has_dangerous_goods"`
	DangerousGoodsSummary DangerousGoodsSummary `json:"dangerous_goods_summary"`
	CreatedAt             time.Time             `json:"created_at"`
}

func (u *OrderUsecase) OrderView(ctx context.Context, order *domain.Order) *OrderView {
	settings := u.settings.Get(ctx)
	view := &OrderView{
		ID:        order.ID,
		UserID:    order.UserID,
		Status:    order.Status,
		LineItems: make([]OrderItemView, 0, len(order.Items)),
		FeeLines:  make([]FeeView, 0, len(order.Fees)),
		FeeTotal:  order.FeeTotal().StringFixed(2),
		CreatedAt: order.CreatedAt,
	}
	items := []string{}

	for _, oi := range order.Items {
		iv := OrderItemView{
			ID:          oi.ID,
			ProductID:   oi.ProductID,
			VariationID: oi.VariationID,
			Name:        oi.Name,
			Quantity:    oi.Quantity,
			MetaData:    visibleMeta(oi.Meta),
		}
		product, dangerous := u.resolveDangerous(ctx, oi.LineItem())
		if dangerous {
			iv.DangerousGoods = true
			iv.MetaData = mergeMeta(iv.MetaData, dangerousGoodsMeta(product, false))
			if !containsID(items, oi.ProductID) {
				items = append(items, oi.ProductID)
			}
		}
		view.LineItems = append(view.LineItems, iv)
	}
	for _, fee := range order.Fees {
		view.FeeLines = append(view.FeeLines, toFeeView(fee))
	}

	view.HasDangerousGoods = len(items) > 0
	view.DangerousGoodsSummary = DangerousGoodsSummary{
		HasDangerousGoods:       view.HasDangerousGoods,
		DangerousGoodsItems:     items,
		RequiresSpecialHandling: view.HasDangerousGoods,
	}
	if fee, ok := order.FeeNamed(settings.FeeLabel); ok {
		fv := toFeeView(fee)
		view.DangerousGoodsSummary.DangerousGoodsFee = &fv
	}
	return view
}

// OrderHasDangerousGoodsFee reports whether the order carries a fee named
// after the configured label.
func OrderHasDangerousGoodsFee(order *domain.Order, settings domain.Settings) bool {
	if order == nil {
		return false
	}
	return order.HasFee(settings.FeeLabel)
}

// OrderDangerousGoodsNames returns the distinct names of the order's
// dangerous products.
func (u *OrderUsecase) OrderDangerousGoodsNames(ctx context.Context, order *domain.Order) []string {
	names := []string{}
	if order == nil {
		return names
	}
	for _, oi := range order.Items {
		product, dangerous := u.resolveDangerous(ctx, oi.LineItem())
		if !dangerous {
			continue
		}
		name := product.Name
		if name == "" {
			name = oi.Name
		}
		if !containsID(names, name) {
			names = append(names, name)
		}
	}
	return names
}

func (u *OrderUsecase) resolveDangerous(ctx context.Context, item domain.LineItem) (*domain.Product, bool) {
	product, err := u.productRepo.GetProductByID(ctx, item.EffectiveProductID())
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.WithContext(ctx).Warn().Err(err).Str("product_id", item.EffectiveProductID()).Msg("product lookup failed")
		}
		return nil, false
	}
	return product, u.classifier.IsDangerousProduct(ctx, product)
}

// --- Fee label migration ---

type RelabelReport struct {
	From            string   `json:"from"`
	To              string   `json:"to"`
	PreviousLabel   string   `json:"previousLabel"`
	SettingsUpdated bool     `json:"settingsUpdated"`
	OrdersScanned   int      `json:"ordersScanned"`
	FeesRenamed     int      `json:"feesRenamed"`
	OrderIDs        []string `json:"orderIds"`
}

// RelabelFees moves the store off a legacy fee label. The settings label is
// replaced when unset or equal to from, and fee lines named from are renamed
// on orders that contain dangerous goods. Other orders keep their fee lines.
func (u *OrderUsecase) RelabelFees(ctx context.Context, from, to string) (*RelabelReport, error) {
	from = strings.TrimSpace(from)
	to = NormalizeFeeLabel(to)
	if from == "" {
		return nil, fmt.Errorf("%w: source label is required", domain.ErrValidation)
	}

	report := &RelabelReport{From: from, To: to, OrderIDs: []string{}}

	previous, updated, err := u.settings.RelabelFee(ctx, from, to)
	if err != nil {
		return nil, err
	}
	report.PreviousLabel = previous
	report.SettingsUpdated = updated

	ids, err := u.orderRepo.ListOrderIDsWithFee(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("list orders with fee %q: %w", from, err)
	}

	for _, id := range ids {
		order, err := u.orderRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return report, fmt.Errorf("order %s: %w", id, err)
		}
		report.OrdersScanned++

		if !u.orderHasDangerousGoods(ctx, order) {
			continue
		}
		renamed := false
		for _, fee := range order.Fees {
			if fee.Name != from {
				continue
			}
			if err := u.orderRepo.RenameFee(ctx, fee.ID, from, to); err != nil {
				return report, fmt.Errorf("rename fee on order %s: %w", id, err)
			}
			report.FeesRenamed++
			renamed = true
		}
		if renamed {
			report.OrderIDs = append(report.OrderIDs, id)
			logger.WithContext(ctx).Info().Str("order_id", id).Str("from", from).Str("to", to).Msg("renamed order fee")
		}
	}

	u.evaluator.InvalidateAll()
	return report, nil
}

func (u *OrderUsecase) orderHasDangerousGoods(ctx context.Context, order *domain.Order) bool {
	for _, oi := range order.Items {
		if _, dangerous := u.resolveDangerous(ctx, oi.LineItem()); dangerous {
			return true
		}
	}
	return false
}

// --- Meta helpers ---

// dangerousGoodsMeta builds the line item meta for a dangerous product. The
// hidden flag is only written when stamping at checkout.
func dangerousGoodsMeta(product *domain.Product, hidden bool) []domain.ItemMeta {
	meta := []domain.ItemMeta{{
		Key:          domain.MetaDangerousGoods,
		Value:        domain.DangerousGoodsYes,
		DisplayKey:   "Dangerous Goods",
		DisplayValue: "Yes",
	}}
	if hidden {
		meta = append(meta, domain.ItemMeta{Key: domain.MetaDangerousGoodsHidden, Value: domain.DangerousGoodsYes})
	}
	if product == nil {
		return meta
	}
	if product.Classification != "" {
		meta = append(meta, domain.ItemMeta{
			Key:          domain.MetaDangerousGoodsClassification,
			Value:        product.Classification,
			DisplayKey:   "Classification",
			DisplayValue: product.Classification,
		})
	}
	if product.UNNumber != "" {
		meta = append(meta, domain.ItemMeta{
			Key:          domain.MetaDangerousGoodsUNNumber,
			Value:        product.UNNumber,
			DisplayKey:   "UN Number",
			DisplayValue: product.UNNumber,
		})
	}
	return meta
}

// visibleMeta drops underscore-prefixed entries.
func visibleMeta(meta []domain.ItemMeta) []domain.ItemMeta {
	out := make([]domain.ItemMeta, 0, len(meta))
	for _, m := range meta {
		if strings.HasPrefix(m.Key, "_") {
			continue
		}
		out = append(out, m)
	}
	return out
}

// mergeMeta appends entries whose key is not present yet.
func mergeMeta(meta, extra []domain.ItemMeta) []domain.ItemMeta {
	for _, e := range extra {
		found := false
		for _, m := range meta {
			if m.Key == e.Key {
				found = true
				break
			}
		}
		if !found {
			meta = append(meta, e)
		}
	}
	return meta
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
