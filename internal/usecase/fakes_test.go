package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"dangerous-goods-backend/internal/domain"
	infracache "dangerous-goods-backend/internal/infrastructure/cache"
	"dangerous-goods-backend/pkg/cache"

	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func newTestCache() cache.CacheService {
	return infracache.NewMemoryCache(time.Minute, time.Minute)
}

// --- products ---

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	getErr   error
	getCalls int
}

func newFakeProductRepo(products ...domain.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: map[string]*domain.Product{}}
	for i := range products {
		p := products[i]
		r.products[p.ID] = &p
	}
	return r
}

func (r *fakeProductRepo) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	if r.getErr != nil {
		return nil, r.getErr
	}
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetAvailableVariations(ctx context.Context, parentID string) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	var out []domain.Product
	for _, p := range r.products {
		if p.ParentID != nil && *p.ParentID == parentID && p.IsPublished() {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProductRepo) UpsertProduct(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *product
	r.products[product.ID] = &cp
	return nil
}

func (r *fakeProductRepo) SetDangerousGoods(ctx context.Context, id, flag, classification, unNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.DangerousGoods = flag
	p.Classification = classification
	p.UNNumber = unNumber
	return nil
}

func (r *fakeProductRepo) ListDangerousProductIDs(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, p := range r.products {
		if p.IsPublished() && !p.IsType(domain.ProductTypeVariable) && p.HasDangerousGoodsFlag() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeProductRepo) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getCalls
}

// --- carts ---

type fakeCartRepo struct {
	carts    map[string]*domain.Cart // by user id
	clearErr error
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: map[string]*domain.Cart{}}
}

func (r *fakeCartRepo) GetCartByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	c, ok := r.carts[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	cp.Items = append([]domain.LineItem(nil), c.Items...)
	return &cp, nil
}

func (r *fakeCartRepo) CreateCart(ctx context.Context, cart *domain.Cart) error {
	cp := *cart
	r.carts[cart.UserID] = &cp
	return nil
}

func (r *fakeCartRepo) byID(cartID string) *domain.Cart {
	for _, c := range r.carts {
		if c.ID == cartID {
			return c
		}
	}
	return nil
}

func (r *fakeCartRepo) UpsertItem(ctx context.Context, cartID string, item domain.LineItem) error {
	c := r.byID(cartID)
	if c == nil {
		return domain.ErrNotFound
	}
	for i := range c.Items {
		if c.Items[i].SameProduct(item.ProductID, item.VariationID) {
			c.Items[i].Quantity = item.Quantity
			return nil
		}
	}
	c.Items = append(c.Items, item)
	return nil
}

func (r *fakeCartRepo) RemoveItem(ctx context.Context, cartID, productID string, variationID *string) error {
	c := r.byID(cartID)
	if c == nil {
		return domain.ErrNotFound
	}
	kept := c.Items[:0]
	for _, it := range c.Items {
		if !it.SameProduct(productID, variationID) {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	return nil
}

func (r *fakeCartRepo) ClearCart(ctx context.Context, cartID string) error {
	if r.clearErr != nil {
		return r.clearErr
	}
	if c := r.byID(cartID); c != nil {
		c.Items = nil
	}
	return nil
}

// --- orders ---

type fakeOrderRepo struct {
	orders    map[string]*domain.Order
	createErr error
	renamed   []string
}

func newFakeOrderRepo(orders ...domain.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: map[string]*domain.Order{}}
	for i := range orders {
		o := orders[i]
		r.orders[o.ID] = &o
	}
	return r
}

func (r *fakeOrderRepo) CreateOrder(ctx context.Context, order *domain.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	cp.Fees = append([]domain.Fee(nil), o.Fees...)
	return &cp, nil
}

func (r *fakeOrderRepo) GetByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListOrderIDsWithFee(ctx context.Context, name string) ([]string, error) {
	var ids []string
	for id, o := range r.orders {
		if o.HasFee(name) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeOrderRepo) RenameFee(ctx context.Context, feeID, from, to string) error {
	for _, o := range r.orders {
		for i := range o.Fees {
			if o.Fees[i].ID == feeID && o.Fees[i].Name == from {
				o.Fees[i].Name = to
				r.renamed = append(r.renamed, feeID)
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

// --- settings ---

type fakeSettingsRepo struct {
	stored  *domain.StoredSettings
	getErr  error
	saveErr error
	saves   int
	gets    int
}

func (r *fakeSettingsRepo) Get(ctx context.Context) (*domain.StoredSettings, error) {
	r.gets++
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.stored == nil {
		return nil, domain.ErrNotFound
	}
	cp := *r.stored
	return &cp, nil
}

func (r *fakeSettingsRepo) Save(ctx context.Context, s domain.Settings) (int64, error) {
	if r.saveErr != nil {
		return 0, r.saveErr
	}
	r.saves++
	amount := s.FeeAmount
	label := s.FeeLabel
	version := int64(1)
	if r.stored != nil {
		version = r.stored.Version + 1
	}
	r.stored = &domain.StoredSettings{FeeAmount: &amount, FeeLabel: &label, Version: version, UpdatedAt: time.Now()}
	return version, nil
}

func storedSettings(amount string, label string) *domain.StoredSettings {
	a := decimal.RequireFromString(amount)
	return &domain.StoredSettings{FeeAmount: &a, FeeLabel: &label, Version: 1}
}

// staticSettings is a SettingsProvider returning fixed settings.
type staticSettings domain.Settings

func (s staticSettings) Get(ctx context.Context) domain.Settings { return domain.Settings(s) }

// --- infrastructure ---

type fakeTxManager struct{ calls int }

func (m *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type fakePublisher struct {
	events []domain.DangerousGoodsOrderPlaced
	err    error
}

func (p *fakePublisher) PublishDangerousGoodsOrder(ctx context.Context, evt domain.DangerousGoodsOrderPlaced) error {
	p.events = append(p.events, evt)
	return p.err
}

// --- catalog fixtures ---

func simpleProduct(id, flag string) domain.Product {
	return domain.Product{ID: id, Name: "Product " + id, Type: domain.ProductTypeSimple, Status: domain.ProductStatusPublish, DangerousGoods: flag}
}

func variableProduct(id string) domain.Product {
	return domain.Product{ID: id, Name: "Variable " + id, Type: domain.ProductTypeVariable, Status: domain.ProductStatusPublish}
}

func variation(id, parentID, flag string) domain.Product {
	return domain.Product{ID: id, ParentID: strPtr(parentID), Name: "Variation " + id, Type: domain.ProductTypeVariation, Status: domain.ProductStatusPublish, DangerousGoods: flag}
}
