package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// --- Cart Entities ---

type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Items     []LineItem `json:"items"`
	Fees      []Fee      `json:"fees"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type LineItem struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"productId"`
	VariationID *string `json:"variationId"`
	Quantity    int     `json:"quantity"`
}

// EffectiveProductID is the variation id when present, else the product id.
func (li LineItem) EffectiveProductID() string {
	if li.VariationID != nil && *li.VariationID != "" {
		return *li.VariationID
	}
	return li.ProductID
}

// SameProduct reports whether two line items reference the same product and variation.
func (li LineItem) SameProduct(productID string, variationID *string) bool {
	if li.ProductID != productID {
		return false
	}
	a, b := "", ""
	if li.VariationID != nil {
		a = *li.VariationID
	}
	if variationID != nil {
		b = *variationID
	}
	return a == b
}

func (c *Cart) LineItems() []LineItem {
	return c.Items
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) HasFee(name string) bool {
	return feeList(c.Fees).find(name) >= 0
}

func (c *Cart) AddFee(fee Fee) bool {
	if c.HasFee(fee.Name) {
		return false
	}
	c.Fees = append(c.Fees, fee)
	return true
}

// ResetFees drops every fee so a calculation pass starts from scratch.
func (c *Cart) ResetFees() {
	c.Fees = nil
}

func (c *Cart) FeeTotal() decimal.Decimal {
	return feeList(c.Fees).total()
}

// --- Order Entities ---

type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Status    string      `json:"status"`
	Items     []OrderItem `json:"items"`
	Fees      []Fee       `json:"fees"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type OrderItem struct {
	ID          string     `json:"id"`
	OrderID     string     `json:"orderId"`
	ProductID   string     `json:"productId"`
	VariationID *string    `json:"variationId"`
	Name        string     `json:"name"`
	Quantity    int        `json:"quantity"`
	Meta        []ItemMeta `json:"metaData"`
}

// ItemMeta is one meta entry stamped on an order line item.
type ItemMeta struct {
	Key          string `json:"key"`
	Value        string `json:"value"`
	DisplayKey   string `json:"display_key"`
	DisplayValue string `json:"display_value"`
}

func (oi OrderItem) LineItem() LineItem {
	return LineItem{
		ID:          oi.ID,
		ProductID:   oi.ProductID,
		VariationID: oi.VariationID,
		Quantity:    oi.Quantity,
	}
}

func (oi OrderItem) MetaValue(key string) (string, bool) {
	for _, m := range oi.Meta {
		if m.Key == key {
			return m.Value, true
		}
	}
	return "", false
}

func (o *Order) LineItems() []LineItem {
	items := make([]LineItem, len(o.Items))
	for i, oi := range o.Items {
		items[i] = oi.LineItem()
	}
	return items
}

func (o *Order) HasFee(name string) bool {
	return feeList(o.Fees).find(name) >= 0
}

func (o *Order) AddFee(fee Fee) bool {
	if o.HasFee(fee.Name) {
		return false
	}
	o.Fees = append(o.Fees, fee)
	return true
}

// FeeNamed returns the fee carrying name, if any.
func (o *Order) FeeNamed(name string) (Fee, bool) {
	if i := feeList(o.Fees).find(name); i >= 0 {
		return o.Fees[i], true
	}
	return Fee{}, false
}

func (o *Order) FeeTotal() decimal.Decimal {
	return feeList(o.Fees).total()
}

// --- Interfaces ---

type CartRepository interface {
	// GetCartByUserID returns ErrNotFound when the user has no cart yet.
	GetCartByUserID(ctx context.Context, userID string) (*Cart, error)
	CreateCart(ctx context.Context, cart *Cart) error
	// UpsertItem sets the quantity of the product/variation line, creating it if needed.
	UpsertItem(ctx context.Context, cartID string, item LineItem) error
	RemoveItem(ctx context.Context, cartID, productID string, variationID *string) error
	ClearCart(ctx context.Context, cartID string) error
}

type OrderRepository interface {
	// CreateOrder persists the order with its items and fees.
	CreateOrder(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByUserID(ctx context.Context, userID string) ([]Order, error)
	// ListOrderIDsWithFee returns ids of orders carrying a fee line named name.
	ListOrderIDsWithFee(ctx context.Context, name string) ([]string, error)
	RenameFee(ctx context.Context, feeID, from, to string) error
}

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
