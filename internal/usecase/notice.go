package usecase

import (
	"fmt"

	"dangerous-goods-backend/internal/domain"
	"dangerous-goods-backend/pkg/utils"
)

const (
	NoticeCart     = "cart_warning"
	NoticeCheckout = "checkout_warning"
	NoticeProduct  = "product_warning"

	ShopLoopBadge   = "Dangerous Goods"
	CartItemWarning = "Contains Dangerous Goods"
)

// Notice is a warning the storefront renders next to a cart, checkout or product.
type Notice struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// NoticeBuilder renders warning copy with the configured fee.
type NoticeBuilder struct {
	currencySymbol string
}

func NewNoticeBuilder(currencySymbol string) *NoticeBuilder {
	return &NoticeBuilder{currencySymbol: currencySymbol}
}

func (b *NoticeBuilder) Cart(settings domain.Settings) Notice {
	msg := "Your cart contains dangerous goods."
	if settings.FeeEnabled() {
		msg = fmt.Sprintf("Your cart contains dangerous goods. A %s handling fee has been added below.", b.price(settings))
	}
	return Notice{Type: NoticeCart, Title: "Dangerous Goods Detected", Message: msg}
}

func (b *NoticeBuilder) Checkout(settings domain.Settings) Notice {
	msg := "Your order contains dangerous goods."
	if settings.FeeEnabled() {
		msg = fmt.Sprintf("Your order contains dangerous goods. A %s handling fee has been applied to cover special shipping requirements.", b.price(settings))
	}
	return Notice{Type: NoticeCheckout, Title: "Important", Message: msg}
}

func (b *NoticeBuilder) Product(settings domain.Settings) Notice {
	msg := "This product contains dangerous goods."
	if settings.FeeEnabled() {
		msg = fmt.Sprintf("This product contains dangerous goods. A %s handling fee will be added at checkout.", b.price(settings))
	}
	return Notice{Type: NoticeProduct, Title: "Dangerous Goods", Message: msg}
}

func (b *NoticeBuilder) price(settings domain.Settings) string {
	return utils.FormatPrice(b.currencySymbol, settings.FeeAmount)
}
