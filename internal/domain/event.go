package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DangerousGoodsOrderPlaced announces an order that needs special handling.
type DangerousGoodsOrderPlaced struct {
	OrderID        string          `json:"orderId"`
	UserID         string          `json:"userId"`
	ItemProductIDs []string        `json:"dangerousGoodsItems"`
	FeeName        string          `json:"feeName,omitempty"`
	FeeAmount      decimal.Decimal `json:"feeAmount"`
	PlacedAt       time.Time       `json:"placedAt"`
}

type EventPublisher interface {
	PublishDangerousGoodsOrder(ctx context.Context, evt DangerousGoodsOrderPlaced) error
}
