package domain

// Product Types
const (
	ProductTypeSimple    = "simple"
	ProductTypeVariation = "variation"
	ProductTypeVariable  = "variable"
)

// Product Statuses
const (
	ProductStatusPublish = "publish"
	ProductStatusDraft   = "draft"
	ProductStatusPrivate = "private"
)

// Dangerous goods flag sentinels, as stored on simple products and variations.
const (
	DangerousGoodsYes = "yes"
	DangerousGoodsNo  = "no"
)

// Order Statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Roles
const (
	RoleCustomer    = "customer"
	RoleShopManager = "shop_manager"
	RoleAdmin       = "admin"
)

// Order line item meta keys written at checkout.
const (
	MetaDangerousGoods               = "dangerous_goods"
	MetaDangerousGoodsHidden         = "_dangerous_goods"
	MetaDangerousGoodsClassification = "dangerous_goods_classification"
	MetaDangerousGoodsUNNumber       = "dangerous_goods_un_number"
)

var ProductTypes = []string{
	ProductTypeSimple,
	ProductTypeVariation,
	ProductTypeVariable,
}

var ProductStatuses = []string{
	ProductStatusPublish,
	ProductStatusDraft,
	ProductStatusPrivate,
}

func isOneOf(v string, set []string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
