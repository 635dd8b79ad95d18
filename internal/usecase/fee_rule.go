package usecase

import (
	"context"

	"dangerous-goods-backend/internal/domain"
	"dangerous-goods-backend/pkg/logger"

	"github.com/shopspring/decimal"
)

// SettingsProvider supplies the current fee settings.
type SettingsProvider interface {
	Get(ctx context.Context) domain.Settings
}

// ItemEvaluator aggregates dangerous-goods status over line items.
type ItemEvaluator interface {
	Evaluate(ctx context.Context, items []domain.LineItem) Evaluation
	EvaluateCart(ctx context.Context, cart *domain.Cart) Evaluation
}

// DangerousGoodsFeeRule adds the configured handling fee to any cart or order
// holding dangerous goods. It is registered as a domain.CartFeeProvider.
type DangerousGoodsFeeRule struct {
	settings  SettingsProvider
	evaluator ItemEvaluator
}

func NewDangerousGoodsFeeRule(settings SettingsProvider, evaluator ItemEvaluator) *DangerousGoodsFeeRule {
	return &DangerousGoodsFeeRule{
		settings:  settings,
		evaluator: evaluator,
	}
}

func (r *DangerousGoodsFeeRule) ApplyFees(ctx context.Context, target domain.FeeTarget) error {
	var eval Evaluation
	if cart, ok := target.(*domain.Cart); ok {
		eval = r.evaluator.EvaluateCart(ctx, cart)
	} else {
		eval = r.evaluator.Evaluate(ctx, target.LineItems())
	}
	settings := r.settings.Get(ctx)

	if ApplyDangerousGoodsFee(target, settings, eval) {
		logger.WithContext(ctx).Debug().
			Str("fee_label", settings.FeeLabel).
			Str("fee_amount", settings.FeeAmount.StringFixed(2)).
			Strs("dangerous_items", eval.MatchedItemIDs).
			Msg("dangerous goods fee applied")
	}
	return nil
}

// ApplyDangerousGoodsFee adds at most one fee named after the configured
// label. A zero amount disables the fee. It reports whether a fee was added.
func ApplyDangerousGoodsFee(target domain.FeeTarget, settings domain.Settings, eval Evaluation) bool {
	if !eval.HasDangerousGoods || !settings.FeeEnabled() {
		return false
	}
	if target.HasFee(settings.FeeLabel) {
		return false
	}
	return target.AddFee(domain.Fee{
		Name:     settings.FeeLabel,
		Amount:   settings.FeeAmount,
		TaxTotal: decimal.Zero,
	})
}
