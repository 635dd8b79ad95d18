package usecase

import (
	"context"
	"testing"
	"time"

	"dangerous-goods-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settingsWith(amount, label string) domain.Settings {
	return domain.Settings{FeeAmount: decimal.RequireFromString(amount), FeeLabel: label}
}

func TestApplyDangerousGoodsFee(t *testing.T) {
	dangerous := Evaluation{HasDangerousGoods: true, MatchedItemIDs: []string{"A"}}
	safe := Evaluation{MatchedItemIDs: []string{}}

	tests := map[string]struct {
		existing  []domain.Fee
		settings  domain.Settings
		eval      Evaluation
		wantAdded bool
		wantFees  int
	}{
		"dangerous goods add the fee": {
			settings:  settingsWith("20", domain.DefaultFeeLabel),
			eval:      dangerous,
			wantAdded: true,
			wantFees:  1,
		},
		"no dangerous goods means no fee": {
			settings: settingsWith("20", domain.DefaultFeeLabel),
			eval:     safe,
			wantFees: 0,
		},
		"zero amount disables the fee": {
			settings: settingsWith("0", domain.DefaultFeeLabel),
			eval:     dangerous,
			wantFees: 0,
		},
		"existing fee with the same label is kept": {
			existing: []domain.Fee{{Name: domain.DefaultFeeLabel, Amount: decimal.NewFromInt(20)}},
			settings: settingsWith("20", domain.DefaultFeeLabel),
			eval:     dangerous,
			wantFees: 1,
		},
		"other fees do not block the dangerous goods fee": {
			existing:  []domain.Fee{{Name: "Gift Wrap", Amount: decimal.NewFromInt(5)}},
			settings:  settingsWith("20", domain.DefaultFeeLabel),
			eval:      dangerous,
			wantAdded: true,
			wantFees:  2,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cart := &domain.Cart{ID: "c", Fees: append([]domain.Fee(nil), tt.existing...)}

			added := ApplyDangerousGoodsFee(cart, tt.settings, tt.eval)

			assert.Equal(t, tt.wantAdded, added)
			assert.Len(t, cart.Fees, tt.wantFees)
		})
	}
}

func TestDangerousGoodsFeeRule_ApplyFees(t *testing.T) {
	repo := newFakeProductRepo(
		simpleProduct("A", domain.DangerousGoodsYes),
		simpleProduct("B", domain.DangerousGoodsNo),
	)
	evaluator := NewEvaluationUsecase(NewClassificationUsecase(repo), newTestCache(), time.Minute)
	rule := NewDangerousGoodsFeeRule(staticSettings(settingsWith("15.00", "Hazmat Fee")), evaluator)

	t.Run("cart with a dangerous item", func(t *testing.T) {
		cart := &domain.Cart{ID: "c1", Items: []domain.LineItem{{ProductID: "A", Quantity: 1}, {ProductID: "B", Quantity: 2}}}

		require.NoError(t, rule.ApplyFees(context.Background(), cart))
		require.NoError(t, rule.ApplyFees(context.Background(), cart))

		require.Len(t, cart.Fees, 1, "a second invocation in the same pass must not duplicate the fee")
		assert.Equal(t, "Hazmat Fee", cart.Fees[0].Name)
		assert.True(t, decimal.RequireFromString("15").Equal(cart.Fees[0].Amount))
		assert.True(t, cart.Fees[0].TaxTotal.IsZero())
	})

	t.Run("order without dangerous items", func(t *testing.T) {
		order := &domain.Order{ID: "o1", Items: []domain.OrderItem{{ProductID: "B", Quantity: 1}}}

		require.NoError(t, rule.ApplyFees(context.Background(), order))

		assert.Empty(t, order.Fees)
	})
}
