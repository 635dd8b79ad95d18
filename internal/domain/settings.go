package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SettingsOptionName = "wc_dangerous_goods_settings"
	DefaultFeeLabel    = "Dangerous Goods Fee"
	LegacyFeeLabel     = "Fees"
)

// DefaultFeeAmount is the handling fee used until an administrator saves one.
var DefaultFeeAmount = decimal.NewFromInt(20)

// Settings is the process-wide fee configuration.
type Settings struct {
	FeeAmount decimal.Decimal `json:"feeAmount"`
	FeeLabel  string          `json:"feeLabel"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func DefaultSettings() Settings {
	return Settings{
		FeeAmount: DefaultFeeAmount,
		FeeLabel:  DefaultFeeLabel,
	}
}

// FeeEnabled is false when the administrator disabled the fee with a zero amount.
func (s Settings) FeeEnabled() bool {
	return s.FeeAmount.IsPositive()
}

// StoredSettings is the persisted record; nil fields were never saved.
type StoredSettings struct {
	FeeAmount *decimal.Decimal
	FeeLabel  *string
	Version   int64
	UpdatedAt time.Time
}

type SettingsRepository interface {
	// Get returns ErrNotFound when nothing was ever saved.
	Get(ctx context.Context) (*StoredSettings, error)
	// Save writes both fields as one record and returns the new version.
	Save(ctx context.Context, settings Settings) (int64, error)
}
