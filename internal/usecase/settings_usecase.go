package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dangerous-goods-backend/internal/domain"
	"dangerous-goods-backend/pkg/cache"
	"dangerous-goods-backend/pkg/logger"
	"dangerous-goods-backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// SettingsInput is an administrative save request. FeeAmount holds the raw
// submitted value: a JSON number, a numeric string, or nil when omitted.
type SettingsInput struct {
	FeeAmount interface{} `json:"feeAmount"`
	FeeLabel  string      `json:"feeLabel"`
}

// SettingsUsecase owns the fee settings record. Reads never fail: anything
// missing or unreadable falls back to the defaults.
type SettingsUsecase struct {
	repo  domain.SettingsRepository
	cache cache.CacheService
	ttl   time.Duration
}

func NewSettingsUsecase(repo domain.SettingsRepository, cache cache.CacheService, ttl time.Duration) *SettingsUsecase {
	return &SettingsUsecase{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
	}
}

// Get returns the persisted settings merged over the defaults.
func (u *SettingsUsecase) Get(ctx context.Context) domain.Settings {
	if val, found := u.cache.Get(cache.KeyDangerousGoodsSettings); found {
		if s, ok := val.(domain.Settings); ok {
			return s
		}
	}

	stored, err := u.repo.Get(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			// Not cached, so the next read retries storage.
			logger.WithContext(ctx).Warn().Err(err).Msg("failed to load dangerous goods settings, using defaults")
			return domain.DefaultSettings()
		}
		stored = &domain.StoredSettings{}
	}

	settings := mergeSettings(stored)
	u.cache.Set(cache.KeyDangerousGoodsSettings, settings, u.ttl)
	return settings
}

// Save validates, normalizes and persists a settings submission.
func (u *SettingsUsecase) Save(ctx context.Context, actor *domain.User, input SettingsInput) (domain.Settings, error) {
	if !actor.CanManageStore() {
		return domain.Settings{}, fmt.Errorf("%w: insufficient permissions to save settings", domain.ErrUnauthorized)
	}

	amount, err := ParseFeeAmount(input.FeeAmount)
	if err != nil {
		return domain.Settings{}, err
	}

	settings := domain.Settings{
		FeeAmount: NormalizeFeeAmount(amount),
		FeeLabel:  NormalizeFeeLabel(input.FeeLabel),
	}

	version, err := u.repo.Save(ctx, settings)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	settings.Version = version
	settings.UpdatedAt = time.Now()

	u.cache.Delete(cache.KeyDangerousGoodsSettings)
	u.cache.Delete(cache.KeyPublicFeeConfig)

	logger.WithContext(ctx).Info().
		Str("user_id", actor.ID).
		Str("fee_amount", settings.FeeAmount.StringFixed(2)).
		Str("fee_label", settings.FeeLabel).
		Int64("version", version).
		Msg("dangerous goods settings saved")

	return settings, nil
}

// RelabelFee replaces the stored fee label with to when it is unset or equals
// from. It returns the label found before the change and whether it changed.
func (u *SettingsUsecase) RelabelFee(ctx context.Context, from, to string) (string, bool, error) {
	stored, err := u.repo.Get(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return "", false, fmt.Errorf("load settings: %w", err)
		}
		stored = &domain.StoredSettings{}
	}

	previous := ""
	if stored.FeeLabel != nil {
		previous = strings.TrimSpace(*stored.FeeLabel)
	}
	if previous != "" && previous != from {
		return previous, false, nil
	}

	settings := mergeSettings(stored)
	settings.FeeLabel = NormalizeFeeLabel(to)
	if _, err := u.repo.Save(ctx, settings); err != nil {
		return previous, false, fmt.Errorf("save settings: %w", err)
	}
	u.cache.Delete(cache.KeyDangerousGoodsSettings)
	u.cache.Delete(cache.KeyPublicFeeConfig)

	logger.WithContext(ctx).Info().
		Str("from", previous).
		Str("to", settings.FeeLabel).
		Msg("dangerous goods fee label migrated")
	return previous, true, nil
}

// ParseFeeAmount converts a submitted fee amount. Omitted values take the
// default; values that are not numbers at all are a validation error.
func ParseFeeAmount(raw interface{}) (decimal.Decimal, error) {
	amount, err := parseFeeAmount(raw)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return amount, checkFeeAmountRange(amount)
}

// MaxFeeAmount is the largest handling fee accepted on save.
var MaxFeeAmount = decimal.NewFromInt(1_000_000)

// Amounts like "1e900000000" are rejected before any rescaling.
const (
	maxFeeExponent = 9
	minFeeExponent = -30
)

func checkFeeAmountRange(amount decimal.Decimal) error {
	if exp := amount.Exponent(); exp > maxFeeExponent || exp < minFeeExponent {
		return fmt.Errorf("%w: fee amount is out of range", domain.ErrValidation)
	}
	if amount.GreaterThan(MaxFeeAmount) {
		return fmt.Errorf("%w: fee amount exceeds %s", domain.ErrValidation, MaxFeeAmount.String())
	}
	return nil
}

func parseFeeAmount(raw interface{}) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case nil:
		return domain.DefaultFeeAmount, nil
	case decimal.Decimal:
		return v, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case string:
		return parseAmountString(v)
	case fmt.Stringer: // json.Number when the body was decoded with UseNumber
		return parseAmountString(v.String())
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: fee amount must be numeric", domain.ErrValidation)
	}
}

func parseAmountString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.DefaultFeeAmount, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: fee amount %q is not a number", domain.ErrValidation, s)
	}
	return d, nil
}

// NormalizeFeeAmount clamps to zero and rounds to cents.
func NormalizeFeeAmount(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount.Round(2)
}

// NormalizeFeeLabel sanitizes the label, falling back to the default when empty.
func NormalizeFeeLabel(label string) string {
	label = utils.SanitizeText(label)
	if label == "" {
		return domain.DefaultFeeLabel
	}
	return label
}

func mergeSettings(stored *domain.StoredSettings) domain.Settings {
	settings := domain.DefaultSettings()
	if stored.FeeAmount != nil {
		settings.FeeAmount = NormalizeFeeAmount(*stored.FeeAmount)
	}
	if stored.FeeLabel != nil {
		if label := strings.TrimSpace(*stored.FeeLabel); label != "" {
			settings.FeeLabel = label
		}
	}
	settings.Version = stored.Version
	settings.UpdatedAt = stored.UpdatedAt
	return settings
}
