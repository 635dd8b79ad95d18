package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"dangerous-goods-backend/internal/domain"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// settingsValue is the JSONB document stored under the settings option name.
type settingsValue struct {
	FeeAmount *decimal.Decimal `json:"fee_amount,omitempty"`
	FeeLabel  *string          `json:"fee_label,omitempty"`
}

// storedValue is what Save writes; the amount is a plain JSON number.
type storedValue struct {
	FeeAmount float64 `json:"fee_amount"`
	FeeLabel  string  `json:"fee_label"`
}

type settingsRepository struct {
	db   DBTX
	name string
}

func NewSettingsRepository(db DBTX) domain.SettingsRepository {
	return &settingsRepository{db: db, name: domain.SettingsOptionName}
}

func (r *settingsRepository) Get(ctx context.Context) (*domain.StoredSettings, error) {
	var (
		raw    []byte
		stored domain.StoredSettings
	)
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT value, version, updated_at FROM plugin_settings WHERE name = $1`, r.name,
	).Scan(&raw, &stored.Version, &stored.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}

	var v settingsValue
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode settings %s: %w", r.name, err)
		}
	}
	stored.FeeAmount = v.FeeAmount
	stored.FeeLabel = v.FeeLabel
	return &stored, nil
}

// Save replaces the whole record in one statement and bumps its version.
func (r *settingsRepository) Save(ctx context.Context, s domain.Settings) (int64, error) {
	raw, err := json.Marshal(storedValue{
		FeeAmount: s.FeeAmount.Round(2).InexactFloat64(),
		FeeLabel:  s.FeeLabel,
	})
	if err != nil {
		return 0, fmt.Errorf("encode settings: %w", err)
	}

	var version int64
	err = conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO plugin_settings (name, value, version, updated_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (name) DO UPDATE SET
			value = EXCLUDED.value,
			version = plugin_settings.version + 1,
			updated_at = now()
		RETURNING version`, r.name, raw,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("save settings: %w", err)
	}
	return version, nil
}
