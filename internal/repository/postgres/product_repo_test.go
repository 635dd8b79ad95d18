package pgrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"dangerous-goods-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productCols = []string{"id", "parent_id", "type", "name", "status", "dangerous_goods", "dg_classification", "dg_un_number", "updated_at"}

func strPtr(s string) *string { return &s }

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestProductRepository_GetProductByID(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id = $1`)).
		WithArgs("p-1").
		WillReturnRows(pgxmock.NewRows(productCols).
			AddRow("p-1", (*string)(nil), "simple", "Battery", "publish", "yes", "Class 9", "UN3480", now))

	p, err := repo.GetProductByID(context.Background(), "p-1")

	require.NoError(t, err)
	assert.Equal(t, "p-1", p.ID)
	assert.Nil(t, p.ParentID)
	assert.True(t, p.HasDangerousGoodsFlag())
	assert.Equal(t, "Class 9", p.Classification)
	assert.Equal(t, "UN3480", p.UNNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetVariableProductLoadsVariationIDs(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id = $1`)).
		WithArgs("v").
		WillReturnRows(pgxmock.NewRows(productCols).
			AddRow("v", (*string)(nil), "variable", "Spray", "publish", "", "", "", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM products WHERE parent_id = $1 AND type = 'variation'`)).
		WithArgs("v").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("v-1").AddRow("v-2"))

	p, err := repo.GetProductByID(context.Background(), "v")

	require.NoError(t, err)
	assert.Equal(t, []string{"v-1", "v-2"}, p.VariationIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetProductByIDNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id = $1`)).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetProductByID(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductRepository_GetAvailableVariations(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE parent_id = $1 AND type = 'variation' AND status = 'publish'`)).
		WithArgs("v").
		WillReturnRows(pgxmock.NewRows(productCols).
			AddRow("v-1", strPtr("v"), "variation", "Small", "publish", "no", "", "", now).
			AddRow("v-2", strPtr("v"), "variation", "Large", "publish", "yes", "", "", now))

	got, err := repo.GetAvailableVariations(context.Background(), "v")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[0].HasDangerousGoodsFlag())
	assert.True(t, got[1].HasDangerousGoodsFlag())
	assert.Equal(t, "v", *got[1].ParentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_UpsertProduct(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO products`)).
		WithArgs("v", (*string)(nil), "variable", "Spray", "publish", (*string)(nil), "", "", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.UpsertProduct(context.Background(), &domain.Product{
		ID: "v", Type: domain.ProductTypeVariable, Name: "Spray", Status: domain.ProductStatusPublish, UpdatedAt: now,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_SetDangerousGoods(t *testing.T) {
	tests := map[string]struct {
		rows    int64
		execErr error
		wantErr error
	}{
		"updated":             {rows: 1},
		"missing or variable": {rows: 0, wantErr: domain.ErrNotFound},
		"database error":      {execErr: errors.New("boom")},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			mock := newMock(t)
			repo := NewProductRepository(mock)

			exp := mock.ExpectExec(regexp.QuoteMeta(`UPDATE products`)).
				WithArgs("p-1", "yes", "Class 3", "UN1993")
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("UPDATE", tt.rows))
			}

			err := repo.SetDangerousGoods(context.Background(), "p-1", "yes", "Class 3", "UN1993")

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.execErr != nil:
				assert.ErrorIs(t, err, tt.execErr)
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProductRepository_ListDangerousProductIDs(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE dangerous_goods = 'yes' AND status = 'publish'`)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("a").AddRow("v-2"))

	ids, err := repo.ListDangerousProductIDs(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "v-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
