package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"dangerous-goods-backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

const productColumns = `id, parent_id, type, name, status, COALESCE(dangerous_goods, ''), dg_classification, dg_un_number, updated_at`

type productRepository struct {
	db DBTX
}

func NewProductRepository(db DBTX) domain.ProductRepository {
	return &productRepository{db: db}
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID,
		&p.ParentID,
		&p.Type,
		&p.Name,
		&p.Status,
		&p.DangerousGoods,
		&p.Classification,
		&p.UNNumber,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	db := conn(ctx, r.db)
	p, err := scanProduct(db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}

	if p.IsType(domain.ProductTypeVariable) {
		rows, err := db.Query(ctx, `SELECT id FROM products WHERE parent_id = $1 AND type = 'variation' ORDER BY id`, id)
		if err != nil {
			return nil, fmt.Errorf("list variation ids of %s: %w", id, err)
		}
		ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return nil, fmt.Errorf("scan variation ids of %s: %w", id, err)
		}
		p.VariationIDs = ids
	}
	return p, nil
}

func (r *productRepository) GetAvailableVariations(ctx context.Context, parentID string) ([]domain.Product, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE parent_id = $1 AND type = 'variation' AND status = 'publish'
		ORDER BY id`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list variations of %s: %w", parentID, err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *productRepository) UpsertProduct(ctx context.Context, p *domain.Product) error {
	_, err := conn(ctx, r.db).Exec(ctx, `
		INSERT INTO products (id, parent_id, type, name, status, dangerous_goods, dg_classification, dg_un_number, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			parent_id = EXCLUDED.parent_id,
			type = EXCLUDED.type,
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			dangerous_goods = EXCLUDED.dangerous_goods,
			dg_classification = EXCLUDED.dg_classification,
			dg_un_number = EXCLUDED.dg_un_number,
			updated_at = EXCLUDED.updated_at`,
		p.ID, p.ParentID, p.Type, p.Name, p.Status, nullIfEmpty(p.DangerousGoods), p.Classification, p.UNNumber, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	return nil
}

func (r *productRepository) SetDangerousGoods(ctx context.Context, id, flag, classification, unNumber string) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `
		UPDATE products
		SET dangerous_goods = $2, dg_classification = $3, dg_un_number = $4, updated_at = now()
		WHERE id = $1 AND type <> 'variable'`,
		id, flag, classification, unNumber,
	)
	if err != nil {
		return fmt.Errorf("set dangerous goods on %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *productRepository) ListDangerousProductIDs(ctx context.Context) ([]string, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT id FROM products
		WHERE dangerous_goods = 'yes' AND status = 'publish' AND type IN ('simple', 'variation')
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list dangerous products: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan dangerous products: %w", err)
	}
	return ids, nil
}
