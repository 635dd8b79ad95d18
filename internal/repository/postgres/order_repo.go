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

type orderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) domain.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	db := conn(ctx, r.db)

	_, err := db.Exec(ctx,
		`INSERT INTO orders (id, user_id, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		order.ID, order.UserID, order.Status, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, item := range order.Items {
		meta := item.Meta
		if meta == nil {
			meta = []domain.ItemMeta{}
		}
		rawMeta, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("encode item meta: %w", err)
		}
		_, err = db.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, variation_id, name, quantity, meta, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			item.ID, order.ID, item.ProductID, idOrEmpty(item.VariationID), item.Name, item.Quantity, rawMeta, i,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	for i, fee := range order.Fees {
		_, err := db.Exec(ctx, `
			INSERT INTO order_fees (id, order_id, name, amount, tax_total, position)
			VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6)`,
			fee.ID, order.ID, fee.Name, fee.Amount.StringFixed(2), fee.TaxTotal.StringFixed(2), i,
		)
		if err != nil {
			return fmt.Errorf("insert order fee: %w", err)
		}
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	db := conn(ctx, r.db)

	var order domain.Order
	err := db.QueryRow(ctx,
		`SELECT id::text, user_id, status, created_at, updated_at FROM orders WHERE id = $1`, id,
	).Scan(&order.ID, &order.UserID, &order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}

	if err := r.loadLines(ctx, db, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	db := conn(ctx, r.db)

	rows, err := db.Query(ctx, `
		SELECT id::text, user_id, status, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders for user %s: %w", userID, err)
	}

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.loadLines(ctx, db, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepository) loadLines(ctx context.Context, db DBTX, order *domain.Order) error {
	rows, err := db.Query(ctx, `
		SELECT id::text, product_id, variation_id, name, quantity, meta
		FROM order_items
		WHERE order_id = $1
		ORDER BY position, id`, order.ID)
	if err != nil {
		return fmt.Errorf("get order items: %w", err)
	}
	order.Items = []domain.OrderItem{}
	for rows.Next() {
		var (
			item        domain.OrderItem
			variationID string
			rawMeta     []byte
		)
		if err := rows.Scan(&item.ID, &item.ProductID, &variationID, &item.Name, &item.Quantity, &rawMeta); err != nil {
			rows.Close()
			return err
		}
		item.OrderID = order.ID
		item.VariationID = nullIfEmpty(variationID)
		item.Meta = []domain.ItemMeta{}
		if len(rawMeta) > 0 {
			if err := json.Unmarshal(rawMeta, &item.Meta); err != nil {
				rows.Close()
				return fmt.Errorf("decode meta of order item %s: %w", item.ID, err)
			}
		}
		order.Items = append(order.Items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = db.Query(ctx, `
		SELECT id::text, name, amount::text, tax_total::text
		FROM order_fees
		WHERE order_id = $1
		ORDER BY position, id`, order.ID)
	if err != nil {
		return fmt.Errorf("get order fees: %w", err)
	}
	defer rows.Close()

	order.Fees = []domain.Fee{}
	for rows.Next() {
		var (
			fee            domain.Fee
			amount, taxTot string
		)
		if err := rows.Scan(&fee.ID, &fee.Name, &amount, &taxTot); err != nil {
			return err
		}
		if fee.Amount, err = decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("parse fee amount %q: %w", amount, err)
		}
		if fee.TaxTotal, err = decimal.NewFromString(taxTot); err != nil {
			return fmt.Errorf("parse fee tax %q: %w", taxTot, err)
		}
		order.Fees = append(order.Fees, fee)
	}
	return rows.Err()
}

func (r *orderRepository) ListOrderIDsWithFee(ctx context.Context, name string) ([]string, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT DISTINCT order_id::text FROM order_fees WHERE name = $1 ORDER BY 1`, name)
	if err != nil {
		return nil, fmt.Errorf("list orders with fee %q: %w", name, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan order ids: %w", err)
	}
	return ids, nil
}

// RenameFee renames one fee line, only while it still carries the old name.
func (r *orderRepository) RenameFee(ctx context.Context, feeID, from, to string) error {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE order_fees SET name = $3 WHERE id = $1 AND name = $2`, feeID, from, to)
	if err != nil {
		return fmt.Errorf("rename fee %s: %w", feeID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
