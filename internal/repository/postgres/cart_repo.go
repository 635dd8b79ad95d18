package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"dangerous-goods-backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type cartRepository struct {
	db DBTX
}

func NewCartRepository(db DBTX) domain.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetCartByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	db := conn(ctx, r.db)

	var cart domain.Cart
	err := db.QueryRow(ctx,
		`SELECT id::text, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID,
	).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get cart for user %s: %w", userID, err)
	}

	rows, err := db.Query(ctx, `
		SELECT id::text, product_id, variation_id, quantity
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at, id`, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	cart.Items = []domain.LineItem{}
	for rows.Next() {
		var (
			item        domain.LineItem
			variationID string
		)
		if err := rows.Scan(&item.ID, &item.ProductID, &variationID, &item.Quantity); err != nil {
			return nil, err
		}
		item.VariationID = nullIfEmpty(variationID)
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) CreateCart(ctx context.Context, cart *domain.Cart) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO carts (id, user_id, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		cart.ID, cart.UserID, cart.CreatedAt, cart.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create cart: %w", err)
	}
	return nil
}

func (r *cartRepository) UpsertItem(ctx context.Context, cartID string, item domain.LineItem) error {
	db := conn(ctx, r.db)
	_, err := db.Exec(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, variation_id, quantity)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cart_id, product_id, variation_id) DO UPDATE SET quantity = EXCLUDED.quantity`,
		item.ID, cartID, item.ProductID, idOrEmpty(item.VariationID), item.Quantity,
	)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return r.touch(ctx, db, cartID)
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID string, variationID *string) error {
	db := conn(ctx, r.db)
	_, err := db.Exec(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2 AND variation_id = $3`,
		cartID, productID, idOrEmpty(variationID),
	)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return r.touch(ctx, db, cartID)
}

func (r *cartRepository) ClearCart(ctx context.Context, cartID string) error {
	db := conn(ctx, r.db)
	if _, err := db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return r.touch(ctx, db, cartID)
}

func (r *cartRepository) touch(ctx context.Context, db DBTX, cartID string) error {
	if _, err := db.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}
