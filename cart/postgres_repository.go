package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"goflare.io/storefront/driver"
	"goflare.io/storefront/models"
)

var _ Repository = (*postgresRepository)(nil)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS storefront_carts (
		owner_key    TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL DEFAULT '',
		address_id   BIGINT,
		promotion_id BIGINT,
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS storefront_cart_items (
		owner_key  TEXT NOT NULL REFERENCES storefront_carts (owner_key) ON DELETE CASCADE,
		position   INT NOT NULL,
		variant_id BIGINT NOT NULL,
		quantity   INT NOT NULL CHECK (quantity > 0),
		PRIMARY KEY (owner_key, variant_id)
	)`,
}

const (
	selectCart = `SELECT user_id, address_id, promotion_id FROM storefront_carts WHERE owner_key = $1`

	selectCartItems = `SELECT variant_id, quantity FROM storefront_cart_items WHERE owner_key = $1 ORDER BY position`

	upsertCart = `INSERT INTO storefront_carts (owner_key, user_id, address_id, promotion_id, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (owner_key) DO UPDATE
		SET user_id = EXCLUDED.user_id,
			address_id = EXCLUDED.address_id,
			promotion_id = EXCLUDED.promotion_id,
			updated_at = now()`

	deleteCartItems = `DELETE FROM storefront_cart_items WHERE owner_key = $1`

	insertCartItem = `INSERT INTO storefront_cart_items (owner_key, position, variant_id, quantity) VALUES ($1, $2, $3, $4)`

	deleteCart = `DELETE FROM storefront_carts WHERE owner_key = $1`
)

type postgresRepository struct {
	conn   driver.PostgresPool
	tm     *driver.TransactionManager
	logger *zap.Logger
}

// NewPostgresRepository keeps carts in two tables: one row per cart and one row
// per item. A save rewrites the item rows inside a single transaction.
func NewPostgresRepository(conn driver.PostgresPool, logger *zap.Logger) Repository {
	return &postgresRepository{
		conn:   conn,
		tm:     driver.NewTransactionManager(conn, logger),
		logger: logger,
	}
}

// EnsureSchema creates the cart tables when they do not exist yet.
func EnsureSchema(ctx context.Context, conn driver.PostgresPool) error {
	for _, stmt := range schema {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create cart schema: %w", err)
		}
	}
	return nil
}

func (r *postgresRepository) Load(ctx context.Context, owner string) (*models.Cart, error) {
	c := models.NewCart()

	err := r.conn.QueryRow(ctx, selectCart, owner).Scan(&c.UserID, &c.AddressID, &c.PromotionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to load cart", zap.String("owner", owner), zap.Error(err))
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	rows, err := r.conn.Query(ctx, selectCartItems, owner)
	if err != nil {
		r.logger.Error("Failed to load cart items", zap.String("owner", owner), zap.Error(err))
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.CartItem])
	if err != nil {
		return nil, fmt.Errorf("failed to scan cart items: %w", err)
	}
	c.Items = items

	return Normalize(c), nil
}

func (r *postgresRepository) Save(ctx context.Context, owner string, cart *models.Cart) error {
	if cart == nil {
		cart = models.NewCart()
	}

	// concurrent saves of one owner retry on serialization failure
	err := r.tm.ExecuteSerializableTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsertCart, owner, cart.UserID, cart.AddressID, cart.PromotionID); err != nil {
			return fmt.Errorf("failed to upsert cart: %w", err)
		}

		if _, err := tx.Exec(ctx, deleteCartItems, owner); err != nil {
			return fmt.Errorf("failed to delete cart items: %w", err)
		}

		if len(cart.Items) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for i, item := range cart.Items {
			batch.Queue(insertCartItem, owner, i, item.VariantID, item.Quantity)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert cart items: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save cart", zap.String("owner", owner), zap.Error(err))
		return err
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, owner string) error {
	if _, err := r.conn.Exec(ctx, deleteCart, owner); err != nil {
		r.logger.Error("Failed to delete cart", zap.String("owner", owner), zap.Error(err))
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
