package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"chainwatch/internal/domain"
	"chainwatch/internal/storage"
)

// OrderStore implements storage.OrderStore using PostgreSQL.
type OrderStore struct {
	pool *Pool
}

// NewOrderStore creates a new OrderStore.
func NewOrderStore(pool *Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// Compile-time interface check.
var _ storage.OrderStore = (*OrderStore)(nil)

// Insert adds a new order. Returns ErrDuplicateKey if order_id exists.
func (s *OrderStore) Insert(ctx context.Context, o *domain.TradeOrder) error {
	query := `
		INSERT INTO trade_orders (
			order_id, user_id, chain, token, channel_id, status, error, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		o.OrderID,
		o.UserID,
		string(o.Chain),
		o.Token,
		o.ChannelID,
		o.Status,
		o.Error,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID retrieves an order by its ID. Returns ErrNotFound if not exists.
func (s *OrderStore) GetByID(ctx context.Context, orderID string) (*domain.TradeOrder, error) {
	query := `
		SELECT order_id, user_id, chain, token, channel_id, status, error, created_at, updated_at
		FROM trade_orders
		WHERE order_id = $1
	`

	row := s.pool.QueryRow(ctx, query, orderID)
	o, err := scanOrder(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return o, nil
}

// GetByUser retrieves up to limit orders of a user, newest first.
func (s *OrderStore) GetByUser(ctx context.Context, userID int64, limit int) ([]*domain.TradeOrder, error) {
	query := `
		SELECT order_id, user_id, chain, token, channel_id, status, error, created_at, updated_at
		FROM trade_orders
		WHERE user_id = $1
		ORDER BY created_at DESC, order_id DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("get orders by user: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

// UpdateStatus transitions an order and records the failure detail.
// Returns ErrNotFound if not exists.
func (s *OrderStore) UpdateStatus(ctx context.Context, orderID, status, errMsg string, updatedAt int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE trade_orders SET status = $2, error = $3, updated_at = $4 WHERE order_id = $1`,
		orderID, status, errMsg, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanOrder scans a single row into a TradeOrder.
func scanOrder(row pgx.Row) (*domain.TradeOrder, error) {
	var o domain.TradeOrder
	var chainStr string

	err := row.Scan(
		&o.OrderID,
		&o.UserID,
		&chainStr,
		&o.Token,
		&o.ChannelID,
		&o.Status,
		&o.Error,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Chain = domain.Chain(chainStr)
	return &o, nil
}

// scanOrders scans multiple rows into a slice of TradeOrder.
func scanOrders(rows pgx.Rows) ([]*domain.TradeOrder, error) {
	var orders []*domain.TradeOrder

	for rows.Next() {
		var o domain.TradeOrder
		var chainStr string

		err := rows.Scan(
			&o.OrderID,
			&o.UserID,
			&chainStr,
			&o.Token,
			&o.ChannelID,
			&o.Status,
			&o.Error,
			&o.CreatedAt,
			&o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}

		o.Chain = domain.Chain(chainStr)
		orders = append(orders, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}
