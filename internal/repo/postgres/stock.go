package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"procurement-engine/internal/core"
)

// StockRepository reads stock positions from PostgreSQL and writes recomputed
// thresholds back.
type StockRepository struct {
	pool *pgxpool.Pool
}

var _ core.StockRepository = (*StockRepository)(nil)

// NewStockRepository constructs a StockRepository backed by PostgreSQL.
func NewStockRepository(pool *pgxpool.Pool) *StockRepository {
	return &StockRepository{pool: pool}
}

const stockSelect = `
	SELECT p.id, p.name, s.on_hand, s.reserved, s.on_hand - s.reserved,
	       s.min_stock, s.max_stock, s.reorder_point
	FROM stock_positions s
	JOIN products p ON p.id = s.product_id`

func (r *StockRepository) GetPosition(ctx context.Context, productID int) (*core.StockPosition, error) {
	var pos core.StockPosition
	err := r.pool.QueryRow(ctx, stockSelect+` WHERE p.id = $1 AND p.is_active = true`, productID).Scan(
		&pos.ProductID, &pos.ProductName, &pos.OnHand, &pos.Reserved, &pos.Available,
		&pos.MinStock, &pos.MaxStock, &pos.ReorderPoint,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &core.NotFoundError{Entity: "product", Ref: productID}
	}
	if err != nil {
		return nil, fmt.Errorf("get stock position for product %d: %w", productID, err)
	}
	return &pos, nil
}

func (r *StockRepository) ListPositions(ctx context.Context) ([]core.StockPosition, error) {
	rows, err := r.pool.Query(ctx, stockSelect+` WHERE p.is_active = true ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("list stock positions: %w", err)
	}
	defer rows.Close()

	var positions []core.StockPosition
	for rows.Next() {
		var pos core.StockPosition
		if err := rows.Scan(
			&pos.ProductID, &pos.ProductName, &pos.OnHand, &pos.Reserved, &pos.Available,
			&pos.MinStock, &pos.MaxStock, &pos.ReorderPoint,
		); err != nil {
			return nil, fmt.Errorf("scan stock position: %w", err)
		}
		positions = append(positions, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock positions: %w", err)
	}
	return positions, nil
}

func (r *StockRepository) UpdateThresholds(ctx context.Context, productID, reorderPoint, maxStock int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE stock_positions
		SET reorder_point = $2, max_stock = $3, updated_at = now()
		WHERE product_id = $1`,
		productID, reorderPoint, maxStock,
	)
	if err != nil {
		return fmt.Errorf("update thresholds for product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return &core.NotFoundError{Entity: "stock position", Ref: productID}
	}
	return nil
}
