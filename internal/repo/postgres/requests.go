package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"procurement-engine/internal/core"
)

// PurchaseRequestRepository persists purchase requests. The state machine's
// invariants live in the schema: a partial unique index keeps at most one open
// request per product, and every transition is a conditional UPDATE so racing
// callers get exactly one winner.
type PurchaseRequestRepository struct {
	pool *pgxpool.Pool
}

var _ core.PurchaseRequestRepository = (*PurchaseRequestRepository)(nil)

// NewPurchaseRequestRepository constructs a PurchaseRequestRepository backed
// by PostgreSQL.
func NewPurchaseRequestRepository(pool *pgxpool.Pool) *PurchaseRequestRepository {
	return &PurchaseRequestRepository{pool: pool}
}

const requestSelect = `
	SELECT r.id, r.product_id, p.name, r.requested_qty, r.supplier_id, s.name,
	       r.priority, r.status, r.approved_by, r.notes, r.created_at, r.approved_at
	FROM purchase_requests r
	JOIN products p ON p.id = r.product_id
	LEFT JOIN suppliers s ON s.id = r.supplier_id`

func scanRequest(row pgx.Row) (*core.PurchaseRequest, error) {
	var req core.PurchaseRequest
	err := row.Scan(
		&req.ID, &req.ProductID, &req.ProductName, &req.RequestedQty,
		&req.SupplierID, &req.SupplierName, &req.Priority, &req.Status,
		&req.ApprovedBy, &req.Notes, &req.CreatedAt, &req.ApprovedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *PurchaseRequestRepository) Create(ctx context.Context, req *core.PurchaseRequest) (*core.PurchaseRequest, error) {
	var id int
	err := r.pool.QueryRow(ctx, `
		INSERT INTO purchase_requests (product_id, requested_qty, supplier_id, priority, status, notes)
		VALUES ($1, $2, $3, $4, 'PENDING', $5)
		RETURNING id`,
		req.ProductID, req.RequestedQty, req.SupplierID, req.Priority, req.Notes,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, core.ErrDuplicateOpenRequest
		}
		return nil, fmt.Errorf("insert purchase request: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *PurchaseRequestRepository) Get(ctx context.Context, id int) (*core.PurchaseRequest, error) {
	req, err := scanRequest(r.pool.QueryRow(ctx, requestSelect+` WHERE r.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &core.NotFoundError{Entity: "purchase request", Ref: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get purchase request %d: %w", id, err)
	}
	return req, nil
}

func (r *PurchaseRequestRepository) List(ctx context.Context, status *core.RequestStatus) ([]core.PurchaseRequest, error) {
	query := requestSelect
	var args []any
	if status != nil {
		query += ` WHERE r.status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY r.created_at DESC, r.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase requests: %w", err)
	}
	defer rows.Close()

	var requests []core.PurchaseRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase request: %w", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase requests: %w", err)
	}
	return requests, nil
}

func (r *PurchaseRequestRepository) Transition(ctx context.Context, id int, from, to core.RequestStatus, approvedBy *string) (*core.PurchaseRequest, error) {
	var query string
	args := []any{id, from, to}
	if to == core.StatusApproved {
		query = `UPDATE purchase_requests
		         SET status = $3, approved_by = $4, approved_at = now()
		         WHERE id = $1 AND status = $2`
		args = append(args, approvedBy)
	} else {
		query = `UPDATE purchase_requests SET status = $3 WHERE id = $1 AND status = $2`
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("transition purchase request %d to %s: %w", id, to, err)
	}
	if tag.RowsAffected() == 0 {
		// Zero rows: either the request does not exist or another caller
		// changed its status first. A follow-up read tells them apart.
		current, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &core.ConflictError{Reason: fmt.Sprintf("purchase request %d is %s, expected %s", id, current.Status, from)}
	}
	return r.Get(ctx, id)
}

func (r *PurchaseRequestRepository) ConvertToOrder(ctx context.Context, requestID int, order core.PurchaseOrder) (*core.PurchaseOrder, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE purchase_requests SET status = 'CONVERTED'
		WHERE id = $1 AND status = 'APPROVED'`,
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("mark purchase request %d converted: %w", requestID, err)
	}
	if tag.RowsAffected() == 0 {
		var status core.RequestStatus
		err := tx.QueryRow(ctx, `SELECT status FROM purchase_requests WHERE id = $1`, requestID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &core.NotFoundError{Entity: "purchase request", Ref: requestID}
		}
		if err != nil {
			return nil, fmt.Errorf("read purchase request %d: %w", requestID, err)
		}
		return nil, &core.ConflictError{Reason: fmt.Sprintf("purchase request %d is %s, expected %s", requestID, status, core.StatusApproved)}
	}

	var orderID int
	if err := tx.QueryRow(ctx, `
		INSERT INTO purchase_orders (request_id, product_id, supplier_id, quantity,
		                             unit_price, total_cost, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		requestID, order.ProductID, order.SupplierID, order.Quantity,
		order.UnitPrice, order.TotalCost, order.CreatedBy,
	).Scan(&orderID); err != nil {
		return nil, fmt.Errorf("insert purchase order: %w", err)
	}

	// The order number derives from the ID, so it is assigned after the insert.
	if _, err := tx.Exec(ctx, `
		UPDATE purchase_orders SET order_number = 'PO-' || lpad($1::text, 6, '0')
		WHERE id = $1`,
		orderID,
	); err != nil {
		return nil, fmt.Errorf("assign order number: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit conversion: %w", err)
	}

	orders := &PurchaseOrderRepository{pool: r.pool}
	return orders.Get(ctx, orderID)
}

// PurchaseOrderRepository reads purchase orders created by conversion.
type PurchaseOrderRepository struct {
	pool *pgxpool.Pool
}

var _ core.PurchaseOrderRepository = (*PurchaseOrderRepository)(nil)

// NewPurchaseOrderRepository constructs a PurchaseOrderRepository backed by
// PostgreSQL.
func NewPurchaseOrderRepository(pool *pgxpool.Pool) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{pool: pool}
}

const orderSelect = `
	SELECT o.id, o.order_number, o.request_id, o.product_id, p.name,
	       o.supplier_id, s.name, o.quantity, o.unit_price, o.total_cost,
	       o.created_by, o.created_at
	FROM purchase_orders o
	JOIN products p ON p.id = o.product_id
	JOIN suppliers s ON s.id = o.supplier_id`

func scanOrder(row pgx.Row) (*core.PurchaseOrder, error) {
	var o core.PurchaseOrder
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.RequestID, &o.ProductID, &o.ProductName,
		&o.SupplierID, &o.SupplierName, &o.Quantity, &o.UnitPrice, &o.TotalCost,
		&o.CreatedBy, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PurchaseOrderRepository) Get(ctx context.Context, id int) (*core.PurchaseOrder, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, orderSelect+` WHERE o.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &core.NotFoundError{Entity: "purchase order", Ref: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get purchase order %d: %w", id, err)
	}
	return order, nil
}

func (r *PurchaseOrderRepository) ListByRequest(ctx context.Context, requestID int) ([]core.PurchaseOrder, error) {
	rows, err := r.pool.Query(ctx, orderSelect+` WHERE o.request_id = $1 ORDER BY o.id`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders for request %d: %w", requestID, err)
	}
	defer rows.Close()

	var orders []core.PurchaseOrder
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase orders: %w", err)
	}
	return orders, nil
}
