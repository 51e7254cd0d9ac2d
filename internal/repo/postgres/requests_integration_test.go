package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"procurement-engine/internal/core"
	"procurement-engine/internal/repo/postgres"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Clean and seed test DB. Assumes migrations have been applied.
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE purchase_orders, purchase_requests, sales_history, demand_predictions,
		               delivery_ratings, supplier_offers, stock_positions, suppliers, products CASCADE;

		INSERT INTO products (id, name, sku) VALUES
		(1, 'Cement 50kg', 'CEM-50'),
		(2, 'Rebar 12mm', 'RBR-12');

		INSERT INTO suppliers (id, name, is_preferred, average_rating) VALUES
		(1, 'BuildSupply', true, 4.5),
		(2, 'CheapCo', false, 3.0);

		INSERT INTO stock_positions (product_id, on_hand, reserved, min_stock, max_stock, reorder_point) VALUES
		(1, 5, 0, 20, 200, 50),
		(2, 90, 0, 10, 120, 40);

		INSERT INTO supplier_offers (supplier_id, product_id, unit_price, lead_time_days, min_order_qty) VALUES
		(1, 1, 100.00, 3, 0),
		(2, 1, 80.00, 14, 0);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func TestPurchaseRequest_OpenUniqueness(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	repo := postgres.NewPurchaseRequestRepository(pool)

	first, err := repo.Create(ctx, &core.PurchaseRequest{
		ProductID:    1,
		RequestedQty: 100,
		Priority:     core.UrgencyCritical,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Status != core.StatusPending {
		t.Errorf("expected PENDING, got %s", first.Status)
	}
	if first.ProductName != "Cement 50kg" {
		t.Errorf("expected product name joined in, got %q", first.ProductName)
	}

	t.Run("SecondOpenRequest_Fails", func(t *testing.T) {
		_, err := repo.Create(ctx, &core.PurchaseRequest{
			ProductID:    1,
			RequestedQty: 50,
			Priority:     core.UrgencyHigh,
		})
		if !errors.Is(err, core.ErrDuplicateOpenRequest) {
			t.Errorf("expected ErrDuplicateOpenRequest, got %v", err)
		}
	})

	t.Run("RejectedRequest_FreesTheSlot", func(t *testing.T) {
		if _, err := repo.Transition(ctx, first.ID, core.StatusPending, core.StatusRejected, nil); err != nil {
			t.Fatalf("Transition: %v", err)
		}
		if _, err := repo.Create(ctx, &core.PurchaseRequest{
			ProductID:    1,
			RequestedQty: 50,
			Priority:     core.UrgencyHigh,
		}); err != nil {
			t.Errorf("expected a new request after rejection, got %v", err)
		}
	})
}

func TestPurchaseRequest_TransitionConflicts(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	repo := postgres.NewPurchaseRequestRepository(pool)

	req, err := repo.Create(ctx, &core.PurchaseRequest{
		ProductID:    1,
		RequestedQty: 100,
		Priority:     core.UrgencyCritical,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	approver := "mgr1"
	approved, err := repo.Transition(ctx, req.ID, core.StatusPending, core.StatusApproved, &approver)
	if err != nil {
		t.Fatalf("Transition to APPROVED: %v", err)
	}
	if approved.ApprovedBy == nil || *approved.ApprovedBy != "mgr1" {
		t.Errorf("expected approved_by mgr1, got %v", approved.ApprovedBy)
	}
	if approved.ApprovedAt == nil {
		t.Error("expected approved_at to be set")
	}

	t.Run("SecondApproval_Conflicts", func(t *testing.T) {
		other := "mgr2"
		_, err := repo.Transition(ctx, req.ID, core.StatusPending, core.StatusApproved, &other)
		if !core.IsConflict(err) {
			t.Errorf("expected conflict, got %v", err)
		}
		current, err := repo.Get(ctx, req.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if *current.ApprovedBy != "mgr1" {
			t.Errorf("conflicting approval mutated approved_by: %s", *current.ApprovedBy)
		}
	})

	t.Run("MissingRequest_NotFound", func(t *testing.T) {
		_, err := repo.Transition(ctx, 99999, core.StatusPending, core.StatusApproved, &approver)
		if !core.IsNotFound(err) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestPurchaseRequest_ConvertToOrder(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	repo := postgres.NewPurchaseRequestRepository(pool)
	orders := postgres.NewPurchaseOrderRepository(pool)

	supplierID := 1
	req, err := repo.Create(ctx, &core.PurchaseRequest{
		ProductID:    1,
		RequestedQty: 100,
		SupplierID:   &supplierID,
		Priority:     core.UrgencyCritical,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	approver := "mgr1"
	if _, err := repo.Transition(ctx, req.ID, core.StatusPending, core.StatusApproved, &approver); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	unitPrice := decimal.NewFromInt(100)
	order := core.PurchaseOrder{
		RequestID:  req.ID,
		ProductID:  1,
		SupplierID: 1,
		Quantity:   100,
		UnitPrice:  unitPrice,
		TotalCost:  unitPrice.Mul(decimal.NewFromInt(100)),
		CreatedBy:  "mgr1",
	}

	created, err := repo.ConvertToOrder(ctx, req.ID, order)
	if err != nil {
		t.Fatalf("ConvertToOrder: %v", err)
	}
	if created.OrderNumber == "" {
		t.Error("expected an order number")
	}
	if created.SupplierName != "BuildSupply" {
		t.Errorf("expected supplier name joined in, got %q", created.SupplierName)
	}

	t.Run("SecondConversion_Conflicts", func(t *testing.T) {
		_, err := repo.ConvertToOrder(ctx, req.ID, order)
		if !core.IsConflict(err) {
			t.Errorf("expected conflict, got %v", err)
		}
		all, err := orders.ListByRequest(ctx, req.ID)
		if err != nil {
			t.Fatalf("ListByRequest: %v", err)
		}
		if len(all) != 1 {
			t.Errorf("expected exactly one order, got %d", len(all))
		}
	})

	t.Run("RequestMarkedConverted", func(t *testing.T) {
		current, err := repo.Get(ctx, req.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if current.Status != core.StatusConverted {
			t.Errorf("expected CONVERTED, got %s", current.Status)
		}
	})
}

func TestStockRepository_RoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	repo := postgres.NewStockRepository(pool)

	positions, err := repo.ListPositions(ctx)
	if err != nil {
		t.Fatalf("ListPositions: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(positions))
	}

	if err := repo.UpdateThresholds(ctx, 1, 39, 78); err != nil {
		t.Fatalf("UpdateThresholds: %v", err)
	}
	pos, err := repo.GetPosition(ctx, 1)
	if err != nil {
		t.Fatalf("GetPosition: %v", err)
	}
	if pos.ReorderPoint != 39 || pos.MaxStock != 78 {
		t.Errorf("thresholds not persisted: %+v", pos)
	}

	t.Run("MissingProduct_NotFound", func(t *testing.T) {
		if _, err := repo.GetPosition(ctx, 99999); !core.IsNotFound(err) {
			t.Errorf("expected not found, got %v", err)
		}
		if err := repo.UpdateThresholds(ctx, 99999, 1, 2); !core.IsNotFound(err) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestSupplierOfferRepository_ListActiveByProduct(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	repo := postgres.NewSupplierOfferRepository(pool)

	offers, err := repo.ListActiveByProduct(ctx, 1)
	if err != nil {
		t.Fatalf("ListActiveByProduct: %v", err)
	}
	if len(offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(offers))
	}
	if offers[0].SupplierName != "BuildSupply" || !offers[0].IsPreferred {
		t.Errorf("supplier fields not joined in: %+v", offers[0])
	}
	if !offers[1].UnitPrice.Equal(decimal.NewFromInt(80)) {
		t.Errorf("expected unit price 80, got %s", offers[1].UnitPrice)
	}

	// Product 2 has no offers.
	none, err := repo.ListActiveByProduct(ctx, 2)
	if err != nil {
		t.Fatalf("ListActiveByProduct: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no offers for product 2, got %d", len(none))
	}
}
