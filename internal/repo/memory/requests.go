package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"procurement-engine/internal/core"
)

// PurchaseRequestRepository is an in-memory core.PurchaseRequestRepository.
// It enforces the same invariants the PostgreSQL implementation gets from the
// database: a partial-unique "one open request per product" constraint and
// compare-and-swap status transitions, all under one mutex so concurrent
// callers see exactly-one-winner semantics.
type PurchaseRequestRepository struct {
	mu            sync.Mutex
	nextRequestID int
	nextOrderID   int
	requests      map[int]core.PurchaseRequest
	orders        map[int]core.PurchaseOrder
	productNames  map[int]string
	supplierNames map[int]string
	now           func() time.Time
}

var (
	_ core.PurchaseRequestRepository = (*PurchaseRequestRepository)(nil)
	_ core.PurchaseOrderRepository   = (*PurchaseOrderView)(nil)
)

// NewPurchaseRequestRepository returns an empty in-memory request store.
func NewPurchaseRequestRepository() *PurchaseRequestRepository {
	return &PurchaseRequestRepository{
		nextRequestID: 1,
		nextOrderID:   1,
		requests:      make(map[int]core.PurchaseRequest),
		orders:        make(map[int]core.PurchaseOrder),
		productNames:  make(map[int]string),
		supplierNames: make(map[int]string),
		now:           time.Now,
	}
}

// RegisterProduct teaches the repository a product display name, standing in
// for the join the SQL implementation performs.
func (r *PurchaseRequestRepository) RegisterProduct(id int, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.productNames[id] = name
}

// RegisterSupplier teaches the repository a supplier display name.
func (r *PurchaseRequestRepository) RegisterSupplier(id int, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.supplierNames[id] = name
}

func (r *PurchaseRequestRepository) Create(_ context.Context, req *core.PurchaseRequest) (*core.PurchaseRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.requests {
		if existing.ProductID == req.ProductID &&
			(existing.Status == core.StatusPending || existing.Status == core.StatusApproved) {
			return nil, core.ErrDuplicateOpenRequest
		}
	}

	stored := *req
	stored.ID = r.nextRequestID
	r.nextRequestID++
	stored.Status = core.StatusPending
	stored.CreatedAt = r.now()
	r.enrich(&stored)
	r.requests[stored.ID] = stored

	out := stored
	return &out, nil
}

func (r *PurchaseRequestRepository) Get(_ context.Context, id int) (*core.PurchaseRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, &core.NotFoundError{Entity: "purchase request", Ref: id}
	}
	out := req
	return &out, nil
}

func (r *PurchaseRequestRepository) List(_ context.Context, status *core.RequestStatus) ([]core.PurchaseRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []core.PurchaseRequest
	// Newest first: IDs are monotonically assigned.
	for id := r.nextRequestID - 1; id >= 1; id-- {
		req, ok := r.requests[id]
		if !ok {
			continue
		}
		if status != nil && req.Status != *status {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

func (r *PurchaseRequestRepository) Transition(_ context.Context, id int, from, to core.RequestStatus, approvedBy *string) (*core.PurchaseRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, &core.NotFoundError{Entity: "purchase request", Ref: id}
	}
	if req.Status != from {
		return nil, &core.ConflictError{Reason: fmt.Sprintf("purchase request %d is %s, expected %s", id, req.Status, from)}
	}

	req.Status = to
	if to == core.StatusApproved {
		req.ApprovedBy = approvedBy
		at := r.now()
		req.ApprovedAt = &at
	}
	r.requests[id] = req

	out := req
	return &out, nil
}

func (r *PurchaseRequestRepository) ConvertToOrder(_ context.Context, requestID int, order core.PurchaseOrder) (*core.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[requestID]
	if !ok {
		return nil, &core.NotFoundError{Entity: "purchase request", Ref: requestID}
	}
	if req.Status != core.StatusApproved {
		return nil, &core.ConflictError{Reason: fmt.Sprintf("purchase request %d is %s, expected %s", requestID, req.Status, core.StatusApproved)}
	}

	req.Status = core.StatusConverted
	r.requests[requestID] = req

	order.ID = r.nextOrderID
	r.nextOrderID++
	order.OrderNumber = fmt.Sprintf("PO-%06d", order.ID)
	order.CreatedAt = r.now()
	order.ProductName = r.productNames[order.ProductID]
	order.SupplierName = r.supplierNames[order.SupplierID]
	r.orders[order.ID] = order

	out := order
	return &out, nil
}

// PurchaseOrderView exposes the orders created by conversion as a
// core.PurchaseOrderRepository sharing the request repository's state.
type PurchaseOrderView struct {
	r *PurchaseRequestRepository
}

// Orders returns the read view over converted purchase orders.
func (r *PurchaseRequestRepository) Orders() *PurchaseOrderView {
	return &PurchaseOrderView{r: r}
}

func (v *PurchaseOrderView) Get(_ context.Context, id int) (*core.PurchaseOrder, error) {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()
	o, ok := v.r.orders[id]
	if !ok {
		return nil, &core.NotFoundError{Entity: "purchase order", Ref: id}
	}
	out := o
	return &out, nil
}

func (v *PurchaseOrderView) ListByRequest(_ context.Context, requestID int) ([]core.PurchaseOrder, error) {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()
	var out []core.PurchaseOrder
	for id := 1; id < v.r.nextOrderID; id++ {
		if o, ok := v.r.orders[id]; ok && o.RequestID == requestID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *PurchaseRequestRepository) enrich(req *core.PurchaseRequest) {
	req.ProductName = r.productNames[req.ProductID]
	if req.SupplierID != nil {
		if name, ok := r.supplierNames[*req.SupplierID]; ok {
			req.SupplierName = &name
		}
	}
}
