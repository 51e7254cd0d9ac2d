package app

// CreateRequestInput is the input for creating a purchase request manually.
type CreateRequestInput struct {
	ProductID    int
	RequestedQty int
	SupplierID   *int // nil = let conversion pick the best-scored supplier
	Notes        string
}
