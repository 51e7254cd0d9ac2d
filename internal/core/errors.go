package core

import (
	"errors"
	"fmt"
)

// ErrDuplicateOpenRequest is returned by PurchaseRequestRepository.Create when
// an open (PENDING or APPROVED) request already exists for the same product.
// The auto-generation sweep treats it as "already requested, skip"; manual
// creation surfaces it as a ConflictError.
var ErrDuplicateOpenRequest = errors.New("an open purchase request already exists for this product")

// ValidationError rejects missing or invalid input before any state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports that a referenced product, supplier, or request does
// not exist.
type NotFoundError struct {
	Entity string
	Ref    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.Ref)
}

// ConflictError reports an attempted state transition that violates the
// purchase request state machine, or a duplicate open request.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// ItemError records one product's failure inside a batch operation. Batch
// operations collect these instead of aborting the whole run.
type ItemError struct {
	ProductID int    `json:"product_id"`
	Message   string `json:"message"`
}

func itemError(productID int, err error) ItemError {
	return ItemError{ProductID: productID, Message: err.Error()}
}
