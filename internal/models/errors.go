package models

import "fmt"

// ErrorCode identifies a class of domain error. Codes are stable and are
// surfaced verbatim in HTTP error bodies.
type ErrorCode string

const (
	CodeEmptyCart         ErrorCode = "EMPTY_CART"
	CodeInvalidQuantity   ErrorCode = "INVALID_QUANTITY"
	CodeProductNotFound   ErrorCode = "PRODUCT_NOT_FOUND"
	CodeInsufficientStock ErrorCode = "INSUFFICIENT_STOCK"
	CodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	CodeOrderNotFound     ErrorCode = "ORDER_NOT_FOUND"
	CodeUserNotFound      ErrorCode = "USER_NOT_FOUND"
	CodeForbidden         ErrorCode = "FORBIDDEN"
	CodeAlreadyExists     ErrorCode = "ALREADY_EXISTS"
)

// DomainError is a business-rule violation with a stable code. Infrastructure
// failures (store down, broker down) are ordinary wrapped errors, not
// DomainErrors; callers may retry those idempotently.
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

var (
	ErrEmptyCart     = NewDomainError(CodeEmptyCart, "cart contains no lines")
	ErrOrderNotFound = NewDomainError(CodeOrderNotFound, "order not found")
	ErrUserNotFound  = NewDomainError(CodeUserNotFound, "user not found")
	ErrForbidden     = NewDomainError(CodeForbidden, "actor is not permitted to perform this action")
)

// InvalidQuantityError reports a cart line whose quantity is not a positive
// integer.
type InvalidQuantityError struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for product %s", e.Quantity, e.ProductID)
}

// ProductNotFoundError reports a stale or unknown product reference.
type ProductNotFoundError struct {
	ProductID string `json:"product_id"`
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// StockShortfall describes one product that could not cover its requested
// quantity.
type StockShortfall struct {
	ProductID string `json:"product_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// InsufficientStockError is returned when at least one cart line exceeds the
// available stock. The whole placement is rejected; Shortfalls names every
// offending product.
type InsufficientStockError struct {
	Shortfalls []StockShortfall `json:"shortfalls"`
}

func (e *InsufficientStockError) Error() string {
	if len(e.Shortfalls) == 1 {
		s := e.Shortfalls[0]
		return fmt.Sprintf("insufficient stock for product %s (requested: %d, available: %d)",
			s.ProductID, s.Requested, s.Available)
	}
	return fmt.Sprintf("insufficient stock for %d products", len(e.Shortfalls))
}

// InvalidTransitionError reports a disallowed order status change.
type InvalidTransitionError struct {
	OrderID string      `json:"order_id"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %s cannot transition from %s to %s", e.OrderID, e.From, e.To)
}
