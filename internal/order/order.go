package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("order not found")

// Type is how the order reaches the customer.
type Type string

const (
	TypeDineIn   Type = "DINE_IN"
	TypeTakeaway Type = "TAKEAWAY"
	TypeDelivery Type = "DELIVERY"
)

// Status is the order lifecycle state as owned by the order subsystem.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusClosed    Status = "CLOSED"
	StatusCancelled Status = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "UNPAID"
	PaymentPaid   PaymentStatus = "PAID"
)

// Order is a read-only view of an order record.
type Order struct {
	ID               uuid.UUID
	RestaurantID     uuid.UUID
	OrderNumber      string
	Type             Type
	Status           Status
	PaymentStatus    PaymentStatus
	Subtotal         decimal.Decimal
	Tax              decimal.Decimal
	ServiceCharge    decimal.Decimal
	DeliveryFee      decimal.Decimal
	Discount         decimal.Decimal
	Total            decimal.Decimal
	AssignedDriverID *uuid.UUID
	RiderShiftID     *uuid.UUID
	LastActionBy     uuid.UUID
	CreatedAt        time.Time
	ClosedAt         *time.Time
	Items            []Item    // Loaded for reports
	Payments         []Payment // Loaded for reports
}

// Item is a single order line.
type Item struct {
	Name      string
	Category  string
	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// Payment is one tender applied to an order (cash, card, ...).
type Payment struct {
	Method string
	Amount decimal.Decimal
}

// IsDeliveredAndPaid reports whether the order counts towards a rider's collected cash.
func (o *Order) IsDeliveredAndPaid() bool {
	return o.Status == StatusClosed && o.PaymentStatus == PaymentPaid
}

// RiderID returns the driver responsible for collecting the order's cash, if any.
func (o *Order) RiderID() *uuid.UUID {
	if o.Type != TypeDelivery {
		return nil
	}

	return o.AssignedDriverID
}
