package commerce

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrOrderNotFound indicates the order id does not exist in the local store
	ErrOrderNotFound = errors.New("commerce: order not found")
	// ErrAccountNotFound indicates the account id does not exist in the local store
	ErrAccountNotFound = errors.New("commerce: account not found")
)

// Address is a billing or shipping address on a local order
type Address struct {
	FirstName string
	LastName  string
	Company   string
	Address1  string
	Address2  string
	City      string
	// State is the region/province code
	State string
	// PostCode is the postal code
	PostCode string
	// Country is the two-letter country code
	Country string
	Email   string
	Phone   string
}

// Name returns the full recipient name
func (a Address) Name() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	default:
		return a.FirstName + " " + a.LastName
	}
}

// LineItem is a single purchased item on a local order
type LineItem struct {
	// SKU is the stock keeping unit of the purchased product
	SKU string
	// Name is the product name at purchase time
	Name string
	// Quantity is the purchased quantity
	Quantity decimal.Decimal
	// Total is the line total paid
	Total decimal.Decimal
}

// OrderStatus is the local workflow status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusOnHold     OrderStatus = "on-hold"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
	OrderStatusFailed     OrderStatus = "failed"
)

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// Order is a local commerce order. It is created by the surrounding commerce
// system and never deleted by the connector; the connector only touches its
// linkage record and appends audit notes.
type Order struct {
	// ID is the local order identifier
	ID int64
	// AccountID is the owning account, nil for guest purchases
	AccountID *int64
	// Status is the local order status
	Status OrderStatus
	// Billing and Shipping are the addresses captured at checkout
	Billing  Address
	Shipping Address
	// Items are the purchased line items
	Items []LineItem
	// Total is the order total paid
	Total decimal.Decimal
	// Currency is the payment currency code
	Currency string
}

// IsGuest returns true when the order has no owning account
func (o *Order) IsGuest() bool {
	return o.AccountID == nil
}

// ShipToOrBilling returns the shipping address, falling back to billing when
// no separate shipping address was captured
func (o *Order) ShipToOrBilling() Address {
	empty := Address{}
	if o.Shipping == empty {
		return o.Billing
	}
	return o.Shipping
}
