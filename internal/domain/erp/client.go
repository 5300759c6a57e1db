package erp

import (
	"context"
	"errors"
)

var (
	// ErrCustomerNoRequired is returned by CreateCustomer when the caller has
	// not allocated a customer number first. The client never allocates on the
	// caller's behalf: the next-number operations advance server state
	// irreversibly, so the decision to allocate belongs to the synchronizer.
	ErrCustomerNoRequired = errors.New("erp: customer number must be allocated before create")
	// ErrSalesOrderNoRequired is the sales order counterpart of
	// ErrCustomerNoRequired
	ErrSalesOrderNoRequired = errors.New("erp: sales order number must be allocated before create")
)

// Client is the port to the remote ERP's web services. Every operation maps
// 1:1 to a remote procedure call carrying an implicit logon credential and
// company code, blocks until response or fault, and returns a *Fault error
// on failure.
//
// Implementations hold one lazily-created session per instance; they are not
// pooled or shared across synchronizer instances.
type Client interface {
	// GetCustomer returns the customer identified by the composite key.
	// When unpackUDF is true, decoded user-defined fields are merged into
	// CustomFields and the raw field container is dropped from the result.
	// Fails with a NOT_FOUND fault if the key does not exist.
	GetCustomer(ctx context.Context, divisionNo, customerNo string, unpackUDF bool) (*Customer, error)

	// NextCustomerNo allocates the next available customer number.
	// Side-effecting: the server-side counter advances regardless of whether
	// the number is subsequently used, so call at most once per logical
	// new-customer decision. Gaps are expected and acceptable; uniqueness
	// across concurrent clients is guaranteed by the server.
	NextCustomerNo(ctx context.Context) (string, error)

	// CreateCustomer creates the customer record. CustomerNo must already be
	// populated (see NextCustomerNo); staged CustomFields are packed into the
	// wire format before sending. A fault carries the CustomerNo that was set
	// on the input so callers can recover it.
	CreateCustomer(ctx context.Context, customer *Customer) (*Customer, error)

	// UpdateCustomer submits a whole-record update. Per the remote contract
	// the existing record is fetched first (without UDF unpacking) and the
	// new record is field-merged onto it client-side. A fault carries the
	// CustomerNo for diagnostics.
	UpdateCustomer(ctx context.Context, customer *Customer) (*Customer, error)

	// DeleteCustomer deletes the customer identified by the composite key
	DeleteCustomer(ctx context.Context, divisionNo, customerNo string) error

	// GetSalesOrder returns the sales order; symmetric to GetCustomer
	GetSalesOrder(ctx context.Context, salesOrderNo string, unpackUDF bool) (*SalesOrder, error)

	// NextSalesOrderNo allocates the next available sales order number.
	// Same irreversible-allocation semantics as NextCustomerNo.
	NextSalesOrderNo(ctx context.Context) (string, error)

	// CreateSalesOrder creates the sales order and returns its order number.
	// Staged CustomFields are packed before sending. A fault carries the
	// SalesOrderNo that was set on the input.
	CreateSalesOrder(ctx context.Context, order *SalesOrder) (string, error)

	// UpdateSalesOrder submits a whole-record update of the identified order.
	// The existing order is fetched first and the patch merged onto it.
	UpdateSalesOrder(ctx context.Context, salesOrderNo string, patch *SalesOrder) error

	// DeleteSalesOrder deletes the sales order
	DeleteSalesOrder(ctx context.Context, salesOrderNo string) error
}

// PostalCodeRegistrar is the narrow recovery port used when an export fails
// on a postal code the remote system does not know. Its endpoint is optional:
// when none is configured RegisterPostalCode returns (false, nil), which
// callers must treat as "remediation unavailable" rather than "remediation
// attempted and failed".
type PostalCodeRegistrar interface {
	RegisterPostalCode(ctx context.Context, code, city, region, country string) (bool, error)
}
