package erp

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Fault Classification
// ---------------------------------------------------------------------------

// FaultClass categorizes a failure raised by the remote ERP or by local state
type FaultClass string

const (
	// FaultTransport indicates connectivity problems, an unreachable endpoint,
	// or a malformed WSDL/envelope
	FaultTransport FaultClass = "TRANSPORT"
	// FaultAuth indicates the logon credential was rejected
	FaultAuth FaultClass = "AUTH"
	// FaultValidation indicates remote-side field validation failed.
	// The remediable postcode fault is a subtype of this class.
	FaultValidation FaultClass = "VALIDATION"
	// FaultNotFound indicates the customer or sales order key does not exist
	FaultNotFound FaultClass = "NOT_FOUND"
	// FaultConfiguration indicates a required endpoint is not configured
	FaultConfiguration FaultClass = "CONFIGURATION"
	// FaultLocalState indicates the linkage store is in an inconsistent state,
	// e.g. the exported flag is set but no sales order number is recorded
	FaultLocalState FaultClass = "LOCAL_STATE"
)

// IsValid returns true if the fault class is valid
func (c FaultClass) IsValid() bool {
	switch c {
	case FaultTransport, FaultAuth, FaultValidation, FaultNotFound,
		FaultConfiguration, FaultLocalState:
		return true
	default:
		return false
	}
}

// String returns the string representation of FaultClass
func (c FaultClass) String() string {
	return string(c)
}

// ---------------------------------------------------------------------------
// Fault
// ---------------------------------------------------------------------------

// Fault is a structured error describing a failed remote operation.
//
// Number allocation on the server is irreversible, so when a create call
// fails the identifiers that were already set on the outgoing record are
// carried on the fault. Callers recover them to retry without allocating
// fresh numbers.
type Fault struct {
	// Class is the failure category
	Class FaultClass
	// Code is the remote fault code, e.g. "a:CI_NOF"
	Code string
	// Message is the remote fault message text
	Message string
	// CustomerNo is the customer number set on the failed request, if any
	CustomerNo string
	// SalesOrderNo is the sales order number set on the failed request, if any
	SalesOrderNo string
	// Err is the underlying cause, if any
	Err error
}

// Error implements the error interface
func (f *Fault) Error() string {
	if f.Code != "" {
		return fmt.Sprintf("erp: %s fault %s: %s", f.Class, f.Code, f.Message)
	}
	return fmt.Sprintf("erp: %s fault: %s", f.Class, f.Message)
}

// Unwrap returns the underlying cause
func (f *Fault) Unwrap() error {
	return f.Err
}

// NewFault creates a fault with the given class, code and message
func NewFault(class FaultClass, code, message string) *Fault {
	return &Fault{Class: class, Code: code, Message: message}
}

// AsFault extracts a *Fault from an error chain
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
