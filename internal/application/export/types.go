package export

import (
	"context"
	"fmt"

	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/domain/commerce"
	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/domain/erp"
)

// MessageSink accumulates operator-facing diagnostic messages across export
// runs so they survive until the next display opportunity
type MessageSink interface {
	// Append buffers the messages
	Append(ctx context.Context, messages ...string) error

	// Drain returns all buffered messages and clears the buffer
	Drain(ctx context.Context) ([]string, error)
}

// Metrics counts export outcomes. Implementations must be safe for a nil
// receiver check; the exporter treats a nil Metrics as a no-op.
type Metrics interface {
	OrderExported(ctx context.Context)
	OrderFailed(ctx context.Context)
}

// Failure is one order's terminal export failure
type Failure struct {
	OrderID int64
	// Code and Message come from the remote fault when one was raised
	Code    string
	Message string
	// CustomerNo and SalesOrderNo are the best-known remote identifiers at
	// the time of failure, empty when unknown
	CustomerNo   string
	SalesOrderNo string
}

// String returns the operator-facing failure line
func (f Failure) String() string {
	line := fmt.Sprintf("Order %d failed to export", f.OrderID)
	if f.Code != "" {
		line += fmt.Sprintf(": %s (%s)", f.Message, f.Code)
	} else if f.Message != "" {
		line += ": " + f.Message
	}
	if f.CustomerNo != "" {
		line += fmt.Sprintf(" [customer %s]", f.CustomerNo)
	}
	if f.SalesOrderNo != "" {
		line += fmt.Sprintf(" [sales order %s]", f.SalesOrderNo)
	}
	return line
}

// Result is the aggregate outcome of one export batch. Succeeded+Failed
// always equals the number of order ids passed in.
type Result struct {
	// BatchID identifies the run in logs and buffered messages
	BatchID   string
	Succeeded int
	Failed    int
	Failures  []Failure
	// Messages are the aggregate summary lines surfaced to the operator
	Messages []string
}

// Hooks are the deployment extension points. Each hook mutates the payload
// in place before submission; nil hooks are skipped.
type Hooks struct {
	// TransformLineItem runs for each translated line before the order is
	// submitted
	TransformLineItem func(line *erp.SalesOrderLine, item commerce.LineItem, order *commerce.Order)
	// TransformSalesOrder runs on the assembled sales order payload
	TransformSalesOrder func(so *erp.SalesOrder, order *commerce.Order)
	// TransformCustomer runs on the assembled customer payload
	TransformCustomer func(c *erp.Customer, order *commerce.Order)
}

// Defaults are the remote-side values stamped onto payloads when the source
// data carries none
type Defaults struct {
	DivisionNo            string
	SalespersonNo         string
	SalespersonDivisionNo string
	PriceLevel            string
}

// Options configures an Exporter beyond its injected dependencies
type Options struct {
	Defaults Defaults
	// TestMode permits the destructive Unexport path
	TestMode bool
	// RestrictStatuses, when non-empty, limits exports to orders in the
	// listed statuses
	RestrictStatuses []commerce.OrderStatus
	Hooks            Hooks
	Metrics          Metrics
}
