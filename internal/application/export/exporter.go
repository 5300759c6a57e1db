package export

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/domain/commerce"
	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/domain/erp"
)

// Errors for the exporter
var (
	// ErrTestModeDisabled indicates a reversal was requested outside test mode.
	// Reversal deletes remote records and is never safe in production.
	ErrTestModeDisabled = errors.New("export: unexport requires test mode")
	// ErrStatusNotExportable indicates the order's status is outside the
	// configured exportable set
	ErrStatusNotExportable = errors.New("export: order status not exportable")
)

// Remediable fault fingerprint. The server reports postcode validation
// failures under its generic validation fault code; the message text tells
// billing and shipping apart.
const (
	remediableFaultCode  = "a:CI_NOF"
	billingZipFaultText  = "could not set ar_customer_bus column zipcode"
	shippingZipFaultText = "could not set so_salesorder_bus column shiptozipcode"
)

// postalTarget selects which address of the order carries the bad postcode
type postalTarget int

const (
	postalTargetNone postalTarget = iota
	postalTargetBilling
	postalTargetShipping
)

// Exporter synchronizes local orders into the remote ERP. It is
// single-threaded by design: remote number allocation has no idempotency key,
// so remote calls within one instance never overlap.
type Exporter struct {
	client    erp.Client
	registrar erp.PostalCodeRegistrar
	orders    commerce.OrderRepository
	linkage   *commerce.LinkageStore
	sink      MessageSink
	opts      Options
	restrict  map[commerce.OrderStatus]struct{}
	logger    *zap.Logger
}

// NewExporter creates an Exporter with all dependencies injected
func NewExporter(
	client erp.Client,
	registrar erp.PostalCodeRegistrar,
	orders commerce.OrderRepository,
	linkage *commerce.LinkageStore,
	sink MessageSink,
	opts Options,
	logger *zap.Logger,
) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	var restrict map[commerce.OrderStatus]struct{}
	if len(opts.RestrictStatuses) > 0 {
		restrict = make(map[commerce.OrderStatus]struct{}, len(opts.RestrictStatuses))
		for _, status := range opts.RestrictStatuses {
			restrict[status] = struct{}{}
		}
	}
	return &Exporter{
		client:    client,
		registrar: registrar,
		orders:    orders,
		linkage:   linkage,
		sink:      sink,
		opts:      opts,
		restrict:  restrict,
		logger:    logger,
	}
}

// ---------------------------------------------------------------------------
// Batch Export
// ---------------------------------------------------------------------------

// Export exports the given orders in strict sequence. Each order's outcome is
// independent; the batch always runs to completion over its full input set.
// The returned tally satisfies Succeeded+Failed == len(orderIDs).
func (e *Exporter) Export(ctx context.Context, orderIDs []int64) *Result {
	result := &Result{BatchID: uuid.NewString()}

	e.logger.Info("export batch started",
		zap.String("batch_id", result.BatchID),
		zap.Int("orders", len(orderIDs)),
	)

	for _, id := range orderIDs {
		failure, ok := e.exportOrder(ctx, id)
		if ok {
			result.Succeeded++
			e.recordExported(ctx)
			continue
		}
		result.Failed++
		result.Failures = append(result.Failures, failure)
		e.recordFailed(ctx)
	}

	result.Messages = append(result.Messages, successMessage(result.Succeeded))
	if result.Failed > 0 {
		result.Messages = append(result.Messages, failureMessage(result.Failed))
		for _, failure := range result.Failures {
			result.Messages = append(result.Messages, failure.String())
		}
	}

	if err := e.sink.Append(ctx, result.Messages...); err != nil {
		e.logger.Warn("failed to buffer export messages", zap.Error(err))
	}

	e.logger.Info("export batch finished",
		zap.String("batch_id", result.BatchID),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
	)
	return result
}

// exportOrder loads one order and runs it through exportOne, translating any
// error into a Failure
func (e *Exporter) exportOrder(ctx context.Context, orderID int64) (Failure, bool) {
	order, err := e.orders.FindByID(ctx, orderID)
	if err != nil {
		return e.failOrder(ctx, orderID, err), false
	}

	if err := e.exportOne(ctx, order); err != nil {
		return e.failOrder(ctx, orderID, err), false
	}
	return Failure{}, true
}

// failOrder builds the Failure record and appends the audit note
func (e *Exporter) failOrder(ctx context.Context, orderID int64, err error) Failure {
	failure := Failure{OrderID: orderID, Message: err.Error()}
	if fault, ok := erp.AsFault(err); ok {
		failure.Code = fault.Code
		failure.Message = fault.Message
		failure.CustomerNo = fault.CustomerNo
		failure.SalesOrderNo = fault.SalesOrderNo
	}

	e.logger.Warn("order export failed", zap.Int64("order_id", orderID), zap.Error(err))

	if noteErr := e.orders.AddNote(ctx, orderID, failure.String()); noteErr != nil {
		e.logger.Warn("failed to record failure note",
			zap.Int64("order_id", orderID), zap.Error(noteErr))
	}
	return failure
}

// ---------------------------------------------------------------------------
// Single-Order Export
// ---------------------------------------------------------------------------

// carried holds remote numbers recovered from a fault, reused on the
// remediation retry so the irreversible server-side allocations are not lost
type carried struct {
	CustomerNo   string
	SalesOrderNo string
}

// exportOne exports a single order. A remediable postcode fault triggers at
// most one remediation-and-retry cycle; the loop is explicitly bounded rather
// than recursive.
func (e *Exporter) exportOne(ctx context.Context, order *commerce.Order) error {
	if e.restrict != nil {
		if _, ok := e.restrict[order.Status]; !ok {
			return fmt.Errorf("%w: order %d has status %q",
				ErrStatusNotExportable, order.ID, order.Status)
		}
	}

	var recovered *carried
	for attempt := 0; ; attempt++ {
		err := e.attempt(ctx, order, recovered)
		if err == nil {
			return nil
		}
		if attempt >= 1 {
			return err
		}

		fault, ok := erp.AsFault(err)
		if !ok {
			return err
		}
		target := classifyPostalFault(fault)
		if target == postalTargetNone {
			return err
		}

		addr := order.Billing
		if target == postalTargetShipping {
			addr = order.ShipToOrBilling()
		}

		registered, remErr := e.registrar.RegisterPostalCode(
			ctx, addr.PostCode, addr.City, addr.State, addr.Country)
		if remErr != nil {
			e.logger.Warn("postal code remediation failed",
				zap.Int64("order_id", order.ID),
				zap.String("post_code", addr.PostCode),
				zap.Error(remErr),
			)
			return err
		}
		if !registered {
			e.logger.Info("postal code remediation unavailable",
				zap.Int64("order_id", order.ID))
			return err
		}

		// Carry the numbers already allocated on the failed attempt forward
		// so the retry reuses them
		recovered = &carried{
			CustomerNo:   fault.CustomerNo,
			SalesOrderNo: fault.SalesOrderNo,
		}
		e.logger.Info("retrying export after postal code remediation",
			zap.Int64("order_id", order.ID),
			zap.String("customer_no", recovered.CustomerNo),
			zap.String("sales_order_no", recovered.SalesOrderNo),
		)
	}
}

// attempt performs one full export pass over the order
func (e *Exporter) attempt(ctx context.Context, order *commerce.Order, recovered *carried) error {
	link, err := e.linkage.Order(ctx, order.ID)
	if err != nil {
		return err
	}
	if link.Exported {
		// Already exported: success with no remote calls
		return nil
	}

	customer, err := e.resolveCustomer(ctx, order, recovered)
	if err != nil {
		return err
	}

	salesOrder, err := e.buildSalesOrder(ctx, order, customer, recovered)
	if err != nil {
		return err
	}

	salesOrderNo, err := e.client.CreateSalesOrder(ctx, salesOrder)
	if err != nil {
		return err
	}

	// Number first, flag second: a crash in between leaves a recoverable
	// "number known but not marked exported" state instead of a lost
	// allocation
	if err := e.linkage.SetOrderSalesOrderNo(ctx, order.ID, salesOrderNo); err != nil {
		return err
	}
	if err := e.linkage.SetOrderExported(ctx, order.ID, true); err != nil {
		return err
	}

	note := fmt.Sprintf("Order exported to Sage ERP: sales order %s, customer %s/%s",
		salesOrderNo, customer.DivisionNo, customer.CustomerNo)
	if err := e.orders.AddNote(ctx, order.ID, note); err != nil {
		e.logger.Warn("failed to record export note",
			zap.Int64("order_id", order.ID), zap.Error(err))
	}

	e.logger.Info("order exported",
		zap.Int64("order_id", order.ID),
		zap.String("sales_order_no", salesOrderNo),
		zap.String("customer_no", customer.CustomerNo),
	)
	return nil
}

// resolveCustomer determines the remote customer for the order, creating or
// updating the remote record, and persists the resulting key to the order's
// linkage (and the account's, when the order has one).
//
// Number priority: recovered override, then account linkage, then order
// linkage. Create when no number was found or an override is present; an
// override forces re-creation because it signals the prior attempt never
// completed.
func (e *Exporter) resolveCustomer(ctx context.Context, order *commerce.Order, recovered *carried) (*erp.Customer, error) {
	hasOverride := recovered != nil && recovered.CustomerNo != ""

	var customerNo, divisionNo string
	switch {
	case hasOverride:
		customerNo = recovered.CustomerNo
	case !order.IsGuest():
		link, err := e.linkage.Account(ctx, *order.AccountID)
		if err != nil {
			return nil, err
		}
		customerNo, divisionNo = link.CustomerNo, link.DivisionNo
	default:
		link, err := e.linkage.Order(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		customerNo, divisionNo = link.CustomerNo, link.DivisionNo
	}
	if divisionNo == "" {
		divisionNo = e.opts.Defaults.DivisionNo
	}

	customer := e.buildCustomer(order, divisionNo)

	if customerNo == "" || hasOverride {
		if customerNo == "" {
			allocated, err := e.client.NextCustomerNo(ctx)
			if err != nil {
				return nil, err
			}
			customerNo = allocated
		}
		customer.CustomerNo = customerNo
		if _, err := e.client.CreateCustomer(ctx, customer); err != nil {
			return nil, err
		}
	} else {
		customer.CustomerNo = customerNo
		updated, err := e.client.UpdateCustomer(ctx, customer)
		if err != nil {
			return nil, err
		}
		customer = updated
	}

	if err := e.linkage.SetOrderCustomer(ctx, order.ID, customer.CustomerNo, customer.DivisionNo); err != nil {
		return nil, err
	}
	if !order.IsGuest() {
		if err := e.linkage.SetAccountCustomer(ctx, *order.AccountID, customer.CustomerNo, customer.DivisionNo); err != nil {
			return nil, err
		}
	}
	return customer, nil
}

// buildCustomer assembles the customer payload from the order's billing
// address and the configured defaults
func (e *Exporter) buildCustomer(order *commerce.Order, divisionNo string) *erp.Customer {
	billing := order.Billing
	customer := &erp.Customer{
		DivisionNo:            divisionNo,
		CustomerName:          billing.Name(),
		AddressLine1:          billing.Address1,
		AddressLine2:          billing.Address2,
		City:                  billing.City,
		State:                 billing.State,
		ZipCode:               billing.PostCode,
		CountryCode:           billing.Country,
		EmailAddress:          billing.Email,
		TelephoneNo:           billing.Phone,
		PriceLevel:            e.opts.Defaults.PriceLevel,
		SalespersonNo:         e.opts.Defaults.SalespersonNo,
		SalespersonDivisionNo: e.opts.Defaults.SalespersonDivisionNo,
	}
	if billing.Company != "" {
		customer.CustomerName = billing.Company
	}

	if e.opts.Hooks.TransformCustomer != nil {
		e.opts.Hooks.TransformCustomer(customer, order)
	}
	return customer
}

// buildSalesOrder assembles the sales order payload, allocating a fresh order
// number only when none was carried from a remediation retry
func (e *Exporter) buildSalesOrder(ctx context.Context, order *commerce.Order, customer *erp.Customer, recovered *carried) (*erp.SalesOrder, error) {
	salesOrderNo := ""
	if recovered != nil {
		salesOrderNo = recovered.SalesOrderNo
	}
	if salesOrderNo == "" {
		allocated, err := e.client.NextSalesOrderNo(ctx)
		if err != nil {
			return nil, err
		}
		salesOrderNo = allocated
	}

	// The configured default salesperson yields to the customer's own
	salespersonNo := e.opts.Defaults.SalespersonNo
	if customer.SalespersonNo != "" {
		salespersonNo = customer.SalespersonNo
	}

	shipTo := order.ShipToOrBilling()
	salesOrder := &erp.SalesOrder{
		SalesOrderNo:  salesOrderNo,
		DivisionNo:    customer.DivisionNo,
		CustomerNo:    customer.CustomerNo,
		SalespersonNo: salespersonNo,
		ShipToName:    shipTo.Name(),
		ShipToAddress: shipTo.Address1,
		ShipToCity:    shipTo.City,
		ShipToState:   shipTo.State,
		ShipToZipCode: shipTo.PostCode,
		ShipToCountry: shipTo.Country,
	}

	for _, item := range order.Items {
		line := erp.SalesOrderLine{
			ItemCode:        item.SKU,
			QuantityOrdered: item.Quantity,
		}
		if e.opts.Hooks.TransformLineItem != nil {
			e.opts.Hooks.TransformLineItem(&line, item, order)
		}
		salesOrder.Lines = append(salesOrder.Lines, line)
	}

	if e.opts.Hooks.TransformSalesOrder != nil {
		e.opts.Hooks.TransformSalesOrder(salesOrder, order)
	}
	return salesOrder, nil
}

// ---------------------------------------------------------------------------
// Reversal
// ---------------------------------------------------------------------------

// Unexport reverses a prior export: it deletes the remote sales order, clears
// the order's linkage, and deletes the shared remote customer only when no
// sibling order of the account remains exported. Diagnostic/test use only.
func (e *Exporter) Unexport(ctx context.Context, orderID int64) error {
	if !e.opts.TestMode {
		return ErrTestModeDisabled
	}

	link, err := e.linkage.Order(ctx, orderID)
	if err != nil {
		return err
	}
	if !link.Exported {
		return nil
	}
	if link.SalesOrderNo == "" {
		return &erp.Fault{
			Class:   erp.FaultLocalState,
			Message: fmt.Sprintf("order %d marked exported without a sales order number", orderID),
			Err:     commerce.ErrLinkageInconsistent,
		}
	}

	if err := e.client.DeleteSalesOrder(ctx, link.SalesOrderNo); err != nil {
		return fmt.Errorf("failed to delete remote sales order %s: %w", link.SalesOrderNo, err)
	}
	if err := e.linkage.ClearOrder(ctx, orderID); err != nil {
		return err
	}

	e.logger.Info("order unexported",
		zap.Int64("order_id", orderID),
		zap.String("sales_order_no", link.SalesOrderNo),
	)

	order, err := e.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.IsGuest() {
		return nil
	}
	return e.unexportAccount(ctx, *order.AccountID, orderID)
}

// unexportAccount deletes the account's shared remote customer and clears the
// account linkage, but only when no other order of the account is still
// exported
func (e *Exporter) unexportAccount(ctx context.Context, accountID, orderID int64) error {
	siblings, err := e.orders.FindIDsByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	for _, siblingID := range siblings {
		if siblingID == orderID {
			continue
		}
		siblingLink, err := e.linkage.Order(ctx, siblingID)
		if err != nil {
			return err
		}
		if siblingLink.Exported {
			// The remote customer is still shared; leave it and the account
			// linkage untouched
			return nil
		}
	}

	link, err := e.linkage.Account(ctx, accountID)
	if err != nil {
		return err
	}
	if link.CustomerNo != "" {
		if err := e.client.DeleteCustomer(ctx, link.DivisionNo, link.CustomerNo); err != nil {
			return fmt.Errorf("failed to delete remote customer %s/%s: %w",
				link.DivisionNo, link.CustomerNo, err)
		}
	}
	if err := e.linkage.ClearAccount(ctx, accountID); err != nil {
		return err
	}

	e.logger.Info("account customer removed",
		zap.Int64("account_id", accountID),
		zap.String("customer_no", link.CustomerNo),
	)
	return nil
}

// ---------------------------------------------------------------------------
// Classification & Messages
// ---------------------------------------------------------------------------

// classifyPostalFault reports whether the fault is remediable by registering
// a postal code, and which address the bad code came from
func classifyPostalFault(fault *erp.Fault) postalTarget {
	if fault.Code != remediableFaultCode {
		return postalTargetNone
	}
	message := strings.ToLower(fault.Message)
	switch {
	case strings.Contains(message, billingZipFaultText):
		return postalTargetBilling
	case strings.Contains(message, shippingZipFaultText):
		return postalTargetShipping
	default:
		return postalTargetNone
	}
}

func successMessage(count int) string {
	if count == 1 {
		return "1 order exported to Sage ERP"
	}
	return fmt.Sprintf("%d orders exported to Sage ERP", count)
}

func failureMessage(count int) string {
	if count == 1 {
		return "1 order failed to export"
	}
	return fmt.Sprintf("%d orders failed to export", count)
}

func (e *Exporter) recordExported(ctx context.Context) {
	if e.opts.Metrics != nil {
		e.opts.Metrics.OrderExported(ctx)
	}
}

func (e *Exporter) recordFailed(ctx context.Context) {
	if e.opts.Metrics != nil {
		e.opts.Metrics.OrderFailed(ctx)
	}
}
