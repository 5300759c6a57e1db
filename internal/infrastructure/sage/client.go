package sage

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/domain/erp"
)

// maxResponseSize is the maximum allowed response size from the service (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Client implements erp.Client against the Sage eBusiness Web Services
// endpoint. One underlying session is created on first use and reused for
// the lifetime of the instance; clients are never pooled or shared across
// synchronizer instances.
type Client struct {
	config *Config
	logger *zap.Logger

	// conn is the lazily-created session, nil until the first call
	conn *http.Client
}

// NewClient creates a new Sage client with the given configuration
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{config: config, logger: logger}, nil
}

// ---------------------------------------------------------------------------
// Customer Operations
// ---------------------------------------------------------------------------

// GetCustomer returns the customer identified by division and customer number
func (c *Client) GetCustomer(ctx context.Context, divisionNo, customerNo string, unpackUDF bool) (*erp.Customer, error) {
	req := getCustomerRequest{
		Logon:        c.logon(),
		CompanyCode:  c.config.CompanyCode,
		ARDivisionNo: divisionNo,
		CustomerNo:   customerNo,
	}

	var resp getCustomerResponse
	if err := c.call(ctx, "GetCustomer", req, &resp); err != nil {
		return nil, err
	}

	customer := resp.Result.toDomain()
	if unpackUDF {
		customer.CustomFields = erp.UnpackFields(customer.Fields)
		customer.Fields = nil
	}
	return customer, nil
}

// NextCustomerNo allocates the next available customer number. The
// server-side counter advances whether or not the number is used.
func (c *Client) NextCustomerNo(ctx context.Context) (string, error) {
	req := getNextCustomerNoRequest{Logon: c.logon(), CompanyCode: c.config.CompanyCode}

	var resp getNextCustomerNoResponse
	if err := c.call(ctx, "GetNextCustomerNo", req, &resp); err != nil {
		return "", err
	}

	c.logger.Debug("allocated customer number", zap.String("customer_no", resp.Result))
	return resp.Result, nil
}

// CreateCustomer creates the customer record. The customer number must have
// been allocated by the caller beforehand.
func (c *Client) CreateCustomer(ctx context.Context, customer *erp.Customer) (*erp.Customer, error) {
	if customer.CustomerNo == "" {
		return nil, erp.ErrCustomerNoRequired
	}

	req := createCustomerRequest{
		Logon:       c.logon(),
		CompanyCode: c.config.CompanyCode,
		Customer:    toWireCustomer(customer),
	}

	// No response body for a create; the fault keeps the number that was on
	// the outgoing record because the allocation cannot be rolled back
	if err := c.call(ctx, "CreateCustomer", req, nil); err != nil {
		return nil, withCustomerNo(err, customer.CustomerNo)
	}

	return customer, nil
}

// UpdateCustomer fetches the existing record without UDF unpacking, merges
// the new record onto it and submits the whole result. The remote update is
// whole-record, not partial.
func (c *Client) UpdateCustomer(ctx context.Context, customer *erp.Customer) (*erp.Customer, error) {
	existing, err := c.GetCustomer(ctx, customer.DivisionNo, customer.CustomerNo, false)
	if err != nil {
		return nil, withCustomerNo(err, customer.CustomerNo)
	}

	merged := existing.Merge(customer)

	req := updateCustomerRequest{
		Logon:       c.logon(),
		CompanyCode: c.config.CompanyCode,
		Customer:    toWireCustomer(merged),
	}

	if err := c.call(ctx, "UpdateCustomer", req, nil); err != nil {
		return nil, withCustomerNo(err, merged.CustomerNo)
	}

	return merged, nil
}

// DeleteCustomer deletes the customer identified by the composite key
func (c *Client) DeleteCustomer(ctx context.Context, divisionNo, customerNo string) error {
	req := deleteCustomerRequest{
		Logon:        c.logon(),
		CompanyCode:  c.config.CompanyCode,
		ARDivisionNo: divisionNo,
		CustomerNo:   customerNo,
	}
	return c.call(ctx, "DeleteCustomer", req, nil)
}

// ---------------------------------------------------------------------------
// Sales Order Operations
// ---------------------------------------------------------------------------

// GetSalesOrder returns the sales order identified by salesOrderNo
func (c *Client) GetSalesOrder(ctx context.Context, salesOrderNo string, unpackUDF bool) (*erp.SalesOrder, error) {
	req := getSalesOrderRequest{
		Logon:        c.logon(),
		CompanyCode:  c.config.CompanyCode,
		SalesOrderNo: salesOrderNo,
	}

	var resp getSalesOrderResponse
	if err := c.call(ctx, "GetSalesOrder", req, &resp); err != nil {
		return nil, err
	}

	order := resp.Result.toDomain()
	if unpackUDF {
		order.CustomFields = erp.UnpackFields(order.Fields)
		order.Fields = nil
	}
	return order, nil
}

// NextSalesOrderNo allocates the next available sales order number; same
// irreversible-allocation semantics as NextCustomerNo
func (c *Client) NextSalesOrderNo(ctx context.Context) (string, error) {
	req := getNextSalesOrderNoRequest{Logon: c.logon(), CompanyCode: c.config.CompanyCode}

	var resp getNextSalesOrderNoResponse
	if err := c.call(ctx, "GetNextSalesOrderNo", req, &resp); err != nil {
		return "", err
	}

	c.logger.Debug("allocated sales order number", zap.String("sales_order_no", resp.Result))
	return resp.Result, nil
}

// CreateSalesOrder creates the sales order and returns its order number
func (c *Client) CreateSalesOrder(ctx context.Context, order *erp.SalesOrder) (string, error) {
	if order.SalesOrderNo == "" {
		return "", erp.ErrSalesOrderNoRequired
	}

	req := createSalesOrderRequest{
		Logon:       c.logon(),
		CompanyCode: c.config.CompanyCode,
		SalesOrder:  toWireSalesOrder(order),
	}

	if err := c.call(ctx, "CreateSalesOrder", req, nil); err != nil {
		return "", withSalesOrderNo(err, order.SalesOrderNo)
	}

	return order.SalesOrderNo, nil
}

// UpdateSalesOrder fetches the existing order and merges the patch onto it
// before submitting, mirroring the customer update contract
func (c *Client) UpdateSalesOrder(ctx context.Context, salesOrderNo string, patch *erp.SalesOrder) error {
	existing, err := c.GetSalesOrder(ctx, salesOrderNo, false)
	if err != nil {
		return withSalesOrderNo(err, salesOrderNo)
	}

	merged := existing.Merge(patch)

	req := updateSalesOrderRequest{
		Logon:        c.logon(),
		CompanyCode:  c.config.CompanyCode,
		SalesOrderNo: salesOrderNo,
		SalesOrder:   toWireSalesOrder(merged),
	}

	if err := c.call(ctx, "UpdateSalesOrder", req, nil); err != nil {
		return withSalesOrderNo(err, salesOrderNo)
	}
	return nil
}

// DeleteSalesOrder deletes the sales order identified by salesOrderNo
func (c *Client) DeleteSalesOrder(ctx context.Context, salesOrderNo string) error {
	req := deleteSalesOrderRequest{
		Logon:        c.logon(),
		CompanyCode:  c.config.CompanyCode,
		SalesOrderNo: salesOrderNo,
	}
	return c.call(ctx, "DeleteSalesOrder", req, nil)
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

func (c *Client) logon() wireLogon {
	return wireLogon{Username: c.config.Username, Password: c.config.Password}
}

// connection returns the session, creating it on first use. The optional
// guard suspends attached instrumentation around setup.
func (c *Client) connection() *http.Client {
	if c.conn != nil {
		return c.conn
	}

	if c.config.Guard != nil {
		resume := c.config.Guard()
		defer resume()
	}

	c.conn = &http.Client{Timeout: time.Duration(c.config.TimeoutSeconds) * time.Second}
	c.logger.Debug("sage session created", zap.String("endpoint", c.config.Endpoint))
	return c.conn
}

// call performs one blocking remote procedure call. payload is the request
// wrapper; result, when non-nil, receives the decoded response wrapper.
func (c *Client) call(ctx context.Context, action string, payload, result any) error {
	body, err := encodeEnvelope(payload)
	if err != nil {
		return &erp.Fault{Class: erp.FaultTransport, Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return &erp.Fault{Class: erp.FaultTransport, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", `text/xml; charset=utf-8`)
	req.Header.Set("SOAPAction", serviceNS+action)

	resp, err := c.connection().Do(req)
	if err != nil {
		return &erp.Fault{Class: erp.FaultTransport, Message: fmt.Sprintf("endpoint unreachable: %v", err), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &erp.Fault{Class: erp.FaultTransport, Message: "failed to read response", Err: err}
	}

	var envelope responseEnvelope
	if err := xml.Unmarshal(raw, &envelope); err != nil {
		return &erp.Fault{Class: erp.FaultTransport, Message: fmt.Sprintf("malformed response: %v", err), Err: err}
	}

	if envelope.Body.Fault != nil {
		return faultFromSoap(envelope.Body.Fault)
	}
	if resp.StatusCode >= 400 {
		return &erp.Fault{Class: erp.FaultTransport, Message: fmt.Sprintf("HTTP %d from endpoint", resp.StatusCode)}
	}

	if result != nil {
		if err := xml.Unmarshal(envelope.Body.Inner, result); err != nil {
			return &erp.Fault{Class: erp.FaultTransport, Message: fmt.Sprintf("malformed %s response: %v", action, err), Err: err}
		}
	}
	return nil
}

func encodeEnvelope(payload any) ([]byte, error) {
	envelope := soapEnvelope{Body: soapBody{Payload: payload}}
	body, err := xml.Marshal(envelope)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// faultFromSoap maps a wire fault onto the fault taxonomy. The service
// reports bad credentials and missing access as distinct fault strings on a
// shared generic code, and unknown keys with *_NoKey codes.
func faultFromSoap(f *soapFault) *erp.Fault {
	message := f.String
	if f.Detail.MasFault.ErrorCode != "" {
		message = fmt.Sprintf("%s (%s: %s)", f.String, f.Detail.MasFault.ErrorCode, f.Detail.MasFault.ErrorMessage)
	}

	class := erp.FaultValidation
	switch {
	case strings.HasSuffix(f.Code, "_NoKey"):
		class = erp.FaultNotFound
	case strings.Contains(f.String, "Invalid username/password"),
		strings.Contains(f.String, "No Access"):
		class = erp.FaultAuth
	}

	return &erp.Fault{Class: class, Code: f.Code, Message: message}
}

func withCustomerNo(err error, customerNo string) error {
	if fault, ok := erp.AsFault(err); ok {
		fault.CustomerNo = customerNo
	}
	return err
}

func withSalesOrderNo(err error, salesOrderNo string) error {
	if fault, ok := erp.AsFault(err); ok {
		fault.SalesOrderNo = salesOrderNo
	}
	return err
}

// Ensure Client implements erp.Client
var _ erp.Client = (*Client)(nil)
