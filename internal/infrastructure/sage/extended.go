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
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/domain/erp"
)

// defaultStateCode is the placeholder sent when an address carries no region
const defaultStateCode = "XX"

// ExtendedClient implements erp.PostalCodeRegistrar against the separately
// deployed extended web service. The endpoint is optional: a deployment
// without the extension simply leaves it unconfigured, and registration
// reports unavailable rather than failing.
type ExtendedClient struct {
	// endpoint is the extended service URL; empty means not deployed
	endpoint string
	apiKey   string
	timeout  time.Duration
	logger   *zap.Logger
	guard    func() (resume func())

	conn  *http.Client
	title cases.Caser
}

// NewExtendedClient creates an extended API client. An empty endpoint is
// valid and yields a client whose RegisterPostalCode always reports
// unavailable.
func NewExtendedClient(endpoint, apiKey string, timeoutSeconds int, logger *zap.Logger) *ExtendedClient {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtendedClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		timeout:  time.Duration(timeoutSeconds) * time.Second,
		logger:   logger,
		title:    cases.Title(language.English),
	}
}

// SetGuard installs the instrumentation guard invoked around connection setup
func (c *ExtendedClient) SetGuard(guard func() (resume func())) {
	c.guard = guard
}

// RegisterPostalCode registers the postal code at the remote system so a
// subsequent export no longer fails validation on it. Returns (false, nil)
// when no endpoint is configured; that is "remediation unavailable", not an
// error. City is normalized to title case; a blank region becomes the
// sentinel placeholder.
func (c *ExtendedClient) RegisterPostalCode(ctx context.Context, code, city, region, country string) (bool, error) {
	if c.endpoint == "" {
		return false, nil
	}

	if region == "" {
		region = defaultStateCode
	}

	req := createZipRequest{
		PostCode:    code,
		City:        c.title.String(strings.ToLower(city)),
		StateCode:   region,
		CountryCode: country,
		APIKey:      c.apiKey,
	}

	body, err := encodeEnvelope(req)
	if err != nil {
		return false, &erp.Fault{Class: erp.FaultTransport, Message: "failed to encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return false, &erp.Fault{Class: erp.FaultTransport, Message: "failed to create request", Err: err}
	}
	httpReq.Header.Set("Content-Type", `text/xml; charset=utf-8`)
	httpReq.Header.Set("SOAPAction", serviceNS+"CreateZip")

	resp, err := c.connection().Do(httpReq)
	if err != nil {
		return false, &erp.Fault{Class: erp.FaultTransport, Message: fmt.Sprintf("endpoint unreachable: %v", err), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return false, &erp.Fault{Class: erp.FaultTransport, Message: "failed to read response", Err: err}
	}

	var envelope responseEnvelope
	if err := xml.Unmarshal(raw, &envelope); err != nil {
		return false, &erp.Fault{Class: erp.FaultTransport, Message: fmt.Sprintf("malformed response: %v", err), Err: err}
	}
	if envelope.Body.Fault != nil {
		return false, faultFromSoap(envelope.Body.Fault)
	}

	var result createZipResponse
	if err := xml.Unmarshal(envelope.Body.Inner, &result); err != nil {
		return false, &erp.Fault{Class: erp.FaultTransport, Message: fmt.Sprintf("malformed CreateZip response: %v", err), Err: err}
	}

	c.logger.Info("postal code registered",
		zap.String("post_code", code),
		zap.Bool("created", result.Result),
	)
	return result.Result, nil
}

func (c *ExtendedClient) connection() *http.Client {
	if c.conn != nil {
		return c.conn
	}
	if c.guard != nil {
		resume := c.guard()
		defer resume()
	}
	c.conn = &http.Client{Timeout: c.timeout}
	return c.conn
}

// Ensure ExtendedClient implements erp.PostalCodeRegistrar
var _ erp.PostalCodeRegistrar = (*ExtendedClient)(nil)
