package sage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/domain/erp"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{
			name: "valid config",
			config: &Config{
				Endpoint:    "https://erp.example.com/ws",
				Username:    "api",
				Password:    "secret",
				CompanyCode: "ABC",
			},
			wantErr: nil,
		},
		{
			name: "missing endpoint",
			config: &Config{
				Username: "api", Password: "secret", CompanyCode: "ABC",
			},
			wantErr: ErrConfigMissingEndpoint,
		},
		{
			name: "missing username",
			config: &Config{
				Endpoint: "https://erp.example.com/ws", Password: "secret", CompanyCode: "ABC",
			},
			wantErr: ErrConfigMissingUsername,
		},
		{
			name: "missing password",
			config: &Config{
				Endpoint: "https://erp.example.com/ws", Username: "api", CompanyCode: "ABC",
			},
			wantErr: ErrConfigMissingPassword,
		},
		{
			name: "missing company code",
			config: &Config{
				Endpoint: "https://erp.example.com/ws", Username: "api", Password: "secret",
			},
			wantErr: ErrConfigMissingCompanyCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 30, tt.config.TimeoutSeconds)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func envelope(inner string) string {
	return `<?xml version="1.0" encoding="utf-8"?>` +
		`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">` +
		`<soap:Body>` + inner + `</soap:Body></soap:Envelope>`
}

func faultEnvelope(code, message string) string {
	return envelope(fmt.Sprintf(
		`<soap:Fault><faultcode>%s</faultcode><faultstring>%s</faultstring></soap:Fault>`,
		code, message))
}

// newTestClient returns a client pointed at a server that replies with the
// queued responses in order
func newTestClient(t *testing.T, responses ...string) (*Client, *[]string) {
	t.Helper()

	var requests []string
	index := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, string(body))

		require.Less(t, index, len(responses), "unexpected extra request")
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		fmt.Fprint(w, responses[index])
		index++
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{
		Endpoint:    server.URL,
		Username:    "api",
		Password:    "secret",
		CompanyCode: "ABC",
	}, nil)
	require.NoError(t, err)
	return client, &requests
}

// ---------------------------------------------------------------------------
// Customer Operation Tests
// ---------------------------------------------------------------------------

func TestClient_GetCustomer(t *testing.T) {
	response := envelope(`<GetCustomerResponse xmlns="http://www.sage.com/MAS90/eBusinessWebServices/">
		<GetCustomerResult>
			<ARDivisionNo>01</ARDivisionNo>
			<CustomerNo>0012345</CustomerNo>
			<CustomerName>ACME LLC</CustomerName>
			<ZipCode>62701</ZipCode>
			<OtherFields>
				<Field><MasFieldName>UDF_SOURCE</MasFieldName><Value>web</Value></Field>
			</OtherFields>
		</GetCustomerResult>
	</GetCustomerResponse>`)

	t.Run("without UDF unpacking", func(t *testing.T) {
		client, requests := newTestClient(t, response)

		customer, err := client.GetCustomer(context.Background(), "01", "0012345", false)
		require.NoError(t, err)

		assert.Equal(t, "01", customer.DivisionNo)
		assert.Equal(t, "0012345", customer.CustomerNo)
		assert.Equal(t, "ACME LLC", customer.CustomerName)
		assert.Equal(t, []erp.Field{{Name: "UDF_SOURCE", Value: "web"}}, customer.Fields)
		assert.Nil(t, customer.CustomFields)

		require.Len(t, *requests, 1)
		sent := (*requests)[0]
		assert.Contains(t, sent, "<Username>api</Username>")
		assert.Contains(t, sent, "<companyCode>ABC</companyCode>")
		assert.Contains(t, sent, "<customerNo>0012345</customerNo>")
	})

	t.Run("with UDF unpacking", func(t *testing.T) {
		client, _ := newTestClient(t, response)

		customer, err := client.GetCustomer(context.Background(), "01", "0012345", true)
		require.NoError(t, err)

		assert.Nil(t, customer.Fields)
		assert.Equal(t, map[string]string{"UDF_SOURCE": "web"}, customer.CustomFields)
	})
}

func TestClient_NextCustomerNo(t *testing.T) {
	client, _ := newTestClient(t, envelope(
		`<GetNextCustomerNoResponse xmlns="http://www.sage.com/MAS90/eBusinessWebServices/">`+
			`<GetNextCustomerNoResult>0012346</GetNextCustomerNoResult>`+
			`</GetNextCustomerNoResponse>`))

	no, err := client.NextCustomerNo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0012346", no)
}

func TestClient_CreateCustomer_RequiresNumber(t *testing.T) {
	client, requests := newTestClient(t)

	_, err := client.CreateCustomer(context.Background(), &erp.Customer{DivisionNo: "01"})
	assert.ErrorIs(t, err, erp.ErrCustomerNoRequired)
	assert.Empty(t, *requests, "no request should be sent")
}

func TestClient_CreateCustomer_FaultCarriesNumber(t *testing.T) {
	client, _ := newTestClient(t, faultEnvelope("a:CI_NOF",
		"Could not set AR_Customer_bus column ZipCode"))

	_, err := client.CreateCustomer(context.Background(), &erp.Customer{
		DivisionNo: "01",
		CustomerNo: "0012345",
		ZipCode:    "99999",
	})
	require.Error(t, err)

	fault, ok := erp.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, erp.FaultValidation, fault.Class)
	assert.Equal(t, "a:CI_NOF", fault.Code)
	assert.Equal(t, "0012345", fault.CustomerNo)
}

func TestClient_UpdateCustomer_MergesOntoFetched(t *testing.T) {
	getResponse := envelope(`<GetCustomerResponse xmlns="http://www.sage.com/MAS90/eBusinessWebServices/">
		<GetCustomerResult>
			<ARDivisionNo>01</ARDivisionNo>
			<CustomerNo>0012345</CustomerNo>
			<CustomerName>OLD NAME</CustomerName>
			<TelephoneNo>555-0000</TelephoneNo>
		</GetCustomerResult>
	</GetCustomerResponse>`)
	updateResponse := envelope(
		`<UpdateCustomerResponse xmlns="http://www.sage.com/MAS90/eBusinessWebServices/"/>`)

	client, requests := newTestClient(t, getResponse, updateResponse)

	updated, err := client.UpdateCustomer(context.Background(), &erp.Customer{
		DivisionNo:   "01",
		CustomerNo:   "0012345",
		CustomerName: "NEW NAME",
	})
	require.NoError(t, err)

	// Merged record keeps the fetched phone and takes the new name
	assert.Equal(t, "NEW NAME", updated.CustomerName)
	assert.Equal(t, "555-0000", updated.TelephoneNo)

	require.Len(t, *requests, 2)
	assert.Contains(t, (*requests)[1], "<CustomerName>NEW NAME</CustomerName>")
	assert.Contains(t, (*requests)[1], "<TelephoneNo>555-0000</TelephoneNo>")
}

// ---------------------------------------------------------------------------
// Sales Order Operation Tests
// ---------------------------------------------------------------------------

func TestClient_CreateSalesOrder(t *testing.T) {
	client, requests := newTestClient(t, envelope(
		`<CreateSalesOrderResponse xmlns="http://www.sage.com/MAS90/eBusinessWebServices/"/>`))

	no, err := client.CreateSalesOrder(context.Background(), &erp.SalesOrder{
		SalesOrderNo: "0054321",
		DivisionNo:   "01",
		CustomerNo:   "0012345",
		Lines: []erp.SalesOrderLine{
			{ItemCode: "WIDGET-1", QuantityOrdered: mustDecimal(t, "2")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "0054321", no)

	require.Len(t, *requests, 1)
	sent := (*requests)[0]
	assert.Contains(t, sent, "<ItemCode>WIDGET-1</ItemCode>")
	assert.Contains(t, sent, "<QuantityOrdered>2</QuantityOrdered>")
}

func TestClient_CreateSalesOrder_RequiresNumber(t *testing.T) {
	client, requests := newTestClient(t)

	_, err := client.CreateSalesOrder(context.Background(), &erp.SalesOrder{CustomerNo: "0012345"})
	assert.ErrorIs(t, err, erp.ErrSalesOrderNoRequired)
	assert.Empty(t, *requests)
}

func TestClient_CreateSalesOrder_FaultCarriesNumber(t *testing.T) {
	client, _ := newTestClient(t, faultEnvelope("a:CI_NOF",
		"Could not set SO_SalesOrder_Bus column ShipToZipCode"))

	_, err := client.CreateSalesOrder(context.Background(), &erp.SalesOrder{
		SalesOrderNo: "0054321",
	})
	require.Error(t, err)

	fault, ok := erp.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, "0054321", fault.SalesOrderNo)
}

// ---------------------------------------------------------------------------
// Fault Mapping Tests
// ---------------------------------------------------------------------------

func TestFaultFromSoap_Classification(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		message string
		want    erp.FaultClass
	}{
		{"unknown key", "a:CI_NoKey", "record not found", erp.FaultNotFound},
		{"bad credentials", "a:Server", "Invalid username/password", erp.FaultAuth},
		{"no access", "a:Server", "No Access to company ABC", erp.FaultAuth},
		{"validation", "a:CI_NOF", "Could not set AR_Customer_bus column ZipCode", erp.FaultValidation},
		{"generic", "a:Server", "something else entirely", erp.FaultValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, faultEnvelope(tt.code, tt.message))

			_, err := client.GetCustomer(context.Background(), "01", "0012345", false)
			require.Error(t, err)

			fault, ok := erp.AsFault(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, fault.Class)
			assert.Equal(t, tt.code, fault.Code)
			assert.Contains(t, fault.Message, tt.message)
		})
	}
}

func TestClient_TransportFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // unreachable endpoint

	client, err := NewClient(&Config{
		Endpoint:    server.URL,
		Username:    "api",
		Password:    "secret",
		CompanyCode: "ABC",
	}, nil)
	require.NoError(t, err)

	_, err = client.NextCustomerNo(context.Background())
	require.Error(t, err)

	fault, ok := erp.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, erp.FaultTransport, fault.Class)
}

func TestClient_MalformedResponse(t *testing.T) {
	client, _ := newTestClient(t, "this is not xml")

	_, err := client.NextCustomerNo(context.Background())
	require.Error(t, err)

	fault, ok := erp.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, erp.FaultTransport, fault.Class)
}

func TestClient_GuardInvokedOnce(t *testing.T) {
	response := envelope(
		`<GetNextCustomerNoResponse xmlns="http://www.sage.com/MAS90/eBusinessWebServices/">` +
			`<GetNextCustomerNoResult>0012346</GetNextCustomerNoResult>` +
			`</GetNextCustomerNoResponse>`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		fmt.Fprint(w, response)
	}))
	t.Cleanup(server.Close)

	guardCalls, resumeCalls := 0, 0
	client, err := NewClient(&Config{
		Endpoint:    server.URL,
		Username:    "api",
		Password:    "secret",
		CompanyCode: "ABC",
		Guard: func() func() {
			guardCalls++
			return func() { resumeCalls++ }
		},
	}, nil)
	require.NoError(t, err)

	// The session is created lazily on the first call and reused after
	_, err = client.NextCustomerNo(context.Background())
	require.NoError(t, err)
	_, err = client.NextCustomerNo(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, guardCalls)
	assert.Equal(t, 1, resumeCalls)
}

func TestClient_SOAPActionHeader(t *testing.T) {
	var action string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		action = r.Header.Get("SOAPAction")
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		fmt.Fprint(w, envelope(
			`<DeleteSalesOrderResponse xmlns="http://www.sage.com/MAS90/eBusinessWebServices/"/>`))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{
		Endpoint:    server.URL,
		Username:    "api",
		Password:    "secret",
		CompanyCode: "ABC",
	}, nil)
	require.NoError(t, err)

	require.NoError(t, client.DeleteSalesOrder(context.Background(), "0054321"))
	assert.True(t, strings.HasSuffix(action, "DeleteSalesOrder"), action)
}
