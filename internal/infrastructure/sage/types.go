package sage

import (
	"encoding/xml"

	"github.com/shopspring/decimal"

	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/domain/erp"
)

// Namespaces and header values for the eBusiness Web Services endpoint
const (
	soapEnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"
	serviceNS      = "http://www.sage.com/MAS90/eBusinessWebServices/"
)

// ---------------------------------------------------------------------------
// Envelope
// ---------------------------------------------------------------------------

type soapEnvelope struct {
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Body    soapBody `xml:"Body"`
}

type soapBody struct {
	Payload any `xml:",omitempty"`
}

// responseEnvelope captures either a fault or the raw response body. The
// payload is kept as inner XML and decoded a second time into the typed
// wrapper for the call.
type responseEnvelope struct {
	XMLName xml.Name     `xml:"Envelope"`
	Body    responseBody `xml:"Body"`
}

type responseBody struct {
	Fault *soapFault `xml:"Fault"`
	Inner []byte     `xml:",innerxml"`
}

// soapFault is the wire shape of a service fault. The MAS-specific detail
// carries a secondary error code/message pair used in diagnostics.
type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
	Detail struct {
		MasFault struct {
			ErrorCode    string `xml:"ErrorCode"`
			ErrorMessage string `xml:"ErrorMessage"`
		} `xml:"MasFault"`
	} `xml:"detail"`
}

type wireLogon struct {
	Username string `xml:"Username"`
	Password string `xml:"Password"`
}

// ---------------------------------------------------------------------------
// Customer wire shapes
// ---------------------------------------------------------------------------

type wireField struct {
	Name  string `xml:"MasFieldName"`
	Value string `xml:"Value"`
}

type wireOtherFields struct {
	Field []wireField `xml:"Field"`
}

type wireCustomer struct {
	ARDivisionNo          string           `xml:"ARDivisionNo,omitempty"`
	CustomerNo            string           `xml:"CustomerNo,omitempty"`
	CustomerName          string           `xml:"CustomerName,omitempty"`
	AddressLine1          string           `xml:"AddressLine1,omitempty"`
	AddressLine2          string           `xml:"AddressLine2,omitempty"`
	City                  string           `xml:"City,omitempty"`
	State                 string           `xml:"State,omitempty"`
	ZipCode               string           `xml:"ZipCode,omitempty"`
	CountryCode           string           `xml:"CountryCode,omitempty"`
	EmailAddress          string           `xml:"EmailAddress,omitempty"`
	TelephoneNo           string           `xml:"TelephoneNo,omitempty"`
	PriceLevel            string           `xml:"PriceLevel,omitempty"`
	SalespersonNo         string           `xml:"SalespersonNo,omitempty"`
	SalespersonDivisionNo string           `xml:"SalespersonDivisionNo,omitempty"`
	OtherFields           *wireOtherFields `xml:"OtherFields,omitempty"`
}

func toWireCustomer(c *erp.Customer) wireCustomer {
	w := wireCustomer{
		ARDivisionNo:          c.DivisionNo,
		CustomerNo:            c.CustomerNo,
		CustomerName:          c.CustomerName,
		AddressLine1:          c.AddressLine1,
		AddressLine2:          c.AddressLine2,
		City:                  c.City,
		State:                 c.State,
		ZipCode:               c.ZipCode,
		CountryCode:           c.CountryCode,
		EmailAddress:          c.EmailAddress,
		TelephoneNo:           c.TelephoneNo,
		PriceLevel:            c.PriceLevel,
		SalespersonNo:         c.SalespersonNo,
		SalespersonDivisionNo: c.SalespersonDivisionNo,
	}

	// Staged custom fields are packed onto whatever the record already carries
	fields := c.Fields
	if len(c.CustomFields) > 0 {
		fields = erp.PackFields(c.CustomFields, fields)
	}
	if len(fields) > 0 {
		w.OtherFields = &wireOtherFields{Field: toWireFields(fields)}
	}

	return w
}

func (w *wireCustomer) toDomain() *erp.Customer {
	c := &erp.Customer{
		DivisionNo:            w.ARDivisionNo,
		CustomerNo:            w.CustomerNo,
		CustomerName:          w.CustomerName,
		AddressLine1:          w.AddressLine1,
		AddressLine2:          w.AddressLine2,
		City:                  w.City,
		State:                 w.State,
		ZipCode:               w.ZipCode,
		CountryCode:           w.CountryCode,
		EmailAddress:          w.EmailAddress,
		TelephoneNo:           w.TelephoneNo,
		PriceLevel:            w.PriceLevel,
		SalespersonNo:         w.SalespersonNo,
		SalespersonDivisionNo: w.SalespersonDivisionNo,
	}
	if w.OtherFields != nil {
		c.Fields = fromWireFields(w.OtherFields.Field)
	}
	return c
}

// ---------------------------------------------------------------------------
// Sales order wire shapes
// ---------------------------------------------------------------------------

type wireSalesOrderLine struct {
	ItemCode        string `xml:"ItemCode"`
	QuantityOrdered string `xml:"QuantityOrdered"`
}

type wireSalesOrderLines struct {
	SalesOrderLine []wireSalesOrderLine `xml:"SalesOrderLine"`
}

type wireSalesOrder struct {
	SalesOrderNo    string               `xml:"SalesOrderNo,omitempty"`
	ARDivisionNo    string               `xml:"ARDivisionNo,omitempty"`
	CustomerNo      string               `xml:"CustomerNo,omitempty"`
	SalespersonNo   string               `xml:"SalespersonNo,omitempty"`
	ShipToName      string               `xml:"ShipToName,omitempty"`
	ShipToAddress   string               `xml:"ShipToAddress,omitempty"`
	ShipToCity      string               `xml:"ShipToCity,omitempty"`
	ShipToState     string               `xml:"ShipToState,omitempty"`
	ShipToZipCode   string               `xml:"ShipToZipCode,omitempty"`
	ShipToCountry   string               `xml:"ShipToCountryCode,omitempty"`
	Lines           *wireSalesOrderLines `xml:"Lines,omitempty"`
	OtherFields     *wireOtherFields     `xml:"OtherFields,omitempty"`
}

func toWireSalesOrder(o *erp.SalesOrder) wireSalesOrder {
	w := wireSalesOrder{
		SalesOrderNo:  o.SalesOrderNo,
		ARDivisionNo:  o.DivisionNo,
		CustomerNo:    o.CustomerNo,
		SalespersonNo: o.SalespersonNo,
		ShipToName:    o.ShipToName,
		ShipToAddress: o.ShipToAddress,
		ShipToCity:    o.ShipToCity,
		ShipToState:   o.ShipToState,
		ShipToZipCode: o.ShipToZipCode,
		ShipToCountry: o.ShipToCountry,
	}

	if len(o.Lines) > 0 {
		lines := make([]wireSalesOrderLine, len(o.Lines))
		for i, line := range o.Lines {
			lines[i] = wireSalesOrderLine{
				ItemCode:        line.ItemCode,
				QuantityOrdered: line.QuantityOrdered.String(),
			}
		}
		w.Lines = &wireSalesOrderLines{SalesOrderLine: lines}
	}

	fields := o.Fields
	if len(o.CustomFields) > 0 {
		fields = erp.PackFields(o.CustomFields, fields)
	}
	if len(fields) > 0 {
		w.OtherFields = &wireOtherFields{Field: toWireFields(fields)}
	}

	return w
}

func (w *wireSalesOrder) toDomain() *erp.SalesOrder {
	o := &erp.SalesOrder{
		SalesOrderNo:  w.SalesOrderNo,
		DivisionNo:    w.ARDivisionNo,
		CustomerNo:    w.CustomerNo,
		SalespersonNo: w.SalespersonNo,
		ShipToName:    w.ShipToName,
		ShipToAddress: w.ShipToAddress,
		ShipToCity:    w.ShipToCity,
		ShipToState:   w.ShipToState,
		ShipToZipCode: w.ShipToZipCode,
		ShipToCountry: w.ShipToCountry,
	}
	if w.Lines != nil {
		for _, line := range w.Lines.SalesOrderLine {
			qty, err := decimal.NewFromString(line.QuantityOrdered)
			if err != nil {
				qty = decimal.Zero
			}
			o.Lines = append(o.Lines, erp.SalesOrderLine{
				ItemCode:        line.ItemCode,
				QuantityOrdered: qty,
			})
		}
	}
	if w.OtherFields != nil {
		o.Fields = fromWireFields(w.OtherFields.Field)
	}
	return o
}

func toWireFields(fields []erp.Field) []wireField {
	out := make([]wireField, len(fields))
	for i, f := range fields {
		out[i] = wireField{Name: f.Name, Value: f.Value}
	}
	return out
}

func fromWireFields(fields []wireField) []erp.Field {
	out := make([]erp.Field, len(fields))
	for i, f := range fields {
		out[i] = erp.Field{Name: f.Name, Value: f.Value}
	}
	return out
}

// ---------------------------------------------------------------------------
// Request / response wrappers
// ---------------------------------------------------------------------------

type getCustomerRequest struct {
	XMLName      xml.Name  `xml:"http://www.sage.com/MAS90/eBusinessWebServices/ GetCustomer"`
	Logon        wireLogon `xml:"logon"`
	CompanyCode  string    `xml:"companyCode"`
	ARDivisionNo string    `xml:"arDivisionNo"`
	CustomerNo   string    `xml:"customerNo"`
}

type getCustomerResponse struct {
	XMLName xml.Name     `xml:"GetCustomerResponse"`
	Result  wireCustomer `xml:"GetCustomerResult"`
}

type getNextCustomerNoRequest struct {
	XMLName     xml.Name  `xml:"http://www.sage.com/MAS90/eBusinessWebServices/ GetNextCustomerNo"`
	Logon       wireLogon `xml:"logon"`
	CompanyCode string    `xml:"companyCode"`
}

type getNextCustomerNoResponse struct {
	XMLName xml.Name `xml:"GetNextCustomerNoResponse"`
	Result  string   `xml:"GetNextCustomerNoResult"`
}

type createCustomerRequest struct {
	XMLName     xml.Name     `xml:"http://www.sage.com/MAS90/eBusinessWebServices/ CreateCustomer"`
	Logon       wireLogon    `xml:"logon"`
	CompanyCode string       `xml:"companyCode"`
	Customer    wireCustomer `xml:"customer"`
}

type updateCustomerRequest struct {
	XMLName     xml.Name     `xml:"http://www.sage.com/MAS90/eBusinessWebServices/ UpdateCustomer"`
	Logon       wireLogon    `xml:"logon"`
	CompanyCode string       `xml:"companyCode"`
	Customer    wireCustomer `xml:"customer"`
}

type deleteCustomerRequest struct {
	XMLName      xml.Name  `xml:"http://www.sage.com/MAS90/eBusinessWebServices/ DeleteCustomer"`
	Logon        wireLogon `xml:"logon"`
	CompanyCode  string    `xml:"companyCode"`
	ARDivisionNo string    `xml:"arDivisionNo"`
	CustomerNo   string    `xml:"customerNo"`
}

type getSalesOrderRequest struct {
	XMLName      xml.Name  `xml:"http://www.sage.com/MAS90/eBusinessWebServices/ GetSalesOrder"`
	Logon        wireLogon `xml:"logon"`
	CompanyCode  string    `xml:"companyCode"`
	SalesOrderNo string    `xml:"salesOrderNo"`
}

type getSalesOrderResponse struct {
	XMLName xml.Name       `xml:"GetSalesOrderResponse"`
	Result  wireSalesOrder `xml:"GetSalesOrderResult"`
}

type getNextSalesOrderNoRequest struct {
	XMLName     xml.Name  `xml:"http://www.sage.com/MAS90/eBusinessWebServices/ GetNextSalesOrderNo"`
	Logon       wireLogon `xml:"logon"`
	CompanyCode string    `xml:"companyCode"`
}

type getNextSalesOrderNoResponse struct {
	XMLName xml.Name `xml:"GetNextSalesOrderNoResponse"`
	Result  string   `xml:"GetNextSalesOrderNoResult"`
}

type createSalesOrderRequest struct {
	XMLName     xml.Name       `xml:"http://www.sage.com/MAS90/eBusinessWebServices/ CreateSalesOrder"`
	Logon       wireLogon      `xml:"logon"`
	CompanyCode string         `xml:"companyCode"`
	SalesOrder  wireSalesOrder `xml:"salesOrder"`
}

type updateSalesOrderRequest struct {
	XMLName      xml.Name       `xml:"http://www.sage.com/MAS90/eBusinessWebServices/ UpdateSalesOrder"`
	Logon        wireLogon      `xml:"logon"`
	CompanyCode  string         `xml:"companyCode"`
	SalesOrderNo string         `xml:"salesOrderNo"`
	SalesOrder   wireSalesOrder `xml:"salesOrder"`
}

type deleteSalesOrderRequest struct {
	XMLName      xml.Name  `xml:"http://www.sage.com/MAS90/eBusinessWebServices/ DeleteSalesOrder"`
	Logon        wireLogon `xml:"logon"`
	CompanyCode  string    `xml:"companyCode"`
	SalesOrderNo string    `xml:"salesOrderNo"`
}

type createZipRequest struct {
	XMLName     xml.Name `xml:"http://www.sage.com/MAS90/eBusinessWebServices/ CreateZip"`
	PostCode    string   `xml:"PostCode"`
	City        string   `xml:"City"`
	StateCode   string   `xml:"StateCode"`
	CountryCode string   `xml:"CountryCode"`
	APIKey      string   `xml:"APIKey"`
}

type createZipResponse struct {
	XMLName xml.Name `xml:"CreateZipResponse"`
	Result  bool     `xml:"CreateZipResult"`
}
