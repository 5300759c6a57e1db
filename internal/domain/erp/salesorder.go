package erp

import "github.com/shopspring/decimal"

// SalesOrder represents a sales order record in the remote ERP
type SalesOrder struct {
	// SalesOrderNo is the remote order number, allocated by the server
	SalesOrderNo string
	// DivisionNo and CustomerNo identify the owning remote customer
	DivisionNo string
	CustomerNo string
	// SalespersonNo attributes the order to a salesperson
	SalespersonNo string
	// Ship-to address fields
	ShipToName    string
	ShipToAddress string
	ShipToCity    string
	ShipToState   string
	ShipToZipCode string
	ShipToCountry string
	// Lines holds the order line items
	Lines []SalesOrderLine
	// Fields holds the record's user-defined fields as returned by the server
	Fields []Field
	// CustomFields is a staged flat map packed into Fields on create/update
	CustomFields map[string]string
}

// SalesOrderLine is a single line item on a remote sales order
type SalesOrderLine struct {
	// ItemCode is the remote item code (the local SKU)
	ItemCode string
	// QuantityOrdered is the ordered quantity
	QuantityOrdered decimal.Decimal
}

// Merge overlays the non-empty fields of other onto a copy of o and returns
// it. Mirrors Customer.Merge: the remote update is whole-record, so a patch
// is merged onto the fetched record before submission.
func (o *SalesOrder) Merge(other *SalesOrder) *SalesOrder {
	merged := *o

	if other.SalesOrderNo != "" {
		merged.SalesOrderNo = other.SalesOrderNo
	}
	if other.DivisionNo != "" {
		merged.DivisionNo = other.DivisionNo
	}
	if other.CustomerNo != "" {
		merged.CustomerNo = other.CustomerNo
	}
	if other.SalespersonNo != "" {
		merged.SalespersonNo = other.SalespersonNo
	}
	if other.ShipToName != "" {
		merged.ShipToName = other.ShipToName
	}
	if other.ShipToAddress != "" {
		merged.ShipToAddress = other.ShipToAddress
	}
	if other.ShipToCity != "" {
		merged.ShipToCity = other.ShipToCity
	}
	if other.ShipToState != "" {
		merged.ShipToState = other.ShipToState
	}
	if other.ShipToZipCode != "" {
		merged.ShipToZipCode = other.ShipToZipCode
	}
	if other.ShipToCountry != "" {
		merged.ShipToCountry = other.ShipToCountry
	}
	if len(other.Lines) > 0 {
		merged.Lines = other.Lines
	}
	if len(other.Fields) > 0 {
		merged.Fields = other.Fields
	}
	if len(other.CustomFields) > 0 {
		merged.CustomFields = other.CustomFields
	}

	return &merged
}
