package erp

// Customer represents a customer record in the remote ERP.
//
// CustomerNo is a composite key: it is only meaningful paired with its
// DivisionNo (the class-of-trade partition). Both are allocated and owned by
// the remote system.
type Customer struct {
	// DivisionNo partitions customers into classes of trade
	DivisionNo string
	// CustomerNo is the customer sequence within the division
	CustomerNo string
	// CustomerName is the display name on the remote record
	CustomerName string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	ZipCode      string
	CountryCode  string
	EmailAddress string
	TelephoneNo  string
	// PriceLevel is the remote pricing tier applied to this customer's orders
	PriceLevel string
	// SalespersonNo attributes the customer to a salesperson; scoped by
	// SalespersonDivisionNo, which defaults to DivisionNo on the server
	SalespersonNo         string
	SalespersonDivisionNo string
	// Fields holds the record's user-defined fields as returned by the server
	Fields []Field
	// CustomFields is a staged flat map packed into Fields on create/update
	CustomFields map[string]string
}

// Key returns the composite remote key for the customer
func (c *Customer) Key() (divisionNo, customerNo string) {
	return c.DivisionNo, c.CustomerNo
}

// Merge overlays the non-empty fields of other onto a copy of c and returns
// it. The remote update operation is whole-record rather than partial, so the
// client fetches the existing record and merges the new one onto it before
// submitting.
func (c *Customer) Merge(other *Customer) *Customer {
	merged := *c

	if other.DivisionNo != "" {
		merged.DivisionNo = other.DivisionNo
	}
	if other.CustomerNo != "" {
		merged.CustomerNo = other.CustomerNo
	}
	if other.CustomerName != "" {
		merged.CustomerName = other.CustomerName
	}
	if other.AddressLine1 != "" {
		merged.AddressLine1 = other.AddressLine1
	}
	if other.AddressLine2 != "" {
		merged.AddressLine2 = other.AddressLine2
	}
	if other.City != "" {
		merged.City = other.City
	}
	if other.State != "" {
		merged.State = other.State
	}
	if other.ZipCode != "" {
		merged.ZipCode = other.ZipCode
	}
	if other.CountryCode != "" {
		merged.CountryCode = other.CountryCode
	}
	if other.EmailAddress != "" {
		merged.EmailAddress = other.EmailAddress
	}
	if other.TelephoneNo != "" {
		merged.TelephoneNo = other.TelephoneNo
	}
	if other.PriceLevel != "" {
		merged.PriceLevel = other.PriceLevel
	}
	if other.SalespersonNo != "" {
		merged.SalespersonNo = other.SalespersonNo
	}
	if other.SalespersonDivisionNo != "" {
		merged.SalespersonDivisionNo = other.SalespersonDivisionNo
	}
	if len(other.Fields) > 0 {
		merged.Fields = other.Fields
	}
	if len(other.CustomFields) > 0 {
		merged.CustomFields = other.CustomFields
	}

	return &merged
}
