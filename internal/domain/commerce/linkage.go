package commerce

import (
	"context"
	"errors"
)

// Persisted linkage keys. The key strings are preserved from the store format
// of the commerce platform so existing linkage survives a connector upgrade.
const (
	// MetaKeyExported marks an order or account as exported ("1") or not ("0")
	MetaKeyExported = "_wc_sage_erp_exported"
	// MetaKeySalesOrderNo holds the remote sales order number on an order
	MetaKeySalesOrderNo = "_order_number"
	// MetaKeyCustomerNo holds the remote customer number
	MetaKeyCustomerNo = "_wc_sage_erp_customer_no"
	// MetaKeyDivisionNo holds the remote division number
	MetaKeyDivisionNo = "_wc_sage_erp_division_no"
)

// ErrLinkageInconsistent indicates the linkage store violates its invariant:
// the exported flag is set but no sales order number is recorded
var ErrLinkageInconsistent = errors.New("commerce: linkage marked exported without a sales order number")

// Linkage is the per-order (or per-account) record tying a local entity to
// its remote counterparts. Invariant: Exported implies SalesOrderNo != ""
// for order-level linkage.
type Linkage struct {
	Exported     bool
	SalesOrderNo string
	CustomerNo   string
	DivisionNo   string
}

// LinkageStore reads and writes linkage records through the generic MetaStore.
// Mutations are deliberately granular: the export path persists the sales
// order number before flipping the exported flag so a crash in between leaves
// a recoverable "number known but not marked exported" state instead of a
// lost allocation.
type LinkageStore struct {
	meta MetaStore
}

// NewLinkageStore creates a LinkageStore on top of the given MetaStore
func NewLinkageStore(meta MetaStore) *LinkageStore {
	return &LinkageStore{meta: meta}
}

// Order returns the order-level linkage record
func (s *LinkageStore) Order(ctx context.Context, orderID int64) (Linkage, error) {
	return s.load(ctx, EntityOrder, orderID)
}

// Account returns the account-level linkage record
func (s *LinkageStore) Account(ctx context.Context, accountID int64) (Linkage, error) {
	return s.load(ctx, EntityAccount, accountID)
}

func (s *LinkageStore) load(ctx context.Context, entity EntityKind, id int64) (Linkage, error) {
	var linkage Linkage

	exported, err := s.meta.Get(ctx, entity, id, MetaKeyExported)
	if err != nil {
		return linkage, err
	}
	linkage.Exported = exported == "1"

	if linkage.SalesOrderNo, err = s.meta.Get(ctx, entity, id, MetaKeySalesOrderNo); err != nil {
		return linkage, err
	}
	if linkage.CustomerNo, err = s.meta.Get(ctx, entity, id, MetaKeyCustomerNo); err != nil {
		return linkage, err
	}
	if linkage.DivisionNo, err = s.meta.Get(ctx, entity, id, MetaKeyDivisionNo); err != nil {
		return linkage, err
	}

	return linkage, nil
}

// SetOrderCustomer persists the resolved remote customer key on the order
func (s *LinkageStore) SetOrderCustomer(ctx context.Context, orderID int64, customerNo, divisionNo string) error {
	if err := s.meta.Set(ctx, EntityOrder, orderID, MetaKeyCustomerNo, customerNo); err != nil {
		return err
	}
	return s.meta.Set(ctx, EntityOrder, orderID, MetaKeyDivisionNo, divisionNo)
}

// SetOrderSalesOrderNo persists the remote sales order number on the order
func (s *LinkageStore) SetOrderSalesOrderNo(ctx context.Context, orderID int64, salesOrderNo string) error {
	return s.meta.Set(ctx, EntityOrder, orderID, MetaKeySalesOrderNo, salesOrderNo)
}

// SetOrderExported flips the order's exported flag
func (s *LinkageStore) SetOrderExported(ctx context.Context, orderID int64, exported bool) error {
	value := "0"
	if exported {
		value = "1"
	}
	return s.meta.Set(ctx, EntityOrder, orderID, MetaKeyExported, value)
}

// ClearOrder removes the order's linkage fields and resets the exported flag
func (s *LinkageStore) ClearOrder(ctx context.Context, orderID int64) error {
	for _, key := range []string{MetaKeyDivisionNo, MetaKeyCustomerNo, MetaKeySalesOrderNo} {
		if err := s.meta.Delete(ctx, EntityOrder, orderID, key); err != nil {
			return err
		}
	}
	return s.meta.Set(ctx, EntityOrder, orderID, MetaKeyExported, "0")
}

// SetAccountCustomer persists the remote customer key on the account and
// marks the account as exported
func (s *LinkageStore) SetAccountCustomer(ctx context.Context, accountID int64, customerNo, divisionNo string) error {
	if err := s.meta.Set(ctx, EntityAccount, accountID, MetaKeyCustomerNo, customerNo); err != nil {
		return err
	}
	if err := s.meta.Set(ctx, EntityAccount, accountID, MetaKeyDivisionNo, divisionNo); err != nil {
		return err
	}
	return s.meta.Set(ctx, EntityAccount, accountID, MetaKeyExported, "1")
}

// ClearAccount removes the account's linkage fields and exported flag
func (s *LinkageStore) ClearAccount(ctx context.Context, accountID int64) error {
	for _, key := range []string{MetaKeyDivisionNo, MetaKeyCustomerNo, MetaKeyExported} {
		if err := s.meta.Delete(ctx, EntityAccount, accountID, key); err != nil {
			return err
		}
	}
	return nil
}
