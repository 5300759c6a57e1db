package commerce

import "context"

// OrderRepository is the port to the local order store. The connector reads
// orders and appends audit notes; it never creates or deletes them.
type OrderRepository interface {
	// FindByID returns the order or ErrOrderNotFound
	FindByID(ctx context.Context, id int64) (*Order, error)

	// FindIDsByAccount returns the ids of every order owned by the account.
	// Used by the reversal path to decide whether the shared remote customer
	// can be deleted.
	FindIDsByAccount(ctx context.Context, accountID int64) ([]int64, error)

	// AddNote appends an audit note to the order's history
	AddNote(ctx context.Context, orderID int64, note string) error
}

// MetaStore is the generic linkage store: open key-value metadata attached to
// local entities. The connector does not own this storage; it reads and
// writes a handful of well-known keys through this narrow port.
type MetaStore interface {
	// Get returns the value for the key, or "" when absent
	Get(ctx context.Context, entity EntityKind, entityID int64, key string) (string, error)

	// Set writes the value for the key, creating or replacing it
	Set(ctx context.Context, entity EntityKind, entityID int64, key, value string) error

	// Delete removes the key; deleting an absent key is not an error
	Delete(ctx context.Context, entity EntityKind, entityID int64, key string) error
}

// EntityKind selects which local entity a metadata row is attached to
type EntityKind string

const (
	// EntityOrder scopes metadata to a local order
	EntityOrder EntityKind = "order"
	// EntityAccount scopes metadata to a local customer account
	EntityAccount EntityKind = "account"
)

// IsValid returns true if the entity kind is valid
func (k EntityKind) IsValid() bool {
	switch k {
	case EntityOrder, EntityAccount:
		return true
	default:
		return false
	}
}

// String returns the string representation of EntityKind
func (k EntityKind) String() string {
	return string(k)
}
