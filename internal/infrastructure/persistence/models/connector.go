package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/domain/commerce"
)

// AddressModel is the flattened persistence form of a commerce address
type AddressModel struct {
	FirstName string `gorm:"size:100"`
	LastName  string `gorm:"size:100"`
	Company   string `gorm:"size:200"`
	Address1  string `gorm:"size:200"`
	Address2  string `gorm:"size:200"`
	City      string `gorm:"size:100"`
	State     string `gorm:"size:20"`
	PostCode  string `gorm:"size:20"`
	Country   string `gorm:"size:2"`
	Email     string `gorm:"size:200"`
	Phone     string `gorm:"size:50"`
}

// ToDomain converts AddressModel to a domain Address
func (m AddressModel) ToDomain() commerce.Address {
	return commerce.Address{
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Company:   m.Company,
		Address1:  m.Address1,
		Address2:  m.Address2,
		City:      m.City,
		State:     m.State,
		PostCode:  m.PostCode,
		Country:   m.Country,
		Email:     m.Email,
		Phone:     m.Phone,
	}
}

// AddressModelFromDomain converts a domain Address to its persistence form
func AddressModelFromDomain(a commerce.Address) AddressModel {
	return AddressModel{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Company:   a.Company,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		State:     a.State,
		PostCode:  a.PostCode,
		Country:   a.Country,
		Email:     a.Email,
		Phone:     a.Phone,
	}
}

// OrderModel is the persistence model for a local order
type OrderModel struct {
	ID        int64  `gorm:"primaryKey"`
	AccountID *int64 `gorm:"index"`
	Status    string `gorm:"size:20;not null;index"`
	Currency  string `gorm:"size:3;not null"`

	Total decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Billing  AddressModel `gorm:"embedded;embeddedPrefix:billing_"`
	Shipping AddressModel `gorm:"embedded;embeddedPrefix:shipping_"`

	Items []OrderItemModel `gorm:"foreignKey:OrderID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for OrderModel
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts OrderModel to a domain Order
func (m *OrderModel) ToDomain() *commerce.Order {
	items := make([]commerce.LineItem, len(m.Items))
	for i, item := range m.Items {
		items[i] = item.ToDomain()
	}
	return &commerce.Order{
		ID:        m.ID,
		AccountID: m.AccountID,
		Status:    commerce.OrderStatus(m.Status),
		Billing:   m.Billing.ToDomain(),
		Shipping:  m.Shipping.ToDomain(),
		Items:     items,
		Total:     m.Total,
		Currency:  m.Currency,
	}
}

// OrderItemModel is the persistence model for a purchased line item
type OrderItemModel struct {
	ID      int64  `gorm:"primaryKey;autoIncrement"`
	OrderID int64  `gorm:"not null;index"`
	SKU     string `gorm:"size:100;not null"`
	Name    string `gorm:"size:200;not null"`

	Quantity decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Total    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for OrderItemModel
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts OrderItemModel to a domain LineItem
func (m OrderItemModel) ToDomain() commerce.LineItem {
	return commerce.LineItem{
		SKU:      m.SKU,
		Name:     m.Name,
		Quantity: m.Quantity,
		Total:    m.Total,
	}
}

// OrderNoteModel is the persistence model for an order audit note
type OrderNoteModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	OrderID   int64     `gorm:"not null;index"`
	Note      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for OrderNoteModel
func (OrderNoteModel) TableName() string {
	return "order_notes"
}

// EntityMetaModel is the persistence model for open key-value metadata
// attached to a local entity. One row per (entity, entity_id, key).
type EntityMetaModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	EntityKind string `gorm:"size:20;not null;uniqueIndex:idx_entity_meta_key"`
	EntityID   int64  `gorm:"not null;uniqueIndex:idx_entity_meta_key"`
	MetaKey    string `gorm:"size:100;not null;uniqueIndex:idx_entity_meta_key"`
	MetaValue  string `gorm:"type:text;not null"`

	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for EntityMetaModel
func (EntityMetaModel) TableName() string {
	return "entity_meta"
}
