package commerce

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMetaStore is an in-memory MetaStore for tests
type fakeMetaStore struct {
	data map[string]string
}

func newFakeMetaStore() *fakeMetaStore {
	return &fakeMetaStore{data: make(map[string]string)}
}

func (s *fakeMetaStore) key(entity EntityKind, entityID int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", entity, entityID, key)
}

func (s *fakeMetaStore) Get(_ context.Context, entity EntityKind, entityID int64, key string) (string, error) {
	return s.data[s.key(entity, entityID, key)], nil
}

func (s *fakeMetaStore) Set(_ context.Context, entity EntityKind, entityID int64, key, value string) error {
	s.data[s.key(entity, entityID, key)] = value
	return nil
}

func (s *fakeMetaStore) Delete(_ context.Context, entity EntityKind, entityID int64, key string) error {
	delete(s.data, s.key(entity, entityID, key))
	return nil
}

var _ MetaStore = (*fakeMetaStore)(nil)

func TestLinkageStore_OrderRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewLinkageStore(newFakeMetaStore())

	link, err := store.Order(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, Linkage{}, link)

	require.NoError(t, store.SetOrderCustomer(ctx, 42, "0012345", "01"))
	require.NoError(t, store.SetOrderSalesOrderNo(ctx, 42, "0054321"))
	require.NoError(t, store.SetOrderExported(ctx, 42, true))

	link, err = store.Order(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, Linkage{
		Exported:     true,
		SalesOrderNo: "0054321",
		CustomerNo:   "0012345",
		DivisionNo:   "01",
	}, link)
}

func TestLinkageStore_ClearOrder(t *testing.T) {
	ctx := context.Background()
	store := NewLinkageStore(newFakeMetaStore())

	require.NoError(t, store.SetOrderCustomer(ctx, 42, "0012345", "01"))
	require.NoError(t, store.SetOrderSalesOrderNo(ctx, 42, "0054321"))
	require.NoError(t, store.SetOrderExported(ctx, 42, true))

	require.NoError(t, store.ClearOrder(ctx, 42))

	link, err := store.Order(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, Linkage{}, link)
}

func TestLinkageStore_AccountLinkage(t *testing.T) {
	ctx := context.Background()
	store := NewLinkageStore(newFakeMetaStore())

	// Setting the account customer also marks the account exported
	require.NoError(t, store.SetAccountCustomer(ctx, 7, "0012345", "01"))

	link, err := store.Account(ctx, 7)
	require.NoError(t, err)
	assert.True(t, link.Exported)
	assert.Equal(t, "0012345", link.CustomerNo)
	assert.Equal(t, "01", link.DivisionNo)

	require.NoError(t, store.ClearAccount(ctx, 7))

	link, err = store.Account(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, Linkage{}, link)
}

func TestLinkageStore_OrderAndAccountAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewLinkageStore(newFakeMetaStore())

	// The same numeric id must not collide across entity kinds
	require.NoError(t, store.SetOrderCustomer(ctx, 5, "ORDER", "01"))
	require.NoError(t, store.SetAccountCustomer(ctx, 5, "ACCOUNT", "02"))

	orderLink, err := store.Order(ctx, 5)
	require.NoError(t, err)
	accountLink, err := store.Account(ctx, 5)
	require.NoError(t, err)

	assert.Equal(t, "ORDER", orderLink.CustomerNo)
	assert.Equal(t, "ACCOUNT", accountLink.CustomerNo)
}
