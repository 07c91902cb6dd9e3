package mocks

import (
	"context"

	"giftlist-tools/core/store"

	"github.com/stretchr/testify/mock"
)

// Store is a mock implementation of store.Store
type Store struct {
	mock.Mock
}

func (m *Store) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *Store) Get(ctx context.Context, key store.Key) (store.Item, error) {
	args := m.Called(ctx, key)
	if item, ok := args.Get(0).(store.Item); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) Put(ctx context.Context, item store.Item, cond store.Condition) error {
	args := m.Called(ctx, item, cond)
	return args.Error(0)
}

func (m *Store) Update(ctx context.Context, key store.Key, fields store.Item) (store.Item, error) {
	args := m.Called(ctx, key, fields)
	if item, ok := args.Get(0).(store.Item); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) Delete(ctx context.Context, key store.Key, cond store.Condition) error {
	args := m.Called(ctx, key, cond)
	return args.Error(0)
}

func (m *Store) Query(ctx context.Context, q store.Query) ([]store.Item, error) {
	args := m.Called(ctx, q)
	if items, ok := args.Get(0).([]store.Item); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) Scan(ctx context.Context) ([]store.Item, error) {
	args := m.Called(ctx)
	if items, ok := args.Get(0).([]store.Item); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}
