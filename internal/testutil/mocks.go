// Package testutil provides the shared fixture dataset and store mocks used by
// tests across the codebase. This follows the Go convention of a shared test
// utility package (like net/http/httptest).
package testutil

import (
	"context"

	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/filter"
)

// === Store Mock ===

// MockStore implements domain.Store for testing. Calls without a matching
// function panic so unexpected store access fails the test.
type MockStore[T any] struct {
	FindFn         func(ctx context.Context, q filter.Query) ([]T, error)
	CountFn        func(ctx context.Context, where filter.Predicate) (int64, error)
	GetByIDFn      func(ctx context.Context, id string) (*T, error)
	GetManyByIDsFn func(ctx context.Context, ids []string) ([]T, error)
	InsertFn       func(ctx context.Context, rec *T) (*T, error)
	UpdateFn       func(ctx context.Context, id string, patch domain.Patch) (*T, error)
	DeleteFn       func(ctx context.Context, id string) (bool, error)

	Calls int
}

// Find implements the interface method for testing.
func (m *MockStore[T]) Find(ctx context.Context, q filter.Query) ([]T, error) {
	m.Calls++
	if m.FindFn != nil {
		return m.FindFn(ctx, q)
	}
	panic("unexpected call to MockStore.Find")
}

// Count implements the interface method for testing.
func (m *MockStore[T]) Count(ctx context.Context, where filter.Predicate) (int64, error) {
	m.Calls++
	if m.CountFn != nil {
		return m.CountFn(ctx, where)
	}
	panic("unexpected call to MockStore.Count")
}

// GetByID implements the interface method for testing.
func (m *MockStore[T]) GetByID(ctx context.Context, id string) (*T, error) {
	m.Calls++
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	panic("unexpected call to MockStore.GetByID")
}

// GetManyByIDs implements the interface method for testing.
func (m *MockStore[T]) GetManyByIDs(ctx context.Context, ids []string) ([]T, error) {
	m.Calls++
	if m.GetManyByIDsFn != nil {
		return m.GetManyByIDsFn(ctx, ids)
	}
	panic("unexpected call to MockStore.GetManyByIDs")
}

// Insert implements the interface method for testing.
func (m *MockStore[T]) Insert(ctx context.Context, rec *T) (*T, error) {
	m.Calls++
	if m.InsertFn != nil {
		return m.InsertFn(ctx, rec)
	}
	panic("unexpected call to MockStore.Insert")
}

// Update implements the interface method for testing.
func (m *MockStore[T]) Update(ctx context.Context, id string, patch domain.Patch) (*T, error) {
	m.Calls++
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, patch)
	}
	panic("unexpected call to MockStore.Update")
}

// Delete implements the interface method for testing.
func (m *MockStore[T]) Delete(ctx context.Context, id string) (bool, error) {
	m.Calls++
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	panic("unexpected call to MockStore.Delete")
}

var _ domain.Store[domain.Person] = (*MockStore[domain.Person])(nil)
