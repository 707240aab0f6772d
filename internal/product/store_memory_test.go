package product

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_AppendKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	a := NewProduct("A", "first", 1)
	b := NewProduct("B", "second", 2)
	c := NewProduct("C", "third", 3)
	for _, p := range []Product{a, b, c} {
		require.NoError(t, s.Append(ctx, p))
	}

	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Product{a, b, c}, got)
}

func TestMemStore_AppendRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	p := NewProduct("A", "first", 1)
	require.NoError(t, s.Append(ctx, p))

	err := s.Append(ctx, p)
	assert.ErrorIs(t, err, ErrDuplicateID)

	n, _ := s.Len(ctx)
	assert.Equal(t, 1, n)
}

func TestMemStore_ListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.Append(ctx, NewProduct("A", "first", 1)))

	got, _ := s.List(ctx)
	got[0].Name = "mutated"

	again, _ := s.List(ctx)
	assert.Equal(t, "A", again[0].Name)
}

func TestMemStore_Get(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	p := NewProduct("A", "first", 1)
	require.NoError(t, s.Append(ctx, p))

	got, ok, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, p, got)

	_, ok, err = s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemStore_UpdateKeepsID(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	p := NewProduct("A", "first", 1)
	require.NoError(t, s.Append(ctx, p))

	got, err := s.Update(ctx, p.ID, func(cur Product) (Product, error) {
		cur.ID = "hijacked"
		cur.Price = 9.5
		return cur, nil
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, 9.5, got.Price)

	stored, ok, _ := s.Get(ctx, p.ID)
	require.True(t, ok)
	assert.Equal(t, got, stored)
}

func TestMemStore_UpdateMergeErrorLeavesRecord(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	p := NewProduct("A", "first", 1)
	require.NoError(t, s.Append(ctx, p))

	boom := errors.New("boom")
	_, err := s.Update(ctx, p.ID, func(Product) (Product, error) { return Product{}, boom })
	assert.ErrorIs(t, err, boom)

	stored, _, _ := s.Get(ctx, p.ID)
	assert.Equal(t, p, stored)
}

func TestMemStore_UpdateMissing(t *testing.T) {
	s := NewMemStore()
	_, err := s.Update(context.Background(), "missing", func(cur Product) (Product, error) { return cur, nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_DeleteRemovesExactlyOne(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	a := NewProduct("A", "first", 1)
	b := NewProduct("B", "second", 2)
	c := NewProduct("C", "third", 3)
	for _, p := range []Product{a, b, c} {
		require.NoError(t, s.Append(ctx, p))
	}

	got, err := s.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	left, _ := s.List(ctx)
	assert.Equal(t, []Product{a, c}, left)

	_, err = s.Delete(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Append(ctx, NewProduct(fmt.Sprintf("p%d", i), "d", 1))
		}(i)
	}
	wg.Wait()

	got, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, got)
}

func TestNewProduct_DistinctIDs(t *testing.T) {
	a := NewProduct("Same", "same", 1)
	b := NewProduct("Same", "same", 1)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
