package product

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("product not found")
	ErrDuplicateID = errors.New("product id already exists")
)

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// NewProduct stamps a fresh random id. Field values are taken as given.
func NewProduct(name, description string, price float64) Product {
	return Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Price:       price,
	}
}

// MergeFunc receives the stored product and returns its replacement.
// The returned ID is ignored; stores keep the stored one.
type MergeFunc func(cur Product) (Product, error)

type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]Product, error)
	Len(ctx context.Context) (int, error)
	Get(ctx context.Context, id string) (Product, bool, error)
	Append(ctx context.Context, p Product) error
	Update(ctx context.Context, id string, merge MergeFunc) (Product, error)
	Delete(ctx context.Context, id string) (Product, error)
}
