package repositories

import (
	"context"
	"errors"

	"products/internal/expression"
	"products/internal/models"
)

// ErrProductNotFound is returned by Get when no item has the requested id.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the key-value store operations used by the handler.
// Every call addresses the table named by the caller.
type ProductRepository interface {
	Put(ctx context.Context, table string, product *models.Product) error
	Get(ctx context.Context, table string, id string) (*models.Product, error)
	Scan(ctx context.Context, table string, filter expression.Filter) ([]models.Product, error)
}

// tagsOf exposes a product's attributes to a filter.
func tagsOf(p models.Product) func(string) []string {
	return func(attribute string) []string {
		if attribute == "tags" {
			return p.Tags
		}
		return nil
	}
}
