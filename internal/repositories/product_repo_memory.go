package repositories

import (
	"context"
	"fmt"
	"sync"

	"products/internal/expression"
	"products/internal/models"
)

// memoryTable keeps items in insertion order so scans are deterministic.
type memoryTable struct {
	items map[string]models.Product
	order []string
}

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	tables map[string]*memoryTable
	mu     sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		tables: make(map[string]*memoryTable),
	}
}

// Put stores the product under its id, replacing any previous item.
func (r *MemoryProductRepository) Put(ctx context.Context, table string, product *models.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to put product: %w", err)
	}
	if product == nil || product.ID == "" {
		return fmt.Errorf("failed to put product: missing id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tables[table]
	if !ok {
		t = &memoryTable{items: make(map[string]models.Product)}
		r.tables[table] = t
	}
	if _, exists := t.items[product.ID]; !exists {
		t.order = append(t.order, product.ID)
	}
	t.items[product.ID] = clone(*product)
	return nil
}

// Get returns the product with the given id.
func (r *MemoryProductRepository) Get(ctx context.Context, table string, id string) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tables[table]
	if !ok {
		return nil, ErrProductNotFound
	}
	product, ok := t.items[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	p := clone(product)
	return &p, nil
}

// Scan returns every product in the table matching the filter.
func (r *MemoryProductRepository) Scan(ctx context.Context, table string, filter expression.Filter) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0)
	t, ok := r.tables[table]
	if !ok {
		return products, nil
	}
	for _, id := range t.order {
		p := t.items[id]
		if filter.Match(tagsOf(p)) {
			products = append(products, clone(p))
		}
	}
	return products, nil
}

func clone(p models.Product) models.Product {
	if p.Tags != nil {
		p.Tags = append([]string(nil), p.Tags...)
	}
	return p
}
