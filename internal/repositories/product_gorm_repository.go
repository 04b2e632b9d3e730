package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"products/internal/expression"
	"products/internal/models"

	"gorm.io/gorm"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// productRow is one item of the products table. Tags are kept as a JSON
// array so reads return them in their original order.
type productRow struct {
	ID    string  `gorm:"primaryKey;type:varchar(64)"`
	Name  string  `gorm:"type:varchar(255)"`
	Price float64 `gorm:"not null"`
	Tags  string  `gorm:"type:text"`
}

// tagRow indexes a single tag of a product so contains() predicates can be
// answered by the database.
type tagRow struct {
	ProductID string `gorm:"primaryKey;type:varchar(64)"`
	Position  int    `gorm:"primaryKey"`
	Value     string `gorm:"index;type:varchar(255)"`
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func tagTable(table string) string {
	return table + "_tags"
}

func checkTable(table string) error {
	if !tableNamePattern.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}

// Migrate creates the product table and its tag index table.
func (r *GORMProductRepository) Migrate(table string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if err := r.db.Table(table).AutoMigrate(&productRow{}); err != nil {
		return fmt.Errorf("failed to migrate table %s: %w", table, err)
	}
	if err := r.db.Table(tagTable(table)).AutoMigrate(&tagRow{}); err != nil {
		return fmt.Errorf("failed to migrate table %s: %w", tagTable(table), err)
	}
	return nil
}

// Put writes the product and its tag rows in one transaction.
func (r *GORMProductRepository) Put(ctx context.Context, table string, product *models.Product) error {
	if err := checkTable(table); err != nil {
		return fmt.Errorf("failed to put product: %w", err)
	}
	if product == nil || product.ID == "" {
		return fmt.Errorf("failed to put product: missing id")
	}

	tags, err := json.Marshal(product.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	row := productRow{ID: product.ID, Name: product.Name, Price: product.Price, Tags: string(tags)}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(tagTable(table)).Where("product_id = ?", product.ID).Delete(&tagRow{}).Error; err != nil {
			return err
		}
		if err := tx.Table(table).Save(&row).Error; err != nil {
			return err
		}
		if len(product.Tags) == 0 {
			return nil
		}
		rows := make([]tagRow, 0, len(product.Tags))
		for i, tag := range product.Tags {
			rows = append(rows, tagRow{ProductID: product.ID, Position: i, Value: tag})
		}
		return tx.Table(tagTable(table)).Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to put product: %w", err)
	}
	return nil
}

// Get retrieves a single product by its ID.
func (r *GORMProductRepository) Get(ctx context.Context, table string, id string) (*models.Product, error) {
	if err := checkTable(table); err != nil {
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}

	var row productRow
	if err := r.db.WithContext(ctx).Table(table).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}

	product, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Scan returns every product matching the filter. Each contains() predicate
// becomes an EXISTS subquery against the tag table, bound in predicate order.
func (r *GORMProductRepository) Scan(ctx context.Context, table string, filter expression.Filter) ([]models.Product, error) {
	if err := checkTable(table); err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}

	query := r.db.WithContext(ctx).Table(table)
	for _, c := range filter.Conditions() {
		if c.Attribute != "tags" {
			return nil, fmt.Errorf("failed to scan products: unsupported attribute %q", c.Attribute)
		}
		query = query.Where(
			fmt.Sprintf("EXISTS (SELECT 1 FROM %s t WHERE t.product_id = %s.id AND t.value = ?)", tagTable(table), table),
			c.Binding.Value,
		)
	}

	var rows []productRow
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.toModel()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (row productRow) toModel() (models.Product, error) {
	p := models.Product{ID: row.ID, Name: row.Name, Price: row.Price}
	if row.Tags != "" {
		if err := json.Unmarshal([]byte(row.Tags), &p.Tags); err != nil {
			return models.Product{}, fmt.Errorf("failed to decode tags of product %s: %w", row.ID, err)
		}
	}
	return p, nil
}
