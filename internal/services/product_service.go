package services

import (
	"context"
	"fmt"
	"strings"

	"products/internal/expression"
	"products/internal/models"
	"products/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Validation messages returned to clients, one per rule.
const (
	MsgNameTooLong   = "Product Name must not exceed 40 characters."
	MsgNegativePrice = "Price must not be negative."
	MsgBlankTags     = "Tags must not be blank."
)

// ProductCreatedRoutingKey is the routing key of the event published after a
// product is written.
const ProductCreatedRoutingKey = "product.created"

// TagsAttribute is the stored attribute searched by SearchProductsByTags.
const TagsAttribute = "tags"

var fieldMessages = map[string]string{
	"Name":  MsgNameTooLong,
	"Price": MsgNegativePrice,
	"Tags":  MsgBlankTags,
}

// ValidationError reports the first create input rule that failed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Publisher sends domain events to a message broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	tableName func() string
	publisher Publisher
	validate  *validator.Validate
	newID     func() string
}

// NewProductService creates a new ProductService. tableName is consulted on
// every call so the target table follows the current configuration.
// publisher may be nil, in which case no events are sent.
func NewProductService(repo repositories.ProductRepository, tableName func() string, publisher Publisher) *ProductService {
	return &ProductService{
		repo:      repo,
		tableName: tableName,
		publisher: publisher,
		validate:  newValidator(),
		newID:     func() string { return uuid.New().String() },
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// ValidateProductInput checks the create input and returns a *ValidationError
// for the first rule it breaks, in the order name, price, tags.
func (s *ProductService) ValidateProductInput(input models.ProductInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return fmt.Errorf("failed to validate product: %w", err)
	}

	field := validationErrors[0].StructField()
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	if msg, ok := fieldMessages[field]; ok {
		return &ValidationError{Message: msg}
	}
	return &ValidationError{Message: validationErrors[0].Error()}
}

// CreateProduct validates the input, assigns a new id and writes the product.
func (s *ProductService) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	if err := s.ValidateProductInput(input); err != nil {
		return nil, err
	}
	if input.Tags == nil {
		input.Tags = []string{}
	}

	product := input.ToProduct(s.newID())
	if err := s.repo.Put(ctx, s.tableName(), &product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publishCreated(ctx, product)
	return &product, nil
}

func (s *ProductService) publishCreated(ctx context.Context, product models.Product) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ProductCreatedRoutingKey, product); err != nil {
		log.Warn().Err(err).Str("product_id", product.ID).Msg("failed to publish product created event")
		return
	}
	log.Debug().Str("product_id", product.ID).Msg("published product created event")
}

// GetProductByID retrieves a single product by its ID. It returns
// repositories.ErrProductNotFound when there is none.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.Get(ctx, s.tableName(), id)
}

// SearchProductsByTags returns the products whose tags contain every given tag.
func (s *ProductService) SearchProductsByTags(ctx context.Context, tags []string) ([]models.Product, error) {
	filter := expression.ContainsAll(TagsAttribute, tags)
	log.Debug().
		Str("filter", filter.Expression()).
		Int("values", len(filter.Values())).
		Msg("scanning products")

	products, err := s.repo.Scan(ctx, s.tableName(), filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}
