package models

// Product represents a product stored in the products table.
type Product struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Tags  []string `json:"tags"`
}

// ProductInput is the request body accepted when creating a product.
// Validation runs in field order, so the first failing rule decides the message.
type ProductInput struct {
	Name  string   `json:"name" validate:"max=40"`
	Price float64  `json:"price" validate:"gte=0"`
	Tags  []string `json:"tags" validate:"dive,notblank"`
}

// ToProduct builds the record that gets written for the given id.
func (in ProductInput) ToProduct(id string) Product {
	return Product{
		ID:    id,
		Name:  in.Name,
		Price: in.Price,
		Tags:  in.Tags,
	}
}
