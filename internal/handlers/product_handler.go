package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"products/internal/gateway"
	"products/internal/models"
	"products/internal/repositories"
	"products/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Route templates served by ProductHandler.
const (
	ResourceProducts      = "/products"
	ResourceProductByID   = "/products/{productId}"
	ResourceProductSearch = "/products/search"
)

// Client-facing messages.
const (
	MsgInvalidBody      = "Please provide a valid formatted request in the body."
	MsgMissingProductID = "Please specify a Product Id"
	MsgProductNotFound  = "No products found"
	MsgMissingTags      = "Please specify at least one tag to filter by."
)

// SearchResult is the body of a successful tag search.
type SearchResult struct {
	Records []models.Product `json:"_records"`
}

// ProductHandler handles requests for the products resource.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// Handle dispatches a routed request on its method and resource template.
// It always returns a response; panics are recovered into a 400.
func (h *ProductHandler) Handle(ctx context.Context, req gateway.Request) (resp gateway.Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("method", req.HTTPMethod).
				Str("resource", req.Resource).
				Msg("recovered from unexpected error")
			resp = gateway.Recovered(r)
		}
	}()

	switch {
	case req.HTTPMethod == http.MethodPost && req.Resource == ResourceProducts:
		return h.createProduct(ctx, req)
	case req.HTTPMethod == http.MethodGet && req.Resource == ResourceProductByID:
		return h.getProductByID(ctx, req)
	case req.HTTPMethod == http.MethodGet && req.Resource == ResourceProductSearch:
		return h.searchProducts(ctx, req)
	}
	return gateway.InvalidRequest()
}

func (h *ProductHandler) createProduct(ctx context.Context, req gateway.Request) gateway.Response {
	body := strings.TrimSpace(req.Body)
	if body == "" || body == "null" {
		return gateway.Message(http.StatusBadRequest, MsgInvalidBody)
	}

	var input models.ProductInput
	if err := json.Unmarshal([]byte(body), &input); err != nil {
		log.Debug().Err(err).Msg("error parsing request body")
		return gateway.Failure(http.StatusBadRequest, "Invalid request body", err)
	}

	product, err := h.service.CreateProduct(ctx, input)
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			return gateway.Message(http.StatusBadRequest, vErr.Message)
		}
		log.Error().Err(err).Msg("error creating product")
		return gateway.Failure(http.StatusInternalServerError, "Could not create product", err)
	}
	return gateway.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) getProductByID(ctx context.Context, req gateway.Request) gateway.Response {
	productID := req.PathParameter("productId")
	if productID == "" {
		return gateway.Message(http.StatusBadRequest, MsgMissingProductID)
	}

	product, err := h.service.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return gateway.Message(http.StatusNotFound, MsgProductNotFound)
		}
		log.Error().Err(err).Str("product_id", productID).Msg("error getting product by ID")
		return gateway.Failure(http.StatusBadRequest, "Could not retrieve product", err)
	}
	return gateway.JSON(http.StatusOK, product)
}

func (h *ProductHandler) searchProducts(ctx context.Context, req gateway.Request) gateway.Response {
	raw := req.QueryParameter("tags")
	if raw == "" {
		return gateway.Message(http.StatusBadRequest, MsgMissingTags)
	}

	products, err := h.service.SearchProductsByTags(ctx, strings.Split(raw, ","))
	if err != nil {
		log.Error().Err(err).Str("tags", raw).Msg("error searching products")
		return gateway.Failure(http.StatusBadRequest, "Could not search products", err)
	}
	return gateway.JSON(http.StatusOK, SearchResult{Records: products})
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/products", h.serve(ResourceProducts))
	// search must be registered before the :productId wildcard
	router.Get("/products/search", h.serve(ResourceProductSearch))
	router.Get("/products/:productId", h.serve(ResourceProductByID))
}

// HandleUnmatched answers requests no route claimed. Register it last.
func (h *ProductHandler) HandleUnmatched(c *fiber.Ctx) error {
	return h.serve(c.Path())(c)
}

func (h *ProductHandler) serve(resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := gateway.Request{
			HTTPMethod:            c.Method(),
			Resource:              resource,
			Path:                  c.Path(),
			PathParameters:        nonEmpty(c.AllParams()),
			QueryStringParameters: nonEmpty(c.Queries()),
			Body:                  string(c.Body()),
		}
		return writeResponse(c, h.Handle(c.UserContext(), req))
	}
}

func writeResponse(c *fiber.Ctx, resp gateway.Response) error {
	for k, v := range resp.Headers {
		c.Set(k, v)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Status(resp.StatusCode).SendString(resp.Body)
}

// nonEmpty maps an empty parameter set to nil, matching what the routing
// layer sends when a request has no parameters.
func nonEmpty(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}
