package handler

import (
	"context"

	"github.com/Pesokrava/products-ms/internal/delivery/rpc/message"
	"github.com/Pesokrava/products-ms/internal/delivery/rpc/request"
	"github.com/Pesokrava/products-ms/internal/domain"
	"github.com/Pesokrava/products-ms/internal/pkg/logger"
	"github.com/Pesokrava/products-ms/internal/pkg/validator"
	"github.com/Pesokrava/products-ms/internal/usecase/product"
)

// ProductService is the business API the handlers delegate to
type ProductService interface {
	Create(ctx context.Context, in product.CreateInput) (*domain.Product, error)
	FindAll(ctx context.Context, p domain.Pagination) (*domain.ProductPage, error)
	FindOne(ctx context.Context, id int64) (*domain.Product, error)
	Update(ctx context.Context, in product.UpdateInput) (*domain.Product, error)
	Remove(ctx context.Context, id int64) (*domain.Product, error)
	Validate(ctx context.Context, ids []int64) ([]*domain.Product, error)
}

// ProductHandler handles product commands
type ProductHandler struct {
	service      ProductService
	defaultLimit int
	logger       *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service ProductService, defaultLimit int, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service:      service,
		defaultLimit: defaultLimit,
		logger:       log,
	}
}

// Create handles the create command
func (h *ProductHandler) Create(ctx context.Context, req *message.Request) (any, error) {
	var body request.CreateProductRequest
	if err := decode(req, &body); err != nil {
		return nil, err
	}

	return h.service.Create(ctx, product.CreateInput{
		Name:  body.Name,
		Price: body.Price.InexactFloat64(),
	})
}

// FindAll handles the find_all command
func (h *ProductHandler) FindAll(ctx context.Context, req *message.Request) (any, error) {
	var body request.PaginationRequest
	if err := decode(req, &body); err != nil {
		return nil, err
	}

	p := domain.Pagination{Page: 1, Limit: h.defaultLimit}
	if body.Page != nil {
		p.Page = *body.Page
	}
	if body.Limit != nil {
		p.Limit = *body.Limit
	}

	return h.service.FindAll(ctx, p)
}

// FindOne handles the find_one command
func (h *ProductHandler) FindOne(ctx context.Context, req *message.Request) (any, error) {
	var body request.IDRequest
	if err := decode(req, &body); err != nil {
		return nil, err
	}

	return h.service.FindOne(ctx, int64(*body.ID))
}

// Update handles the update command
func (h *ProductHandler) Update(ctx context.Context, req *message.Request) (any, error) {
	var body request.UpdateProductRequest
	if err := decode(req, &body); err != nil {
		return nil, err
	}

	in := product.UpdateInput{
		ID:   int64(*body.ID),
		Name: body.Name,
	}
	if body.Price != nil {
		price := body.Price.InexactFloat64()
		in.Price = &price
	}

	return h.service.Update(ctx, in)
}

// Remove handles the remove command
func (h *ProductHandler) Remove(ctx context.Context, req *message.Request) (any, error) {
	var body request.IDRequest
	if err := decode(req, &body); err != nil {
		return nil, err
	}

	return h.service.Remove(ctx, int64(*body.ID))
}

// Validate handles the validate command
func (h *ProductHandler) Validate(ctx context.Context, req *message.Request) (any, error) {
	ids, err := request.DecodeIDs(req.Payload)
	if err != nil {
		return nil, err
	}

	return h.service.Validate(ctx, ids)
}

func decode(req *message.Request, v interface{}) error {
	if err := request.DecodeJSON(req.Payload, v); err != nil {
		return err
	}
	return validator.Struct(v)
}
