package product

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/Pesokrava/products-ms/internal/domain"
	"github.com/Pesokrava/products-ms/internal/pkg/logger"
)

// Locker serializes read-modify-write sequences on a single product
type Locker interface {
	LockProduct(ctx context.Context, id int64) (release func(), err error)
}

// CreateInput holds the fields of a new product
type CreateInput struct {
	Name  string
	Price float64
}

// UpdateInput identifies a product and the fields to change; nil fields are kept
type UpdateInput struct {
	ID    int64
	Name  *string
	Price *float64
}

// Service handles product business logic. It holds no state of its own and
// is safe for concurrent use.
type Service struct {
	repo       domain.ProductRepository
	locker     Locker
	logger     *logger.Logger
	tracer     trace.Tracer
	operations metric.Int64Counter
}

// Option configures optional Service collaborators
type Option func(*Service)

// WithLocker serializes update and remove per product id
func WithLocker(l Locker) Option {
	return func(s *Service) {
		s.locker = l
	}
}

// WithTelemetry records a span and an operation counter per call
func WithTelemetry(tracer trace.Tracer, meter metric.Meter) Option {
	return func(s *Service) {
		s.tracer = tracer
		if counter, err := meter.Int64Counter(
			"products.operations",
			metric.WithDescription("Product service operations by result"),
		); err == nil {
			s.operations = counter
		}
	}
}

// NewService creates a new product service
func NewService(repo domain.ProductRepository, log *logger.Logger, opts ...Option) *Service {
	operations, _ := metricnoop.NewMeterProvider().Meter("").Int64Counter("products.operations")

	s := &Service{
		repo:       repo,
		logger:     log,
		tracer:     tracenoop.NewTracerProvider().Tracer(""),
		operations: operations,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new active product
func (s *Service) Create(ctx context.Context, in CreateInput) (product *domain.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Create")
	defer func() { s.finish(ctx, span, "create", err) }()

	product = &domain.Product{
		Name:      in.Name,
		Price:     in.Price,
		Available: true,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("product.id", product.ID))
	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("Product created successfully")

	return product, nil
}

// FindAll returns one page of active products together with paging metadata.
// Pages past the end are empty, not an error.
func (s *Service) FindAll(ctx context.Context, p domain.Pagination) (page *domain.ProductPage, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.FindAll")
	defer func() { s.finish(ctx, span, "find_all", err) }()

	if p.Page < 1 {
		return nil, domain.NewInvalidInput("page", "min", "page must not be less than 1")
	}
	if p.Limit < 1 {
		return nil, domain.NewInvalidInput("limit", "min", "limit must not be less than 1")
	}

	span.SetAttributes(attribute.Int("page", p.Page), attribute.Int("limit", p.Limit))

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count products", err)
		return nil, err
	}

	products, err := s.repo.List(ctx, p.Limit, p.Offset())
	if err != nil {
		s.logger.Error("Failed to list products", err)
		return nil, err
	}
	if products == nil {
		products = []*domain.Product{}
	}

	return &domain.ProductPage{
		Data: products,
		Meta: domain.PageMeta{
			Page:     p.Page,
			Limit:    p.Limit,
			LastPage: domain.LastPage(total, p.Limit),
			Total:    total,
		},
	}, nil
}

// FindOne retrieves an active product; inactive products are reported as missing
func (s *Service) FindOne(ctx context.Context, id int64) (product *domain.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.FindOne")
	defer func() { s.finish(ctx, span, "find_one", err) }()

	span.SetAttributes(attribute.Int64("product.id", id))
	return s.findActive(ctx, id)
}

func (s *Service) findActive(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Product not found: %d", id)
			return nil, domain.ProductNotFound(id)
		}
		s.logger.Error("Failed to get product", err)
		return nil, err
	}

	return product, nil
}

// Update changes the given fields of an active product
func (s *Service) Update(ctx context.Context, in UpdateInput) (product *domain.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Update")
	defer func() { s.finish(ctx, span, "update", err) }()

	span.SetAttributes(attribute.Int64("product.id", in.ID))

	release, err := s.lock(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	current, err := s.findActive(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	patch := domain.ProductPatch{Name: in.Name, Price: in.Price}
	if patch.IsEmpty() {
		return current, nil
	}

	product, err = s.write(ctx, in.ID, patch)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("Product updated successfully")

	return product, nil
}

// Remove soft-deletes an active product and returns it in its inactive state
func (s *Service) Remove(ctx context.Context, id int64) (product *domain.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Remove")
	defer func() { s.finish(ctx, span, "remove", err) }()

	span.SetAttributes(attribute.Int64("product.id", id))

	release, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := s.findActive(ctx, id); err != nil {
		return nil, err
	}

	unavailable := false
	product, err = s.write(ctx, id, domain.ProductPatch{Available: &unavailable})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"product_id": id,
	}).Info("Product removed successfully")

	return product, nil
}

func (s *Service) write(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	product, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ProductNotFound(id)
		}
		s.logger.Error("Failed to update product", err)
		return nil, err
	}
	return product, nil
}

// Validate confirms every id refers to a stored product, active or not.
// Duplicate ids count once.
func (s *Service) Validate(ctx context.Context, ids []int64) (products []*domain.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Validate")
	defer func() { s.finish(ctx, span, "validate", err) }()

	unique := dedupe(ids)
	span.SetAttributes(attribute.Int("ids.requested", len(ids)), attribute.Int("ids.unique", len(unique)))

	products, err = s.repo.FindByIDs(ctx, unique)
	if err != nil {
		s.logger.Error("Failed to find products by ids", err)
		return nil, err
	}

	if len(products) != len(unique) {
		s.logger.WithFields(map[string]interface{}{
			"missing": missingIDs(unique, products),
		}).Debug("Product validation failed")
		return nil, domain.ErrSomeProductsNotFound
	}

	if products == nil {
		products = []*domain.Product{}
	}
	return products, nil
}

func (s *Service) lock(ctx context.Context, id int64) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}

	release, err := s.locker.LockProduct(ctx, id)
	if err != nil {
		s.logger.Error("Failed to lock product", err)
		return nil, fmt.Errorf("lock product %d: %w", id, err)
	}
	return release, nil
}

// finish classifies the outcome of an operation for tracing and metrics and ends the span
func (s *Service) finish(ctx context.Context, span trace.Span, operation string, err error) {
	defer span.End()

	result := "success"
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case errors.Is(err, domain.ErrNotFound):
		result = "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		result = "invalid_input"
	default:
		result = "failure"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	s.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("result", result),
	))
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

func missingIDs(ids []int64, found []*domain.Product) []int64 {
	present := make(map[int64]struct{}, len(found))
	for _, p := range found {
		present[p.ID] = struct{}{}
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
