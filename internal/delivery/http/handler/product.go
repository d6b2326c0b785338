package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/products-ms/internal/delivery/http/request"
	"github.com/Pesokrava/products-ms/internal/delivery/http/response"
	"github.com/Pesokrava/products-ms/internal/delivery/rpc"
	rpcresponse "github.com/Pesokrava/products-ms/internal/delivery/rpc/response"
	"github.com/Pesokrava/products-ms/internal/pkg/logger"
)

// ProductClient forwards commands to the products microservice
type ProductClient interface {
	Send(ctx context.Context, command string, payload, out interface{}) error
}

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	client ProductClient
	logger *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(client ProductClient, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		client: client,
		logger: log,
	}
}

// Create handles POST /api/v1/products
// @Summary Create a new product
// @Description Create an available product. Price may be a number or a numeric string with at most 4 decimals.
// @Tags Products
// @Accept json
// @Produce json
// @Param product body object true "Product details: {name, price}"
// @Success 201 {object} map[string]interface{} "Product created successfully"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	var product json.RawMessage
	if err := h.client.Send(r.Context(), rpc.CommandCreate, body, &product); err != nil {
		h.handleError(w, err)
		return
	}

	response.Created(w, product)
}

// List handles GET /api/v1/products
// @Summary List available products
// @Description Get a page of available products ordered by id
// @Tags Products
// @Produce json
// @Param page query int false "Page number, starting at 1" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} map[string]interface{} "Page of products with meta"
// @Failure 400 {object} map[string]interface{} "Invalid paging parameters"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	payload := make(map[string]int)
	for _, key := range []string{"page", "limit"} {
		value, err := request.GetIntQuery(r, key)
		if err != nil {
			response.Error(w, rpcresponse.ErrorBody{
				Status:  http.StatusBadRequest,
				Code:    rpcresponse.CodeInvalidInput,
				Message: err.Error(),
				Field:   key,
				Rule:    "type",
			})
			return
		}
		if value != nil {
			payload[key] = *value
		}
	}

	var page struct {
		Data json.RawMessage `json:"data"`
		Meta json.RawMessage `json:"meta"`
	}
	if err := h.client.Send(r.Context(), rpc.CommandFindAll, payload, &page); err != nil {
		h.handleError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, page)
}

// GetByID handles GET /api/v1/products/{id}
// @Summary Get a product by ID
// @Description Get an available product
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} map[string]interface{} "Product details"
// @Failure 400 {object} map[string]interface{} "Invalid product ID"
// @Failure 404 {object} map[string]interface{} "Product not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	h.forwardID(w, r, rpc.CommandFindOne)
}

// Update handles PATCH /api/v1/products/{id}
// @Summary Update a product
// @Description Change the name and/or price of an available product
// @Tags Products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param product body object true "Fields to change: {name?, price?}"
// @Success 200 {object} map[string]interface{} "Product updated successfully"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 404 {object} map[string]interface{} "Product not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /products/{id} [patch]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetParam(r, "id")
	if err != nil {
		h.invalidID(w)
		return
	}

	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		response.Fail(w, http.StatusBadRequest, rpcresponse.CodeInvalidInput, "Request body must be a JSON object")
		return
	}

	rawID, err := json.Marshal(id)
	if err != nil {
		h.handleError(w, err)
		return
	}
	fields["id"] = rawID

	var product json.RawMessage
	if err := h.client.Send(r.Context(), rpc.CommandUpdate, fields, &product); err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, product)
}

// Delete handles DELETE /api/v1/products/{id}
// @Summary Remove a product
// @Description Mark a product unavailable; the record is kept for validation
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} map[string]interface{} "Removed product"
// @Failure 400 {object} map[string]interface{} "Invalid product ID"
// @Failure 404 {object} map[string]interface{} "Product not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.forwardID(w, r, rpc.CommandRemove)
}

// Validate handles POST /api/v1/products/validate
// @Summary Validate product ids
// @Description Check that every id refers to a stored product, available or not
// @Tags Products
// @Accept json
// @Produce json
// @Param ids body []int true "Product ids"
// @Success 200 {object} map[string]interface{} "Matching products"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 404 {object} map[string]interface{} "Some products were not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /products/validate [post]
func (h *ProductHandler) Validate(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	var products json.RawMessage
	if err := h.client.Send(r.Context(), rpc.CommandValidate, body, &products); err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, products)
}

func (h *ProductHandler) forwardID(w http.ResponseWriter, r *http.Request, command string) {
	id, err := request.GetParam(r, "id")
	if err != nil {
		h.invalidID(w)
		return
	}

	var product json.RawMessage
	if err := h.client.Send(r.Context(), command, map[string]string{"id": id}, &product); err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, product)
}

func (h *ProductHandler) readBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	body, err := request.ReadJSON(r)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, rpcresponse.CodeInvalidInput, "Invalid request body")
		return nil, false
	}
	return body, true
}

func (h *ProductHandler) invalidID(w http.ResponseWriter) {
	response.Error(w, rpcresponse.ErrorBody{
		Status:  http.StatusBadRequest,
		Code:    rpcresponse.CodeInvalidInput,
		Message: "Invalid product ID",
		Field:   "id",
		Rule:    "required",
	})
}

// handleError maps RPC failures to HTTP responses
func (h *ProductHandler) handleError(w http.ResponseWriter, err error) {
	var remote *rpc.RemoteError
	switch {
	case errors.As(err, &remote):
		response.Error(w, remote.Body())
	case errors.Is(err, nats.ErrNoResponders):
		h.logger.Error("Products service unavailable", err)
		response.Fail(w, http.StatusServiceUnavailable, rpcresponse.CodeInternal, "Service unavailable")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, nats.ErrTimeout):
		h.logger.Error("Products service timed out", err)
		response.Fail(w, http.StatusGatewayTimeout, rpcresponse.CodeInternal, "Service timed out")
	default:
		h.logger.Error("Internal error in product handler", err)
		response.Fail(w, http.StatusBadGateway, rpcresponse.CodeInternal, "Internal server error")
	}
}
