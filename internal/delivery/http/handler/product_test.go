package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/products-ms/internal/delivery/rpc"
	"github.com/Pesokrava/products-ms/internal/pkg/logger"
)

// MockProductClient is a mock implementation of ProductClient
type MockProductClient struct {
	mock.Mock
}

func (m *MockProductClient) Send(ctx context.Context, command string, payload, out interface{}) error {
	args := m.Called(ctx, command, payload, out)
	if reply := args.Get(0); reply != nil && out != nil {
		raw, err := json.Marshal(reply)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func setupRouter(client ProductClient) http.Handler {
	h := NewProductHandler(client, logger.New("test"))

	r := chi.NewRouter()
	r.Post("/products", h.Create)
	r.Get("/products", h.List)
	r.Post("/products/validate", h.Validate)
	r.Get("/products/{id}", h.GetByID)
	r.Patch("/products/{id}", h.Update)
	r.Delete("/products/{id}", h.Delete)
	return r
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestProductHandler_Create_Success(t *testing.T) {
	client := new(MockProductClient)
	product := map[string]interface{}{"id": 1, "name": "Widget", "price": 9.99, "available": true}

	client.On("Send", mock.Anything, rpc.CommandCreate, json.RawMessage(`{"name":"Widget","price":9.99}`), mock.Anything).
		Return(product, nil)

	rr := serve(setupRouter(client), http.MethodPost, "/products", `{"name":"Widget","price":9.99}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	body := decodeBody(t, rr)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Widget", data["name"])
	client.AssertExpectations(t)
}

func TestProductHandler_Create_InvalidJSON(t *testing.T) {
	client := new(MockProductClient)

	rr := serve(setupRouter(client), http.MethodPost, "/products", `{"name":`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	client.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProductHandler_RemoteErrorsKeepStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *rpc.RemoteError
		status int
	}{
		{
			name:   "invalid input",
			err:    &rpc.RemoteError{Status: 400, Code: "INVALID_INPUT", Message: "price must not be less than 0", Field: "price", Rule: "gte"},
			status: http.StatusBadRequest,
		},
		{
			name:   "not found",
			err:    &rpc.RemoteError{Status: 404, Code: "NOT_FOUND", Message: "Product with id #7 not found"},
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockProductClient)
			client.On("Send", mock.Anything, rpc.CommandFindOne, map[string]string{"id": "7"}, mock.Anything).
				Return(nil, tt.err)

			rr := serve(setupRouter(client), http.MethodGet, "/products/7", "")

			assert.Equal(t, tt.status, rr.Code)
			errBody := decodeBody(t, rr)["error"].(map[string]interface{})
			assert.Equal(t, tt.err.Message, errBody["message"])
			assert.Equal(t, tt.err.Code, errBody["code"])
		})
	}
}

func TestProductHandler_TransportErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "no responders", err: fmt.Errorf("request products.find_all: %w", nats.ErrNoResponders), status: http.StatusServiceUnavailable},
		{name: "timeout", err: fmt.Errorf("request products.find_all: %w", context.DeadlineExceeded), status: http.StatusGatewayTimeout},
		{name: "other", err: errors.New("connection closed"), status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockProductClient)
			client.On("Send", mock.Anything, rpc.CommandFindAll, mock.Anything, mock.Anything).Return(nil, tt.err)

			rr := serve(setupRouter(client), http.MethodGet, "/products", "")

			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestProductHandler_List_ForwardsQuery(t *testing.T) {
	client := new(MockProductClient)
	page := map[string]interface{}{
		"data": []interface{}{},
		"meta": map[string]interface{}{"page": 5, "limit": 10, "lastPage": 1, "total": 3},
	}

	client.On("Send", mock.Anything, rpc.CommandFindAll, map[string]int{"page": 5, "limit": 10}, mock.Anything).
		Return(page, nil)

	rr := serve(setupRouter(client), http.MethodGet, "/products?page=5&limit=10", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":[],"meta":{"page":5,"limit":10,"lastPage":1,"total":3}}`, rr.Body.String())
	client.AssertExpectations(t)
}

func TestProductHandler_List_RejectsNonNumericQuery(t *testing.T) {
	client := new(MockProductClient)

	rr := serve(setupRouter(client), http.MethodGet, "/products?page=two", "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	errBody := decodeBody(t, rr)["error"].(map[string]interface{})
	assert.Equal(t, "page", errBody["field"])
	client.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProductHandler_Update_InjectsPathID(t *testing.T) {
	client := new(MockProductClient)

	client.On("Send", mock.Anything, rpc.CommandUpdate, mock.MatchedBy(func(fields map[string]json.RawMessage) bool {
		return string(fields["id"]) == `"3"` && string(fields["name"]) == `"Gizmo"`
	}), mock.Anything).Return(map[string]interface{}{"id": 3, "name": "Gizmo"}, nil)

	rr := serve(setupRouter(client), http.MethodPatch, "/products/3", `{"name":"Gizmo","id":99}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	client.AssertExpectations(t)
}

func TestProductHandler_Update_RequiresObject(t *testing.T) {
	client := new(MockProductClient)

	rr := serve(setupRouter(client), http.MethodPatch, "/products/3", `[1,2]`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProductHandler_Delete(t *testing.T) {
	client := new(MockProductClient)

	client.On("Send", mock.Anything, rpc.CommandRemove, map[string]string{"id": "1"}, mock.Anything).
		Return(map[string]interface{}{"id": 1, "available": false}, nil)

	rr := serve(setupRouter(client), http.MethodDelete, "/products/1", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	data := decodeBody(t, rr)["data"].(map[string]interface{})
	assert.Equal(t, false, data["available"])
}

func TestProductHandler_Validate(t *testing.T) {
	client := new(MockProductClient)

	client.On("Send", mock.Anything, rpc.CommandValidate, json.RawMessage(`[1,1,2]`), mock.Anything).
		Return([]interface{}{map[string]interface{}{"id": 1}, map[string]interface{}{"id": 2}}, nil)

	rr := serve(setupRouter(client), http.MethodPost, "/products/validate", `[1,1,2]`)

	assert.Equal(t, http.StatusOK, rr.Code)
	data := decodeBody(t, rr)["data"].([]interface{})
	assert.Len(t, data, 2)
}
