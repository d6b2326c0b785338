package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Pesokrava/products-ms/internal/domain"
)

const maxPayloadSize = 1 << 20 // 1MB

// ID is a product id accepted as a JSON integer or a numeric string
type ID int64

// UnmarshalJSON implements json.Unmarshaler
func (id *ID) UnmarshalJSON(b []byte) error {
	raw := string(b)
	if raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return domain.NewInvalidInput("id", "int", "id must be an integer number")
	}
	*id = ID(n)
	return nil
}

// CreateProductRequest is the payload of the create command.
// The price bounds match the NUMERIC(14,4) products.price column.
type CreateProductRequest struct {
	Name  string           `json:"name" validate:"required"`
	Price *decimal.Decimal `json:"price" validate:"required,gte=0,lte=9999999999.9999,decimals=4"`
}

// UpdateProductRequest is the payload of the update command; absent fields are kept
type UpdateProductRequest struct {
	ID    *ID              `json:"id" validate:"required"`
	Name  *string          `json:"name" validate:"omitempty,min=1"`
	Price *decimal.Decimal `json:"price" validate:"omitempty,gte=0,lte=9999999999.9999,decimals=4"`
}

// IDRequest is the payload of the find_one and remove commands.
// Any integer id is accepted; ids that match no product are reported as not found.
type IDRequest struct {
	ID *ID `json:"id" validate:"required"`
}

// PaginationRequest is the payload of the find_all command
type PaginationRequest struct {
	Page  *int `json:"page" validate:"omitempty,min=1"`
	Limit *int `json:"limit" validate:"omitempty,min=1"`
}

// DecodeJSON decodes a JSON object payload into v, rejecting fields v does not declare.
// An empty payload leaves v untouched.
func DecodeJSON(payload []byte, v interface{}) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if len(payload) > maxPayloadSize {
		return domain.NewInvalidInput("", "size", "payload is too large")
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.NewInvalidInput("", "json", "payload must contain a single JSON value")
	}
	return nil
}

// DecodeIDs decodes the validate payload, a JSON array of product ids
func DecodeIDs(payload []byte) ([]int64, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, domain.NewInvalidInput("ids", "required", "ids should not be empty")
	}
	if trimmed[0] != '[' {
		return nil, domain.NewInvalidInput("ids", "array", "ids must be an array of integers")
	}

	var ids []ID
	if err := DecodeJSON(trimmed, &ids); err != nil {
		return nil, err
	}

	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out, nil
}

func decodeError(err error) error {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "payload"
		}
		return domain.NewInvalidInput(field, "type", fmt.Sprintf("%s must be of type %s", field, typeName(typeErr.Type.String())))
	}

	if strings.HasPrefix(err.Error(), "json: unknown field ") {
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return domain.NewInvalidInput(field, "unknown_field", fmt.Sprintf("property %s should not exist", field))
	}

	return domain.NewInvalidInput("", "json", fmt.Sprintf("malformed payload: %v", err))
}

func typeName(goType string) string {
	goType = strings.TrimLeft(goType, "*[]")
	switch goType {
	case "int", "int64", "request.ID":
		return "integer"
	case "string":
		return "string"
	case "bool":
		return "boolean"
	default:
		return "object"
	}
}
