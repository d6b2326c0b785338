package response

import (
	"encoding/json"
	"net/http"

	rpcresponse "github.com/Pesokrava/products-ms/internal/delivery/rpc/response"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// Error writes an error envelope using the status it carries
func Error(w http.ResponseWriter, body rpcresponse.ErrorBody) {
	JSON(w, body.Status, map[string]interface{}{
		"error": body,
	})
}

// Fail writes an error envelope built from a status and message
func Fail(w http.ResponseWriter, statusCode int, code, message string) {
	Error(w, rpcresponse.ErrorBody{Status: statusCode, Code: code, Message: message})
}

// Success writes a success response with data
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"data": data,
	})
}

// Created writes a created response
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, map[string]interface{}{
		"data": data,
	})
}
