package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/apm-demo-service/internal/repository"
)

// errorText holds the per-endpoint prefixes of database error bodies.
type errorText struct {
	connection string
	unexpected string
}

var (
	defaultErrorText = errorText{
		connection: "DB connection failed: ",
		unexpected: "Unexpected error: ",
	}
	slowProductsErrorText = errorText{
		connection: "DB connection failed (slow): ",
		unexpected: "Unexpected error in /products/slow: ",
	}
)

// encodeError marks a failure to serialize a response body.
type encodeError struct {
	err error
}

func (e *encodeError) Error() string { return "encode response: " + e.err.Error() }

func (e *encodeError) Unwrap() error { return e.err }

// writeError maps an error onto a 500 JSON body.
func writeError(c *gin.Context, text errorText, err error) {
	var (
		connErr *repository.ConnectionError
		encErr  *encodeError
		message string
	)
	switch {
	case errors.As(err, &connErr):
		message = text.connection + err.Error()
	case errors.As(err, &encErr):
		message = "failed to encode response"
	default:
		message = text.unexpected + err.Error()
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

// writeJSON encodes body up front so an encoding failure can still produce
// a proper error response.
func writeJSON(c *gin.Context, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		writeError(c, defaultErrorText, &encodeError{err: err})
		return
	}
	c.Data(status, "application/json; charset=utf-8", data)
}
