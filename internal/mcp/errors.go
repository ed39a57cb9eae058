// Package mcp implements the Model Context Protocol server for paperrag.
package mcp

import (
	"context"
	"errors"
	"fmt"

	ragerr "github.com/paperrag/paperrag/internal/errors"
)

// Custom MCP error codes for paperrag.
const (
	// ErrCodeIndexEmpty indicates the corpus has not been indexed yet.
	ErrCodeIndexEmpty = -32001

	// ErrCodeEmbeddingFailed indicates embedding generation failed.
	ErrCodeEmbeddingFailed = -32002

	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout = -32003

	// ErrCodeScanBusy indicates a duplicate scan is already running.
	ErrCodeScanBusy = -32004

	// Standard JSON-RPC error codes.
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var re *ragerr.RagError
	if errors.As(err, &re) {
		return mapRagError(re)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
	}
}

// NewInvalidParamsError creates an error for invalid parameters with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// NewMethodNotFoundError creates an error for unknown tools.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Tool '%s' not found.", name),
	}
}

// mapRagError converts a RagError to an MCPError.
func mapRagError(re *ragerr.RagError) *MCPError {
	switch re.Code {
	case ragerr.ErrCodeCorruptIndex:
		return &MCPError{Code: ErrCodeIndexEmpty, Message: re.Message}
	case ragerr.ErrCodeLockHeld:
		return &MCPError{Code: ErrCodeScanBusy, Message: re.Message}
	case ragerr.ErrCodeEmbeddingFailed, ragerr.ErrCodeEmbedderDown:
		return &MCPError{Code: ErrCodeEmbeddingFailed, Message: re.Message}
	}

	switch re.Category {
	case ragerr.CategoryValidation:
		return &MCPError{Code: ErrCodeInvalidParams, Message: re.Message}
	case ragerr.CategoryNetwork:
		return &MCPError{Code: ErrCodeTimeout, Message: re.Message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: re.Message}
	}
}
