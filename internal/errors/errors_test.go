package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryFromCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		category Category
	}{
		{"config code", ErrCodeConfigInvalid, CategoryConfig},
		{"io code", ErrCodeCorruptIndex, CategoryIO},
		{"network code", ErrCodeNetworkTimeout, CategoryNetwork},
		{"validation code", ErrCodeQueryEmpty, CategoryValidation},
		{"internal code", ErrCodeSearchFailed, CategoryInternal},
		{"malformed code", "BADCODE", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "boom", nil)
			assert.Equal(t, tt.category, err.Category)
		})
	}
}

func TestNew_RetryableAndSeverity(t *testing.T) {
	timeout := New(ErrCodeNetworkTimeout, "embedder timeout", nil)
	assert.True(t, timeout.Retryable)
	assert.Equal(t, SeverityWarning, timeout.Severity)

	corrupt := New(ErrCodeCorruptIndex, "index corrupted", nil)
	assert.False(t, corrupt.Retryable)
	assert.Equal(t, SeverityFatal, corrupt.Severity)

	invalid := New(ErrCodeInvalidInput, "bad input", nil)
	assert.Equal(t, SeverityError, invalid.Severity)
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrCodeNetworkUnavailable, cause)

	require.NotNil(t, err)
	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), ErrCodeNetworkUnavailable)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestIs_MatchesByCode(t *testing.T) {
	a := New(ErrCodeQueryEmpty, "empty query", nil)
	b := New(ErrCodeQueryEmpty, "different message", nil)
	c := New(ErrCodeInvalidInput, "other code", nil)

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

func TestWithDetail_Chains(t *testing.T) {
	err := New(ErrCodeSearchFailed, "search failed", nil).
		WithDetail("query", "attention").
		WithDetail("limit", "10")

	assert.Equal(t, "attention", err.Details["query"])
	assert.Equal(t, "10", err.Details["limit"])
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(ErrCodeEmbedderDown, "down", nil)))
	assert.False(t, IsRetryable(New(ErrCodeInvalidInput, "bad", nil)))
	assert.False(t, IsRetryable(stderrors.New("plain error")))
	assert.False(t, IsRetryable(nil))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeDedupFailed, GetCode(New(ErrCodeDedupFailed, "x", nil)))
	assert.Empty(t, GetCode(stderrors.New("plain")))
}
