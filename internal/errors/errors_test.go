package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "error without cause",
			err:      NewEmptyDatasetError("no valid rows after cleaning"),
			expected: "[EMPTY_DATASET] no valid rows after cleaning",
		},
		{
			name:     "error with cause",
			err:      NewLoadError("failed to open input file", fmt.Errorf("no such file")),
			expected: "[LOAD] failed to open input file: no such file",
		},
		{
			name:     "export error with cause",
			err:      NewExportError("failed to create output directory", fmt.Errorf("permission denied")),
			expected: "[EXPORT] failed to create output directory: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := NewLoadError("failed to read input", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestAppError_WithContext(t *testing.T) {
	err := NewParsingError("failed to parse row", nil).
		WithContext("row", 42).
		WithContext("column", "quantity")

	assert.Equal(t, 42, err.Context["row"])
	assert.Equal(t, "quantity", err.Context["column"])
}

func TestIsType(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		errType ErrorType
		want    bool
	}{
		{
			name:    "matching type",
			err:     NewEmptyDatasetError("empty"),
			errType: ErrTypeEmptyDataset,
			want:    true,
		},
		{
			name:    "mismatched type",
			err:     NewLoadError("bad input", nil),
			errType: ErrTypeExport,
			want:    false,
		},
		{
			name:    "plain error",
			err:     fmt.Errorf("plain"),
			errType: ErrTypeLoad,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsType(tt.err, tt.errType))
		})
	}
}

func TestErrorsAs(t *testing.T) {
	err := NewConfigError("invalid threshold", nil)

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeConfig, appErr.Type)
}
