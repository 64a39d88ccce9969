package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrDecode", ErrDecode},
		{"ErrRepositoryClosed", ErrRepositoryClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestStatusError_Error(t *testing.T) {
	assert.Equal(t, "catalog responded with status 404", (&StatusError{StatusCode: 404}).Error())
	assert.Equal(t, "catalog responded with status 500: boom",
		(&StatusError{StatusCode: 500, Message: "boom"}).Error())
}

func TestSearchError_UsesCodeMessage(t *testing.T) {
	err := &SearchError{Code: CodeUnauthorized}
	assert.Equal(t, "Unauthorized, Unable to process.", err.Error())
}

func TestCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, CodeNone},
		{"status 401", &StatusError{StatusCode: 401}, CodeUnauthorized},
		{"wrapped status 503", fmt.Errorf("fetch: %w", &StatusError{StatusCode: 503}), CodeServiceUnavailable},
		{"unlisted status", &StatusError{StatusCode: 418}, CodeUnknown},
		{"decode failure", fmt.Errorf("page 1: %w", ErrDecode), CodeUnknown},
		{"transport failure", errors.New("connection reset by peer"), CodeUnknown},
		{"search error", &SearchError{Code: CodeNoConnectivity}, CodeNoConnectivity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeForError(tt.err))
		})
	}
}
