package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The message table is total: every input lands on exactly one fixed message.
func TestErrorTable(t *testing.T) {
	tests := []struct {
		name    string
		code    ErrorCode
		want    ErrorCode
		message string
	}{
		{"400", CodeForStatus(400), CodeBadRequest, "Bad request, Unable to process."},
		{"401", CodeForStatus(401), CodeUnauthorized, "Unauthorized, Unable to process."},
		{"404", CodeForStatus(404), CodeNotFound, "Not found, Unable to process."},
		{"500", CodeForStatus(500), CodeServerError, "Internal server error, Unable to process."},
		{"503", CodeForStatus(503), CodeServiceUnavailable, "Service unavailable, Unable to process."},
		{"418", CodeForStatus(418), CodeUnknown, "Unknown failure, Unable to process."},
		{"302", CodeForStatus(302), CodeUnknown, "Unknown failure, Unable to process."},
		{"0", CodeForStatus(0), CodeUnknown, "Unknown failure, Unable to process."},
		{"no connectivity", CodeNoConnectivity, CodeNoConnectivity, "Internet is not available, Unable to process."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code)
			assert.Equal(t, tt.message, tt.code.Message())
		})
	}
}

func TestErrorCode_UnlistedValueFallsBackToUnknownMessage(t *testing.T) {
	assert.Equal(t, "Unknown failure, Unable to process.", ErrorCode(999).Message())
	assert.Equal(t, "unknown", ErrorCode(999).String())
}

func TestErrorCode_None(t *testing.T) {
	var zero ErrorCode
	assert.Equal(t, CodeNone, zero)
	assert.False(t, zero.Pending())
	assert.Empty(t, zero.Message())
	assert.Equal(t, "none", zero.String())
	assert.True(t, CodeUnknown.Pending())
}

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "noConnectivity", CodeNoConnectivity.String())
	assert.Equal(t, "badRequest", CodeBadRequest.String())
	assert.Equal(t, "unauthorized", CodeUnauthorized.String())
	assert.Equal(t, "notFound", CodeNotFound.String())
	assert.Equal(t, "serverError", CodeServerError.String())
	assert.Equal(t, "serviceUnavailable", CodeServiceUnavailable.String())
	assert.Equal(t, "unknown", CodeUnknown.String())
}
