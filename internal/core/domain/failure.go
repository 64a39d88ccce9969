package domain

// ErrorCode is the closed failure taxonomy published on the failure channel.
// Numeric values match the codes the catalog client has always reported, with
// the zero value reserved for "no pending error".
type ErrorCode int

const (
	// CodeNone means no pending error. It is what a reset channel holds.
	CodeNone ErrorCode = 0
	// CodeUnknown covers transport failures, decode failures and unlisted statuses.
	CodeUnknown ErrorCode = -1
	// CodeNoConnectivity is reported when the pre-flight probe fails.
	CodeNoConnectivity ErrorCode = 1001
	// CodeBadRequest is HTTP 400.
	CodeBadRequest ErrorCode = 400
	// CodeUnauthorized is HTTP 401.
	CodeUnauthorized ErrorCode = 401
	// CodeNotFound is HTTP 404.
	CodeNotFound ErrorCode = 404
	// CodeServerError is HTTP 500.
	CodeServerError ErrorCode = 500
	// CodeServiceUnavailable is HTTP 503.
	CodeServiceUnavailable ErrorCode = 503
)

// Fixed user-facing messages, one per code.
const (
	msgUnknown            = "Unknown failure, Unable to process."
	msgNoConnectivity     = "Internet is not available, Unable to process."
	msgBadRequest         = "Bad request, Unable to process."
	msgUnauthorized       = "Unauthorized, Unable to process."
	msgNotFound           = "Not found, Unable to process."
	msgServerError        = "Internal server error, Unable to process."
	msgServiceUnavailable = "Service unavailable, Unable to process."
)

// CodeForStatus maps an HTTP status code to an ErrorCode.
// Statuses outside the taxonomy map to CodeUnknown.
func CodeForStatus(status int) ErrorCode {
	switch ErrorCode(status) {
	case CodeBadRequest, CodeUnauthorized, CodeNotFound, CodeServerError, CodeServiceUnavailable:
		return ErrorCode(status)
	default:
		return CodeUnknown
	}
}

// Message returns the human-readable message for the code.
// Codes outside the taxonomy fall back to the generic unknown message.
func (c ErrorCode) Message() string {
	switch c {
	case CodeNone:
		return ""
	case CodeNoConnectivity:
		return msgNoConnectivity
	case CodeBadRequest:
		return msgBadRequest
	case CodeUnauthorized:
		return msgUnauthorized
	case CodeNotFound:
		return msgNotFound
	case CodeServerError:
		return msgServerError
	case CodeServiceUnavailable:
		return msgServiceUnavailable
	default:
		return msgUnknown
	}
}

// String returns the taxonomy name of the code.
func (c ErrorCode) String() string {
	switch c {
	case CodeNone:
		return "none"
	case CodeNoConnectivity:
		return "noConnectivity"
	case CodeBadRequest:
		return "badRequest"
	case CodeUnauthorized:
		return "unauthorized"
	case CodeNotFound:
		return "notFound"
	case CodeServerError:
		return "serverError"
	case CodeServiceUnavailable:
		return "serviceUnavailable"
	default:
		return "unknown"
	}
}

// Pending reports whether the code represents an error awaiting delivery.
func (c ErrorCode) Pending() bool {
	return c != CodeNone
}
