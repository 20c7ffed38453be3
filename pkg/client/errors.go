package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Sternrassler/cmc-client/pkg/model"
)

// ErrorClass classifies failed responses.
type ErrorClass string

const (
	// ErrorClassTransport means no usable HTTP response was received.
	ErrorClassTransport ErrorClass = "transport"

	// ErrorClassDecode means the body could not be decoded.
	ErrorClassDecode ErrorClass = "decode"

	// ErrorClassDomain means the API itself reported an error.
	ErrorClassDomain ErrorClass = "domain"

	// ErrorClassPagination means a collection was aborted by the page budget.
	ErrorClassPagination ErrorClass = "pagination"
)

// Error is the typed view of a failed response.
type Error struct {
	Class      ErrorClass
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("CMC %s error (status %d): %s", e.Class, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("CMC %s error: %s", e.Class, e.Message)
}

// statusMessage formats an error message carrying the HTTP status.
func statusMessage(code int, msg string) string {
	return fmt.Sprintf("HTTP Response - Status code: %d %s. Message: %s.", code, http.StatusText(code), msg)
}

// describeTransportError names the failing stage, the error type and its cause.
func describeTransportError(stage string, err error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %T: %v.", stage, err, err)
	if inner := errors.Unwrap(err); inner != nil {
		fmt.Fprintf(&b, " Inner error: %v.", inner)
	}
	return b.String()
}

// describeDecodeError reports what failed, where, and the raw body received.
func describeDecodeError(err error, body []byte) string {
	var (
		b         strings.Builder
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		timeErr   *model.TimestampError
	)

	switch {
	case errors.As(err, &syntaxErr):
		line, col := position(body, syntaxErr.Offset)
		fmt.Fprintf(&b, "Syntax error: %v. Line: %d, column: %d.", syntaxErr, line, col)
	case errors.As(err, &typeErr):
		fmt.Fprintf(&b, "Type error: %v. Path: '%s'.", typeErr, typeErr.Field)
	case errors.As(err, &timeErr):
		fmt.Fprintf(&b, "Timestamp error: %v.", timeErr)
	default:
		fmt.Fprintf(&b, "Decode error: %T: %v.", err, err)
	}
	fmt.Fprintf(&b, " Received data: '%s'.", body)
	return b.String()
}

// position converts a byte offset into a 1-based line and column.
func position(body []byte, offset int64) (line, col int) {
	if offset > int64(len(body)) {
		offset = int64(len(body))
	}
	line, col = 1, 1
	for _, c := range body[:offset] {
		if c == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
