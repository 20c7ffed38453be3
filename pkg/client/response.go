package client

import (
	"time"

	"github.com/Sternrassler/cmc-client/pkg/model"
)

// Response is the envelope returned by every API call: a payload plus
// metadata. A failed call carries the zero payload and a metadata error.
type Response[T any] struct {
	Data     T               `json:"data"`
	Metadata *model.Metadata `json:"metadata"`

	// Class is set when Success is false.
	Class ErrorClass `json:"-"`

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int `json:"-"`
}

// Success reports whether metadata is present and carries no error message.
// It is derived on every call; metadata may be modified after decoding.
func (r *Response[T]) Success() bool {
	return r != nil && r.Metadata != nil && !r.Metadata.HasError()
}

// Err returns the failure as a typed error, or nil on success.
func (r *Response[T]) Err() error {
	if r.Success() {
		return nil
	}
	if r == nil {
		return &Error{Class: ErrorClassTransport, Message: "no response"}
	}

	msg := r.Metadata.ErrorMessage()
	if msg == "" {
		msg = "response carried no metadata"
	}
	class := r.Class
	if class == "" {
		class = ErrorClassDomain
	}
	return &Error{Class: class, StatusCode: r.StatusCode, Message: msg}
}

// prefixStatus rewrites the error message to carry the HTTP status.
func (r *Response[T]) prefixStatus(code int) {
	if r.Metadata == nil {
		r.Metadata = &model.Metadata{}
	}
	r.Metadata.SetError(statusMessage(code, r.Metadata.ErrorMessage()))
}

func newFailedResponse[T any](class ErrorClass, status int, msg string) *Response[T] {
	md := &model.Metadata{Timestamp: model.FromTime(time.Now())}
	md.SetError(msg)
	return &Response[T]{
		Metadata:   md,
		Class:      class,
		StatusCode: status,
	}
}
