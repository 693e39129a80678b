package dispatch

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Validator is implemented by request types that can check themselves.
// Validation is explicit composition at the call site, not reflection over
// loaded symbols.
type Validator interface {
	Validate() []FieldViolation
}

// Envelope wraps a domain result with response metadata.
type Envelope struct {
	Data      any    `json:"data"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// Option configures a Handle call.
type Option func(*options)

type options struct {
	wrapOutput bool
}

// WrapOutput wraps the result in an Envelope with a fresh request id.
func WrapOutput() Option {
	return func(o *options) {
		o.wrapOutput = true
	}
}

// Handle runs one request through the pipeline: validate the input when it
// knows how, invoke the domain function, normalize any failure to a single
// structured error, and optionally wrap the result. The pipeline is generic
// over all domains; only the function and the request type vary.
func Handle[Req any, Res any](
	ctx context.Context,
	req Req,
	fn func(context.Context, Req) (Res, error),
	opts ...Option,
) (any, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if v, ok := any(req).(Validator); ok {
		if violations := v.Validate(); len(violations) > 0 {
			return nil, NewValidationError(violations)
		}
	}

	res, err := fn(ctx, req)
	if err != nil {
		var de *Error
		if errors.As(err, &de) {
			return nil, de
		}
		zap.L().Error("dispatch: domain function failed", zap.Error(err))
		return nil, NewInternalError(err)
	}

	if o.wrapOutput {
		return &Envelope{
			Data:      res,
			Message:   "Request received.",
			RequestID: "req-" + uuid.NewString(),
		}, nil
	}
	return res, nil
}
