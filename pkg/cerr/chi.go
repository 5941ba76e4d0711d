package cerr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

type responseReceiverKey struct{}

type responseReceiver struct {
	set      bool
	response any
	message  string
	op       string
	err      error
}

func contextWithResponseReceiver(ctx context.Context, rr *responseReceiver) context.Context {
	return context.WithValue(ctx, responseReceiverKey{}, rr)
}

func responseReceiverFromContext(ctx context.Context) *responseReceiver {
	if rr, ok := ctx.Value(responseReceiverKey{}).(*responseReceiver); ok {
		return rr
	}
	return nil
}

// SetJSONResponse records a successful result; the middleware wraps it in
// the envelope once the handler returns.
func SetJSONResponse(ctx context.Context, message string, response any) {
	if rr := responseReceiverFromContext(ctx); rr != nil {
		rr.set = true
		rr.response = response
		rr.message = message
	}
}

// SetJSONError records a failure of the operation labelled op.
func SetJSONError(ctx context.Context, op string, err error) {
	if rr := responseReceiverFromContext(ctx); rr != nil {
		rr.set = true
		rr.op = op
		rr.err = err
	}
}

func SetNewJSONError(ctx context.Context, op string, code Code, msg string, err error) {
	SetJSONError(ctx, op, NewError(code, msg, err))
}

func NewJSONEnvelopeChiMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			rr := &responseReceiver{}
			ctx := contextWithResponseReceiver(r.Context(), rr)
			next.ServeHTTP(rw, r.WithContext(ctx))
			ExtractToHTTPResponse(ctx, rw, rr)
		})
	}
}

// DecodeJSONRequest decodes the request body into v. A malformed body is an
// InvalidArgument error; an empty body leaves v untouched.
func DecodeJSONRequest(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return NewError(InvalidArgument, "bad request", fmt.Errorf("failed to decode request body: %w", err))
	}
	return nil
}
