package cerr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"

	"github.com/kazz187/taskboard/pkg/clog"
)

type Error struct {
	Code  Code
	Msg   string // short title returned to the user with Code
	Op    string // label of the operation that failed, e.g. "Edit Task Error"
	Err   error  // underlying error kept for the log
	Stack string
}

func NewError(code Code, msg string, underlying error) *Error {
	err := &Error{
		Code: code,
		Msg:  msg,
		Err:  underlying,
	}
	if clog.HTTPStatusToLevel(code.HTTPCode()) == clog.LevelError {
		stackTrace := make([]byte, 2048)
		n := runtime.Stack(stackTrace, false)
		err.Stack = string(stackTrace[0:n])
	}
	return err
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code.String(), e.Msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code.String(), e.Msg, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Envelope is the body written for every API response.
type Envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data"`
	Error   *EnvelopeError `json:"error"`
	Message string         `json:"message"`
}

type EnvelopeError struct {
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Context string `json:"context,omitempty"`
}

// Normalize converts any error into an *Error, treating cancellation as
// Canceled and anything unrecognized as Unknown.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return NewError(Canceled, "connection closed", err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.Err == "operation was canceled" {
		return NewError(Canceled, "connection closed", err)
	}
	var cErr *Error
	if errors.As(err, &cErr) {
		return cErr
	}
	return NewError(Unknown, "unknown error", err)
}

func ExtractToHTTPResponse(ctx context.Context, rw http.ResponseWriter, response *responseReceiver) {
	if response.err == nil {
		if !response.set {
			// handler wrote to rw directly (event streams)
			return
		}
		writeJSON(ctx, rw, http.StatusOK, &Envelope{
			Success: true,
			Data:    response.response,
			Message: response.message,
		})
		return
	}

	cErr := Normalize(response.err)
	if cErr.Code != Canceled {
		clog.AddError(ctx, response.err)
		if cErr.Stack != "" {
			clog.AddStack(ctx, cErr.Stack)
		}
	}
	op := response.op
	if cErr.Op != "" {
		op = cErr.Op
	}
	writeJSON(ctx, rw, cErr.Code.HTTPCode(), &Envelope{
		Success: false,
		Error: &EnvelopeError{
			Code:    cErr.Code.String(),
			Status:  cErr.Code.HTTPCode(),
			Context: op,
		},
		Message: cErr.Msg,
	})
}

func writeJSON(ctx context.Context, rw http.ResponseWriter, status int, env *Envelope) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(env); err != nil {
		clog.AddError(ctx, NewError(Internal, "server error", err))
		status = http.StatusInternalServerError
		buf = bytes.NewBufferString(`{"success":false,"data":null,"error":{"code":"internal","status":500},"message":"server error"}`)
	}
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(status)
	if _, err := rw.Write(buf.Bytes()); err != nil {
		clog.AddError(ctx, NewError(Internal, "server error", err))
	}
}

func IsCode(err error, code Code) bool {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code == code
	}
	return false
}
