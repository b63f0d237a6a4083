package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cart "github.com/dwikikusuma/storefront/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	checkout "github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/httpclient"
)

var (
	errBadRequest  = errors.New("malformed request body")
	errUnavailable = errors.New("service unavailable")
)

// codeFromError classifies app errors the same way the gRPC surface would.
func codeFromError(err error) codes.Code {
	if st, ok := status.FromError(err); ok {
		return st.Code()
	}

	var upstream *httpclient.StatusError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, catalogapp.ErrInvalidInput),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidItem),
		errors.Is(err, cart.ErrInvalidAddress),
		errors.Is(err, cart.ErrUnknownRate),
		errors.Is(err, checkout.ErrTooManyParcels):
		return codes.InvalidArgument
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkoutapp.ErrAddressRequired):
		return codes.FailedPrecondition
	case errors.Is(err, catalogapp.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, errUnavailable),
		errors.Is(err, checkoutapp.ErrUnavailable),
		errors.As(err, &upstream):
		return codes.Unavailable
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	default:
		return codes.Internal
	}
}

func httpStatusFromCode(c codes.Code) (int, string) {
	switch c {
	case codes.InvalidArgument:
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case codes.FailedPrecondition:
		return http.StatusBadRequest, "FAILED_PRECONDITION"
	case codes.NotFound:
		return http.StatusNotFound, "NOT_FOUND"
	case codes.Unavailable, codes.DeadlineExceeded:
		return http.StatusServiceUnavailable, "UNAVAILABLE"
	case codes.Canceled:
		return 499, "CANCELED"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

// httpStatusFromError returns the HTTP status, the stable error code and the
// message safe to show to clients.
func httpStatusFromError(err error) (int, string, string) {
	code := codeFromError(err)
	httpStatus, name := httpStatusFromCode(code)
	if code == codes.Internal {
		return httpStatus, name, "internal error"
	}
	if st, ok := status.FromError(err); ok {
		return httpStatus, name, st.Message()
	}
	return httpStatus, name, err.Error()
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	httpStatus, code, msg := httpStatusFromError(err)
	if httpStatus >= http.StatusInternalServerError {
		s.log.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("code", code),
			slog.Any("err", err),
		)
	}
	writeJSON(w, httpStatus, errorBody{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return errBadRequest
	}
	return nil
}
