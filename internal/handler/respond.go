package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/smartinventory/pos/internal/domain/billing"
	"github.com/smartinventory/pos/internal/domain/catalog"
	"github.com/smartinventory/pos/internal/domain/customer"
	"github.com/smartinventory/pos/internal/domain/identity"
	"github.com/smartinventory/pos/internal/domain/settings"
	"github.com/smartinventory/pos/internal/storage/postgres"
	"github.com/smartinventory/pos/internal/validate"
)

// maxBodySize caps request bodies. Carts and account payloads are tiny.
const maxBodySize = 1 << 20

// writeJSON encodes a response body with jx and writes it with the given
// status code.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := &jx.Encoder{}
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes the {code, message} error envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(status) })
			e.Field("message", func(e *jx.Encoder) { e.Str(message) })
		})
	})
}

// readBody reads and size-limits the request body.
func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBodySize))
}

// decodeBody reads the request body and runs the field-wise decoder over the
// top-level object.
func decodeBody(r *http.Request, field func(d *jx.Decoder, key string) error) error {
	body, err := readBody(r)
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	d := jx.DecodeBytes(body)
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		return field(d, string(key))
	})
}

// respondError maps a domain error onto an HTTP status and the error
// envelope. Unrecognised errors are logged and reported as 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		stockErr *billing.InsufficientStockError
		pnfErr   *billing.ProductNotFoundError
		qtyErr   *billing.InvalidQuantityError
		cardErr  *billing.CardError
	)

	switch {
	case errors.Is(err, billing.ErrEmptyCart),
		errors.Is(err, billing.ErrNameRequired),
		errors.Is(err, billing.ErrInvalidPaymentMode),
		errors.Is(err, catalog.ErrEmptyName),
		errors.Is(err, catalog.ErrNegativeAmount),
		errors.Is(err, settings.ErrUnknownKey),
		errors.Is(err, identity.ErrEmptyCredentials),
		errors.Is(err, errBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.As(err, &qtyErr),
		errors.As(err, &cardErr),
		errors.Is(err, validate.ErrInvalidFormat),
		errors.Is(err, validate.ErrInvalidChecksum),
		errors.Is(err, validate.ErrExpired),
		errors.Is(err, identity.ErrWeakPassword):
		writeError(w, http.StatusUnprocessableEntity, err.Error())

	case errors.As(err, &pnfErr),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, postgres.ErrInvoiceNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.As(err, &stockErr):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, identity.ErrNotFound),
		errors.Is(err, identity.ErrWrongPassword):
		writeError(w, http.StatusUnauthorized, "invalid credentials")

	case errors.Is(err, identity.ErrUsernameTaken):
		writeError(w, http.StatusConflict, err.Error())

	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// errBadRequest marks malformed request payloads and parameters.
var errBadRequest = errors.New("bad request")

func badRequestf(format string, args ...any) error {
	return errors.Wrapf(errBadRequest, format, args...)
}
