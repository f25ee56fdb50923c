package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/internal/stock/usecase/query"
	"github.com/tair/stock-ledger/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Response is the envelope of every API reply
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// statusFor maps an error kind to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err in the envelope. Internal failures are logged and
// hidden from the caller.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	resp := Response{Success: false}

	if de, ok := domain.AsError(err); ok && status != http.StatusInternalServerError {
		resp.Error = de.Message
		resp.Code = de.Code()
		resp.Fields = de.Fields
	} else {
		logger.Error(ctx).Err(err).Msg("Request failed")
		resp.Error = "internal error"
		resp.Code = domain.KindCode(nil)
	}

	respondJSON(w, status, resp)
}

// decodeJSON reads a bounded body, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Validation("request body required", nil)
		}
		return domain.Validation(fmt.Sprintf("invalid request body: %v", err), nil)
	}
	return nil
}

func pathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil || id == 0 {
		return 0, domain.Validation("invalid "+name, map[string]string{name: "uint"})
	}
	return uint(id), nil
}

func pageFrom(r *http.Request) (query.Page, error) {
	var page query.Page
	fields := map[string]string{}

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fields["limit"] = "gte=0"
		}
		page.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fields["offset"] = "gte=0"
		}
		page.Offset = n
	}

	if len(fields) > 0 {
		return query.Page{}, domain.Validation("invalid pagination", fields)
	}
	return page, nil
}

func validationError(field, tag string) error {
	return domain.Validation("invalid input", map[string]string{field: tag})
}
