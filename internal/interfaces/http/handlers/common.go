// Package handlers contains the HTTP request handlers.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	chimw "github.com/go-chi/chi/v5/middleware"

	appErrors "github.com/turtacn/ChemRxn-Core/pkg/errors"
	"github.com/turtacn/ChemRxn-Core/pkg/types/common"
)

// parsePagination extracts page and page_size from query parameters, falling
// back to defaults when a parameter is missing or out of bounds.
func parsePagination(r *http.Request) common.Pagination {
	p := common.Pagination{Page: 1, PageSize: 20}

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.Page = n
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.PageSize = n
		}
	}
	if p.Validate() != nil {
		return common.Pagination{Page: 1, PageSize: 20}
	}
	return p
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeData wraps a payload in the standard response envelope.
func writeData[T any](w http.ResponseWriter, r *http.Request, statusCode int, data T) {
	resp := common.NewSuccessResponse(data)
	resp.RequestID = chimw.GetReqID(r.Context())
	writeJSON(w, statusCode, resp)
}

// writePage wraps a result page in the standard response envelope, carrying
// the page bounds and total count alongside the items.
func writePage[T any](w http.ResponseWriter, r *http.Request, items []T, p common.Pagination) {
	resp := common.NewSuccessResponse(items)
	resp.RequestID = chimw.GetReqID(r.Context())
	resp.Pagination = &p
	writeJSON(w, http.StatusOK, resp)
}

// writeAppError maps application-level errors to HTTP status codes using the
// error's own code.  Unclassified errors are masked as internal.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	code := appErrors.GetCode(err)
	status := http.StatusInternalServerError
	message := "internal server error"

	if s, ok := appErrors.ErrorCodeHTTPStatus[code]; ok {
		status = s
	}
	// Mask server-side failure details.
	if status < http.StatusInternalServerError {
		message = err.Error()
	}
	resp := common.NewErrorResponse(code.String(), message)
	resp.RequestID = chimw.GetReqID(r.Context())
	writeJSON(w, status, resp)
}

// writeBadRequest reports a malformed request body or parameter.
func writeBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	resp := common.NewErrorResponse(appErrors.ErrCodeBadRequest.String(), message)
	resp.RequestID = chimw.GetReqID(r.Context())
	writeJSON(w, http.StatusBadRequest, resp)
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
