package handler

// Every JSON endpoint answers with the same envelope:
//
//	{"success": true,  "data": <payload>, "message": "..."}
//	{"success": false, "error": "<message>", "fields": {"<field>": "<message>"}}
//
// Handlers return (*Result, error) and Serve writes the envelope exactly
// once, mapping apperror kinds to status codes.

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/devdesk/internal/apperror"
	"github.com/sakif/devdesk/internal/auth"
	"github.com/sakif/devdesk/internal/model"
	"github.com/sakif/devdesk/internal/repository"
	"github.com/sakif/devdesk/internal/validation"
)

const (
	maxBodyBytes    = 1 << 20
	msgInternal     = "An internal error occurred"
	msgInvalidJSON  = "Invalid JSON body"
	msgUnauthorized = "Unauthorized"
)

// Result is a successful response. Status defaults to 200. Cookies are
// set before the body is written.
type Result struct {
	Status  int
	Data    any
	Message string
	Cookies []*http.Cookie
}

// Func is an endpoint that produces a Result or an error.
type Func func(r *http.Request) (*Result, error)

type successEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

type errorEnvelope struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Serve adapts fn to an http.HandlerFunc.
func Serve(logger *slog.Logger, fn Func) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}

		res, err := fn(r)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		if res == nil {
			res = &Result{}
		}
		status := res.Status
		if status == 0 {
			status = http.StatusOK
		}
		for _, c := range res.Cookies {
			http.SetCookie(w, c)
		}
		writeJSON(w, logger, status, successEnvelope{Success: true, Data: res.Data, Message: res.Message})
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError maps domain errors to HTTP. Anything that is not an
// *apperror.AppError is logged and hidden behind a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		logger.Error("request failed",
			slog.String("requestID", chimiddleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeJSON(w, logger, http.StatusInternalServerError, errorEnvelope{Error: msgInternal})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
	}
	writeJSON(w, logger, status, errorEnvelope{Error: appErr.Message, Fields: appErr.Fields})
}

// decode reads a JSON body into dst. An empty body leaves dst untouched so
// validation reports the missing fields.
func decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.ValidationFailed("body", "Request body too large")
	}
	return apperror.ValidationFailed("body", msgInvalidJSON)
}

// uuidParam returns the named path parameter after checking its format.
func uuidParam(r *http.Request, name string) (string, error) {
	v := chi.URLParam(r, name)
	if err := validation.UUIDParam(name, v); err != nil {
		return "", err
	}
	return v, nil
}

// listOptions reads ?limit= and ?offset=.
func listOptions(r *http.Request) (repository.ListOptions, error) {
	var opts repository.ListOptions
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return opts, apperror.ValidationFailed("limit", "limit must be a positive integer")
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, apperror.ValidationFailed("offset", "offset must be a non-negative integer")
		}
		opts.Offset = n
	}
	return opts, nil
}

// caller returns the authenticated user set by auth.RequireAuth.
func caller(r *http.Request) (*model.User, error) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		return nil, apperror.Unauthorized(msgUnauthorized)
	}
	return u, nil
}

// list keeps empty collections encoded as [] rather than null.
func list[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func success(data any, message string) *Result {
	return &Result{Data: data, Message: message}
}

func created(data any, message string) *Result {
	return &Result{Status: http.StatusCreated, Data: data, Message: message}
}
