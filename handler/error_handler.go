package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/authsvc/binder"
	"github.com/dmitrymomot/authsvc/pkg/logger"
)

// ErrorMapper translates domain errors into an HTTPError. It reports false
// for errors it does not recognise.
type ErrorMapper func(err error) (HTTPError, bool)

// ErrorHandlerOption configures NewErrorHandler.
type ErrorHandlerOption func(*errorHandler)

type errorHandler struct {
	log           *slog.Logger
	mappers       []ErrorMapper
	exposeDetails bool
}

func WithLogger(log *slog.Logger) ErrorHandlerOption {
	return func(h *errorHandler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithMapper adds a mapper. Mappers are consulted in the order they were added,
// before HTTPError and binder errors.
func WithMapper(m ErrorMapper) ErrorHandlerOption {
	return func(h *errorHandler) {
		if m != nil {
			h.mappers = append(h.mappers, m)
		}
	}
}

// WithExposeDetails adds the internal error text to 5xx bodies.
// Enable it in development only.
func WithExposeDetails(expose bool) ErrorHandlerOption {
	return func(h *errorHandler) {
		h.exposeDetails = expose
	}
}

// NewErrorHandler returns an ErrorHandler that writes
// {"code","message","details"?,...meta,"error"?} with the classified status.
func NewErrorHandler(opts ...ErrorHandlerOption) ErrorHandler {
	h := &errorHandler{
		log: logger.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h.handle
}

func (h *errorHandler) handle(ctx Context, err error) {
	info := h.classify(err)
	r := ctx.Request()

	h.log.LogAttrs(r.Context(), logLevel(info.Code), "request error",
		logger.RequestID(middleware.GetReqID(r.Context())),
		logger.Error(err),
		slog.Int("status_code", info.Code),
		slog.String("code", info.Key),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		logger.Component("error_handler"),
	)

	body := make(map[string]any, 4+len(info.Meta))
	maps.Copy(body, info.Meta)
	body["code"] = info.Key
	body["message"] = info.Message
	if len(info.Details) > 0 {
		body["details"] = info.Details
	}
	if h.exposeDetails && info.Code >= http.StatusInternalServerError {
		body["error"] = err.Error()
	}

	var buf bytes.Buffer
	if encErr := json.NewEncoder(&buf).Encode(body); encErr != nil {
		h.log.ErrorContext(r.Context(), "failed to encode error body", logger.Error(encErr))
		http.Error(ctx.ResponseWriter(), ErrInternalServerError.Message, http.StatusInternalServerError)
		return
	}

	w := ctx.ResponseWriter()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(info.Code)
	_, _ = w.Write(buf.Bytes())
}

func (h *errorHandler) classify(err error) HTTPError {
	for _, m := range h.mappers {
		if info, ok := m(err); ok {
			return withDefaults(info)
		}
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return withDefaults(httpErr)
	}

	switch {
	case errors.Is(err, binder.ErrBodyTooLarge):
		return ErrBadRequest.WithMessage("Request body too large")
	case errors.Is(err, binder.ErrMissingContentType),
		errors.Is(err, binder.ErrUnsupportedMediaType):
		return ErrBadRequest.WithMessage("Expected application/json body")
	case errors.Is(err, binder.ErrInvalidJSON):
		return ErrBadRequest.WithMessage("Malformed JSON body")
	}

	return ErrInternalServerError
}

func withDefaults(e HTTPError) HTTPError {
	if e.Code == 0 {
		e.Code = http.StatusInternalServerError
	}
	if e.Key == "" {
		e.Key = ErrInternalServerError.Key
	}
	if e.Message == "" {
		e.Message = http.StatusText(e.Code)
	}
	return e
}

func logLevel(status int) slog.Level {
	if status < http.StatusInternalServerError {
		return slog.LevelWarn
	}
	return slog.LevelError
}
