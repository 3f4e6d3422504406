// Package binder decodes HTTP request bodies into typed values.
package binder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// DefaultMaxBodyBytes caps JSON bodies read by JSON.
const DefaultMaxBodyBytes int64 = 1 << 20

// JSONOption configures the JSON binder.
type JSONOption func(*jsonBinder)

type jsonBinder struct {
	maxBytes       int64
	disallowFields bool
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) JSONOption {
	return func(b *jsonBinder) {
		if n > 0 {
			b.maxBytes = n
		}
	}
}

// WithStrictFields rejects bodies carrying fields the target does not declare.
func WithStrictFields() JSONOption {
	return func(b *jsonBinder) {
		b.disallowFields = true
	}
}

// JSON returns a binder for application/json bodies. Unknown fields are
// ignored unless WithStrictFields is set.
func JSON(opts ...JSONOption) func(r *http.Request, v any) error {
	b := &jsonBinder{maxBytes: DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(b)
	}
	return b.bind
}

func (b *jsonBinder) bind(r *http.Request, v any) error {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return fmt.Errorf("%w: expected application/json", ErrMissingContentType)
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("%w: got %s, expected application/json", ErrUnsupportedMediaType, contentType)
	}

	body := http.MaxBytesReader(nil, r.Body, b.maxBytes)
	decoder := json.NewDecoder(body)
	if b.disallowFields {
		decoder.DisallowUnknownFields()
	}

	if err := decoder.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxErr.Limit)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: empty body", ErrInvalidJSON)
		default:
			return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
	}

	var extra json.RawMessage
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxErr.Limit)
		}
		return fmt.Errorf("%w: unexpected data after JSON object", ErrInvalidJSON)
	}

	return nil
}
