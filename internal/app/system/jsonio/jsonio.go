// Package jsonio holds the small read/write helpers shared by every
// JSON handler. Responses all carry Content-Type application/json;
// errors use a single {"error": "..."} shape so clients can parse
// failures uniformly.
package jsonio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes caps JSON request bodies. Spreadsheet and document
// uploads use multipart forms with their own limits.
const maxBodyBytes = 1 << 20 // 1 MiB

// Respond writes v as JSON with the given status code.
func Respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"error": msg} with the given status code.
func Error(w http.ResponseWriter, status int, msg string) {
	Respond(w, status, map[string]string{"error": msg})
}

// Decode reads the request body into dst, rejecting unknown fields and
// oversized bodies. Returns a message suitable for a 400 response.
func Decode(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return fmt.Errorf("request body is empty")
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body too large")
		default:
			return fmt.Errorf("invalid JSON: %w", err)
		}
	}
	// One JSON value only.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}
