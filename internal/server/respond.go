package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxBodyBytes caps webhook request bodies. The payload is metadata
// about an email, never the attachments themselves, so 1 MB is ample.
const maxBodyBytes = 1 << 20

// problem is an RFC 7807 problem details body. Stage and RequestID are
// extension members carried on filing failures.
type problem struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Stage     string `json:"stage,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// respondJSON writes a JSON response. Marshaling first prevents a
// partial body when encoding fails after headers are sent.
func respondJSON(w http.ResponseWriter, status int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		respondProblem(w, problem{
			Status: http.StatusInternalServerError,
			Detail: "failed to encode response",
		})

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// respondProblem writes an RFC 7807 error response. Type and Title are
// derived from Status when unset.
func respondProblem(w http.ResponseWriter, p problem) {
	if p.Type == "" {
		p.Type = problemType(p.Status)
	}

	if p.Title == "" {
		p.Title = http.StatusText(p.Status)
	}

	payload, err := json.Marshal(p)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))

		return
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	w.Write(payload)
}

// problemType returns the RFC 7807 type URI for a status code.
func problemType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.1"
	case http.StatusNotFound:
		return "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.4"
	case http.StatusUnprocessableEntity:
		return "https://datatracker.ietf.org/doc/html/rfc4918#section-11.2"
	case http.StatusInternalServerError:
		return "https://datatracker.ietf.org/doc/html/rfc7231#section-6.6.1"
	case http.StatusBadGateway:
		return "https://datatracker.ietf.org/doc/html/rfc7231#section-6.6.3"
	case http.StatusGatewayTimeout:
		return "https://datatracker.ietf.org/doc/html/rfc7231#section-6.6.5"
	default:
		return "about:blank"
	}
}

// parseJSON decodes the request body into dst, capped at maxBodyBytes.
func parseJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
