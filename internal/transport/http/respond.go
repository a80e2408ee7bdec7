// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// domain services, and encode; business rules stay out of this package.
package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "offboard/pkg/domainerrors"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain error codes to HTTP statuses. Internal errors get a
// generic body; the detail belongs in the server log only.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)

	status := http.StatusInternalServerError
	switch code {
	case dErrors.CodeValidation:
		status = http.StatusBadRequest
	case dErrors.CodeNotFound:
		status = http.StatusNotFound
	case dErrors.CodeForbidden:
		status = http.StatusForbidden
	case dErrors.CodeUpstream:
		status = http.StatusBadGateway
	}

	message := "An internal error occurred."
	var e *dErrors.Error
	if code != dErrors.CodeInternal && errors.As(err, &e) {
		message = e.Message
	}

	writeJSON(w, status, map[string]string{
		"error":  string(code),
		"detail": message,
	})
}
