package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/services"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/logging"
)

const maxBodyBytes = 64 << 10

var validate = validator.New(validator.WithRequiredStructEnabled())

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a size-limited JSON body into dst and validates its tags.
// Failures come back as domain.ErrInvalid.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.Invalidf("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.Invalidf("invalid request")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return domain.Invalidf("%s", strings.Join(msgs, "; "))
}

// writeError maps an error kind to its status. Storage and internal failures
// are logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	kind := domain.Kind(err)
	status := http.StatusInternalServerError
	message := "internal server error"

	switch kind {
	case "not_found":
		status, message = http.StatusNotFound, err.Error()
	case "invalid":
		status, message = http.StatusBadRequest, strings.TrimPrefix(err.Error(), domain.ErrInvalid.Error()+": ")
	case "conflict":
		status, message = http.StatusConflict, strings.TrimPrefix(err.Error(), domain.ErrConflict.Error()+": ")
	case "storage_unavailable":
		status, message = http.StatusServiceUnavailable, "storage is temporarily unavailable, please try again shortly"
		logger.Error(r.Context(), "storage unavailable", "method", r.Method, "path", r.URL.Path, "error", err)
	default:
		if errors.Is(err, services.ErrAvatarsDisabled) {
			status, message = http.StatusNotImplemented, err.Error()
			kind = "not_implemented"
			break
		}
		logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	writeJSON(w, status, errorResponse{Error: kind, Message: message})
}
