package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/LepeyevaEmiliya/projects/logging"
	"github.com/LepeyevaEmiliya/projects/middleware"
	"github.com/LepeyevaEmiliya/projects/models"
	"github.com/LepeyevaEmiliya/projects/utils"
)

const maxBodyBytes = 1 << 20

// responder is embedded by every handler for error and body handling.
type responder struct {
	development bool
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (rs responder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status != http.StatusInternalServerError {
		var appErr *models.AppError
		msg := err.Error()
		if errors.As(err, &appErr) {
			msg = appErr.Message
		}
		utils.WriteError(w, status, msg)
		return
	}

	logging.Logger.Errorf("Event ID: INTERNAL_ERROR, Description: %s %s failed: %v", r.Method, r.URL.Path, err)
	body := utils.Envelope{Success: false, Error: "Internal server error"}
	if rs.development {
		body.Message = err.Error()
		body.Stack = strings.TrimSpace(string(debug.Stack()))
	}
	utils.WriteJSON(w, status, body)
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		logging.Logger.Debugf("Event ID: INVALID_REQUEST_BODY, Description: %s %s: %v", r.Method, r.URL.Path, err)
		return models.ValidationError("Invalid request body")
	}
	return nil
}

// pathID returns the named path variable when it is a well-formed id.
// Malformed ids cannot exist, so they are reported as not found.
func pathID(r *http.Request, name, resource string) (string, error) {
	id := mux.Vars(r)[name]
	if _, err := uuid.Parse(id); err != nil {
		return "", models.NotFoundError("%s not found", resource)
	}
	return id, nil
}

func currentUser(r *http.Request) middleware.AuthUser {
	u, _ := middleware.UserFromContext(r.Context())
	return u
}
