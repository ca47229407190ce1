package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"heli-training/logbook/internal/common"
	"heli-training/logbook/internal/logging"
	"heli-training/logbook/internal/services"
)

var validate = validator.New()

// decodeRequest reads a JSON body into req and runs its validate tags.
func decodeRequest(r *http.Request, req any) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid request: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

// statusForError maps service errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrFlightNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidGrade), errors.Is(err, services.ErrInvalidFlight):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(w http.ResponseWriter, initTime time.Time, err error) {
	code := statusForError(err)
	if code == http.StatusInternalServerError {
		logging.Error("Request failed", "error", err)
		common.RespondError(w, initTime, nil, "Internal error", code)
		return
	}
	common.RespondError(w, initTime, err, "", code)
}
