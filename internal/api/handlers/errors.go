package handlers

import (
	"errors"
	"net/http"

	"github.com/rohits-web03/folio/internal/api/services"
	"github.com/rohits-web03/folio/internal/repositories"
	"github.com/rohits-web03/folio/internal/utils"
	"go.uber.org/zap"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnauthenticated), errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrMissingIdentifier),
		errors.Is(err, services.ErrInvalidPayload),
		errors.Is(err, services.ErrNoSuchDocument),
		errors.Is(err, services.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotOwner):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repositories.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, services.ErrArchiveDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// writeError aborts with the status mapped from err. Only unexpected
// failures are logged.
func writeError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("Request failed", zap.String("op", op), zap.Error(err))
	}
	utils.Abort(w, status)
}
