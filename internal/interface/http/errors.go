package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/solargrowth/internal/application"
	"github.com/oksasatya/solargrowth/internal/domain/ledger"
	"github.com/oksasatya/solargrowth/pkg/response"
	"github.com/oksasatya/solargrowth/pkg/validation"
)

// statusFor maps service and ledger errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case application.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, application.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, application.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, application.ErrUserNotFound),
		errors.Is(err, application.ErrProductNotFound),
		errors.Is(err, application.ErrRequestNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrPhoneTaken),
		errors.Is(err, ledger.ErrAlreadyResolved),
		errors.Is(err, ledger.ErrAlreadyCheckedIn):
		return http.StatusConflict
	case errors.Is(err, application.ErrUnknownReferral),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrBelowMinimum),
		errors.Is(err, ledger.ErrOutsideWindow),
		errors.Is(err, ledger.ErrWrongPin),
		errors.Is(err, ledger.ErrInvalidDecision),
		errors.Is(err, ledger.ErrNothingToCollect),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrRecordOwnerMismatch):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrStorageDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error envelope. Unexpected errors are logged and their
// text is not exposed.
func fail(c *gin.Context, logger *logrus.Logger, err error) {
	status := statusFor(err)
	switch {
	case status == http.StatusUnprocessableEntity:
		response.Error[any](c, status, "invalid payload", validation.ToDetails(err))
	case status == http.StatusInternalServerError:
		logger.WithError(err).WithField("path", c.FullPath()).WithField("request_id", c.GetString("request_id")).Error("request failed")
		response.Error[any](c, status, "internal error", nil)
	default:
		response.Error[any](c, status, err.Error(), nil)
	}
}

func badPayload(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
