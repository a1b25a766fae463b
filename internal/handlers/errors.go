package handlers

import (
	"errors"
	"net/http"

	"rentfleet/internal/core"
	"rentfleet/internal/utils"
	"rentfleet/pkg/resilience"

	"github.com/gin-gonic/gin"
)

// respondError maps the service error taxonomy onto HTTP statuses and the
// shared response envelope. Anything outside the taxonomy is a plain 500.
func respondError(c *gin.Context, err error) {
	var validationErr *core.ValidationError
	if errors.As(err, &validationErr) {
		details := make(map[string]string, len(validationErr.Violations))
		for _, v := range validationErr.Violations {
			details[v.Field] = v.Message
		}
		utils.ErrorResponseWithDetails(c, http.StatusBadRequest, core.CodeValidation, "Validation failed", details)
		return
	}

	var authErr *core.AuthorizationError
	if errors.As(err, &authErr) {
		utils.ErrorResponse(c, http.StatusForbidden, core.CodeAuthorization, authErr.Error())
		return
	}

	var conflictErr *core.ConflictError
	if errors.As(err, &conflictErr) {
		utils.ErrorResponse(c, http.StatusConflict, core.CodeConflict, conflictErr.Error())
		return
	}

	var refErr *core.ReferentialError
	if errors.As(err, &refErr) {
		details := make(map[string]string)
		for _, id := range refErr.MissingIDs {
			details[id] = "unknown location"
		}
		for _, id := range refErr.InvalidIDs {
			if reason, ok := refErr.Reasons[id]; ok {
				details[id] = reason
			} else {
				details[id] = "invalid reference"
			}
		}
		utils.ErrorResponseWithDetails(c, http.StatusUnprocessableEntity, core.CodeReferential, "Invalid location references", details)
		return
	}

	var mediaErr *core.MediaError
	if errors.As(err, &mediaErr) {
		utils.ErrorResponseWithDetails(c, http.StatusUnprocessableEntity, core.CodeMedia, "Image processing failed", mediaErr.Failures)
		return
	}

	var notFoundErr *core.NotFoundError
	if errors.As(err, &notFoundErr) {
		utils.ErrorResponse(c, http.StatusNotFound, core.CodeNotFound, notFoundErr.Error())
		return
	}

	var inconsistencyErr *core.InconsistencyError
	if errors.As(err, &inconsistencyErr) {
		utils.ErrorResponse(c, http.StatusInternalServerError, core.CodeInconsistency, inconsistencyErr.Error())
		return
	}

	if resilience.IsTimeout(err) {
		utils.ErrorResponse(c, http.StatusGatewayTimeout, core.CodeTimeout, err.Error())
		return
	}

	utils.InternalServerErrorResponse(c)
}
