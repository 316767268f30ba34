package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/practice-scheduler/pkg/apperrors"
)

// ErrorEnvelope is the `{error: {kind, message}}` shape every failed
// response carries (spec §6 message surface).
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody names the error kind alongside a human-readable message.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// writeError maps a core error to an HTTP status and the {error:{kind,
// message}} envelope, per spec §7's propagation policy.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorEnvelope{Error: ErrorBody{Kind: "NotFound", Message: err.Error()}})
	case errors.Is(err, apperrors.ErrTypeMismatch):
		c.JSON(http.StatusConflict, ErrorEnvelope{Error: ErrorBody{Kind: "TypeMismatch", Message: err.Error()}})
	case errors.Is(err, apperrors.ErrInvariantViolation):
		c.JSON(http.StatusUnprocessableEntity, ErrorEnvelope{Error: ErrorBody{Kind: "InvariantViolation", Message: err.Error()}})
	case errors.Is(err, apperrors.ErrTimedOut):
		c.JSON(http.StatusGatewayTimeout, ErrorEnvelope{Error: ErrorBody{Kind: "TimedOut", Message: err.Error()}})
	case errors.Is(err, apperrors.ErrConflictAborted):
		c.JSON(http.StatusConflict, ErrorEnvelope{Error: ErrorBody{Kind: "ConflictAborted", Message: err.Error()}})
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorEnvelope{Error: ErrorBody{Kind: "StoreUnavailable", Message: err.Error()}})
	default:
		slog.Error("unexpected core error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorEnvelope{Error: ErrorBody{Kind: "StoreUnavailable", Message: "internal error"}})
	}
}
