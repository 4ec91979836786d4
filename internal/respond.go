package internal

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"bjj-tournament/internal/apperr"
	"bjj-tournament/internal/notice"
	"bjj-tournament/internal/registration"
)

// fail writes err as {error, code}. Internal errors are logged and hidden.
func fail(c *gin.Context, log *slog.Logger, err error) {
	code := apperr.CodeOf(err)
	status := apperr.HTTPStatus(code)
	msg := err.Error()
	var ae *apperr.Error
	if !errors.As(err, &ae) || status >= http.StatusInternalServerError {
		log.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "code", code, "error", err)
	}
	if !errors.As(err, &ae) {
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg, "code": apperr.CodeBadRequest})
}

// failRegistration reports a failed submission with the phase it stopped in
// and the notices collected on the way.
func failRegistration(c *gin.Context, out registration.Outcome) {
	code := apperr.CodeOf(out.Err)
	notices := out.Notices
	if notices == nil {
		notices = []notice.Notice{}
	}
	c.AbortWithStatusJSON(apperr.HTTPStatus(code), gin.H{
		"error":   out.Err.Error(),
		"code":    code,
		"phase":   out.Phase,
		"notices": notices,
	})
}
