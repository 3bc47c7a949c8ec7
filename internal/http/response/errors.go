package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/selahstudy/academy-backend/internal/pkg/apperr"
)

// RespondAppError maps the service error taxonomy to HTTP. Unclassified
// errors become an opaque 500 so internals never leak to clients.
func RespondAppError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		RespondError(c, http.StatusNotFound, "not_found", err)
	case apperr.KindForbidden:
		RespondError(c, http.StatusForbidden, "forbidden", err)
	case apperr.KindConflict:
		RespondError(c, http.StatusConflict, "conflict", err)
	case apperr.KindInvalid:
		RespondError(c, http.StatusBadRequest, "invalid", err)
	default:
		c.JSON(http.StatusInternalServerError, ErrorEnvelope{
			Error: APIError{Message: "internal error", Code: "internal"},
		})
	}
}
