package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/saqibullah/diabetes-risk-predictor/features"
	"github.com/saqibullah/diabetes-risk-predictor/model"
)

// writeError maps pipeline errors onto status codes and JSON bodies.
func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *features.ValidationError
	switch {
	case errors.As(err, &verr):
		if len(verr.Missing) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields: " + strings.Join(verr.Missing, ", ")})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input format: " + verr.Error()})
	case errors.Is(err, model.ErrNotLoaded):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Model not loaded properly"})
	default:
		h.log(c).Error("prediction error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error: " + err.Error()})
	}
}

// Recovery turns panics into a 500 JSON body and logs the stack.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Error("unhandled panic",
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", fmt.Sprint(recovered),
			"stack", string(debug.Stack()),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error: unexpected failure"})
	})
}
