package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errInternal        = "internal server error"
	errInvalidBodyPref = "invalid body: "
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode" example:"404"`
	Timestamp  string `json:"timestamp" example:"2024-05-01T12:00:00.000Z"`
	Path       string `json:"path" example:"/api/temperature-history/equipment/Nonexistent"`
	Message    string `json:"message" example:"No se encontraron datos para el equipo: Nonexistent"`
}

// abortWithError writes the error body and stops the handler chain.
func (h *Handler) abortWithError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, ErrorResponse{
		StatusCode: code,
		Timestamp:  time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Path:       c.Request.URL.Path,
		Message:    msg,
	})
}

// Centralized service error mapping: validation errors become 400, the rest 500.
func (h *Handler) serviceError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	switch {
	case errors.Is(err, service.ErrInvalidLimit), errors.Is(err, service.ErrInvalidFilter):
		h.abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		if h.log != nil {
			fields := append([]interface{}{"err", err}, kv...)
			h.log.Errorw(logKey, fields...)
		}
		h.abortWithError(c, http.StatusInternalServerError, errInternal)
	}
}

func (h *Handler) recovery(c *gin.Context, recovered any) {
	if h.log != nil {
		h.log.Errorw("http_panic_recovered", "path", c.Request.URL.Path, "panic", recovered)
	}
	h.abortWithError(c, http.StatusInternalServerError, errInternal)
}
