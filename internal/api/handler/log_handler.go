package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pollwise/poll-api/internal/core/domain"
	"github.com/pollwise/poll-api/internal/core/ports"
)

// defaultLogLimit bounds an audit-log page when the client does not ask for
// a specific size.
const defaultLogLimit = 100

// LogHandler exposes the audit log to administrators.
type LogHandler struct {
	logs ports.AuditRepository
}

func NewLogHandler(logs ports.AuditRepository) *LogHandler {
	return &LogHandler{logs: logs}
}

// ListByType returns the newest audit entries of a given type. Admin only;
// the privilege check lives in the route's middleware chain.
//
// @Summary      List audit log entries by type
// @Tags         logs
// @Produce      json
// @Security     BearerAuth
// @Param        type  path      string  true  "Entry type (users, auth, polls)"
// @Success      200   {array}   domain.AuditEntry
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /logs/{type} [get]
func (h *LogHandler) ListByType(c echo.Context) error {
	logType := c.Param("type")
	switch logType {
	case domain.AuditTypeUsers, domain.AuditTypeAuth, domain.AuditTypePolls:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown log type")
	}

	entries, err := h.logs.FindByType(c.Request().Context(), logType, defaultLogLimit)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}
