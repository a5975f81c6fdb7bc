package adminapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/toyorbit/toyorbit/internal/webserver"
)

func registerAuditRoutes(s *webserver.AdminServer) {
	s.ApiGET("/audit", listAuditLogs, adminOnly)
}

func listAuditLogs(c echo.Context) error {
	page, pageSize := parsePagination(c)
	actor := strings.TrimSpace(c.QueryParam("actor"))
	logs, total, err := GetAppContext(c).Store().AuditLogs().List(c.Request().Context(), actor, page, pageSize)
	if err != nil {
		return err
	}
	return paged(c, "Audit logs retrieved successfully", logs, total, page, pageSize)
}
