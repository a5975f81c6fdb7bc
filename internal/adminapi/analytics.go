package adminapi

import (
	"github.com/labstack/echo/v4"
	"github.com/toyorbit/toyorbit/internal/webserver"
)

func registerAnalyticsRoutes(s *webserver.AdminServer) {
	s.ApiGET("/analytics", getDashboard)
}

func getDashboard(c echo.Context) error {
	dashboard, err := GetAppContext(c).Analytics().Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, "Analytics retrieved successfully", dashboard)
}
