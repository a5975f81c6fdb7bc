package adminapi

import (
	"github.com/labstack/echo/v4"
	"github.com/toyorbit/toyorbit/internal/audit"
	"github.com/toyorbit/toyorbit/internal/webserver"
)

// registerSchedulerRoutes registers the maintenance job routes
func registerSchedulerRoutes(s *webserver.AdminServer) {
	s.ApiGET("/jobs", ListJobs, adminOnly)
	s.ApiPOST("/jobs/:name/run", TriggerJob, adminOnly)
}

// ListJobs returns the scheduled maintenance jobs with their next run time
func ListJobs(c echo.Context) error {
	return ok(c, "Jobs retrieved successfully", GetAppContext(c).Jobs())
}

// TriggerJob runs a job immediately
func TriggerJob(c echo.Context) error {
	name := c.Param("name")
	if err := GetAppContext(c).RunJobNow(name); err != nil {
		return err
	}
	record(c, audit.ActionJobRun, name, "")
	return ok(c, "Job executed", nil)
}
