// Package adminapi registers the REST handlers on the admin server.
package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"github.com/toyorbit/toyorbit/internal/app"
	"github.com/toyorbit/toyorbit/internal/apperr"
	"github.com/toyorbit/toyorbit/internal/audit"
	"github.com/toyorbit/toyorbit/internal/domain"
	"github.com/toyorbit/toyorbit/internal/webserver"
)

// Init registers every API route on s
func Init(s *webserver.AdminServer) {
	registerAuthRoutes(s)
	registerUserRoutes(s)
	registerCustomerRoutes(s)
	registerProductRoutes(s)
	registerOrderRoutes(s)
	registerItemRoutes(s)
	registerAnalyticsRoutes(s)
	registerReportRoutes(s)
	registerAuditRoutes(s)
	registerSchedulerRoutes(s)
}

var adminOnly = webserver.RequireRole(domain.RoleAdmin)

// Response is the success envelope
type Response struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// PageData wraps one page of a listing
type PageData struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

func ok(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Message: message, Data: data})
}

func created(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{Message: message, Data: data})
}

func paged(c echo.Context, message string, items interface{}, total int64, page, pageSize int) error {
	return ok(c, message, PageData{Items: items, Total: total, Page: page, PageSize: pageSize})
}

// parsePagination reads page and pageSize (perPage is accepted as an alias).
// Bounds are enforced by the repositories.
func parsePagination(c echo.Context) (int, int) {
	page := cast.ToInt(c.QueryParam("page"))
	size := cast.ToInt(c.QueryParam("pageSize"))
	if size == 0 {
		size = cast.ToInt(c.QueryParam("perPage"))
	}
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	if size > 200 {
		size = 200
	}
	return page, size
}

// parseID reads a UUID path parameter
func parseID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.BadRequest("Invalid %s", name)
	}
	return id, nil
}

// bind decodes and validates the request body
func bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return apperr.BadRequest("Invalid request body")
	}
	return c.Validate(v)
}

// GetAppContext returns the application context stored by the server
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

// record publishes an audit event for the current user
func record(c echo.Context, action, target, detail string) {
	actor := "anonymous"
	if u := webserver.CurrentUser(c); u != nil {
		actor = u.Username
	}
	GetAppContext(c).Audit().Record(audit.Event{
		Actor:  actor,
		Action: action,
		Target: target,
		Detail: detail,
		IP:     c.RealIP(),
		At:     time.Now(),
	})
}

// parseDate accepts ISO dates and the other layouts dateparse recognises; blank is nil
func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := dateparse.ParseIn(strings.TrimSpace(*s), time.UTC)
	if err != nil {
		return nil, apperr.BadRequest("%s is not a valid date", field)
	}
	t = t.UTC()
	return &t, nil
}

// setIf adds a trimmed string column to updates when supplied
func setIf(updates map[string]interface{}, column string, v *string) {
	if v != nil {
		updates[column] = strings.TrimSpace(*v)
	}
}
