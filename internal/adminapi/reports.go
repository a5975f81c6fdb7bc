package adminapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/toyorbit/toyorbit/internal/apperr"
	"github.com/toyorbit/toyorbit/internal/audit"
	"github.com/toyorbit/toyorbit/internal/report"
	"github.com/toyorbit/toyorbit/internal/webserver"
)

const (
	mimePDF  = "application/pdf"
	mimeCSV  = "text/csv; charset=utf-8"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func registerReportRoutes(s *webserver.AdminServer) {
	s.ApiGET("/reports/customer/:id/pdf", customerReportPDF)
	s.ApiGET("/reports/customer/:id/csv", customerReportCSV)
	s.ApiGET("/reports/customer/:id/xlsx", customerReportXLSX)
}

// sendAttachment writes a fully rendered document with a download disposition
func sendAttachment(c echo.Context, contentType, filename string, body *bytes.Buffer) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, body.Bytes())
}

func withExt(r *report.Report, ext string) string {
	return strings.TrimSuffix(r.Filename(), ".pdf") + ext
}

func customerReportPDF(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	r, err := GetAppContext(c).Reports().Build(c.Request().Context(), id)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := r.WritePDF(&buf); err != nil {
		return apperr.Internal(err, "Failed to generate PDF report")
	}
	record(c, audit.ActionReport, id.String(), "pdf")
	return sendAttachment(c, mimePDF, r.Filename(), &buf)
}

func customerReportCSV(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	r, err := GetAppContext(c).Reports().Load(c.Request().Context(), id)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := r.WriteCSV(&buf); err != nil {
		return apperr.Internal(err, "Failed to generate CSV export")
	}
	record(c, audit.ActionReport, id.String(), "csv")
	return sendAttachment(c, mimeCSV, withExt(r, ".csv"), &buf)
}

func customerReportXLSX(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	r, err := GetAppContext(c).Reports().Load(c.Request().Context(), id)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := r.WriteXLSX(&buf); err != nil {
		return apperr.Internal(err, "Failed to generate XLSX export")
	}
	record(c, audit.ActionReport, id.String(), "xlsx")
	return sendAttachment(c, mimeXLSX, withExt(r, ".xlsx"), &buf)
}
