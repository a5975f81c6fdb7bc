package adminapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/toyorbit/toyorbit/internal/audit"
	"github.com/toyorbit/toyorbit/internal/domain"
	"github.com/toyorbit/toyorbit/internal/webserver"
)

type customerPayload struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email,max=100"`
	Phone      string `json:"phone" validate:"max=20"`
	Street     string `json:"street" validate:"max=200"`
	City       string `json:"city" validate:"max=100"`
	State      string `json:"state" validate:"max=100"`
	PostalCode string `json:"postalCode" validate:"max=20"`
	Country    string `json:"country" validate:"max=100"`
}

type customerUpdatePayload struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email      *string `json:"email" validate:"omitempty,email,max=100"`
	Phone      *string `json:"phone" validate:"omitempty,max=20"`
	Street     *string `json:"street" validate:"omitempty,max=200"`
	City       *string `json:"city" validate:"omitempty,max=100"`
	State      *string `json:"state" validate:"omitempty,max=100"`
	PostalCode *string `json:"postalCode" validate:"omitempty,max=20"`
	Country    *string `json:"country" validate:"omitempty,max=100"`
}

func registerCustomerRoutes(s *webserver.AdminServer) {
	s.ApiGET("/customers", listCustomers)
	s.ApiGET("/customers/:id", getCustomer)
	s.ApiPOST("/customers", createCustomer)
	s.ApiPUT("/customers/:id", updateCustomer)
	s.ApiDELETE("/customers/:id", deleteCustomer, adminOnly)
}

func listCustomers(c echo.Context) error {
	page, pageSize := parsePagination(c)
	items, total, err := GetAppContext(c).Store().Customers().List(c.Request().Context(), page, pageSize)
	if err != nil {
		return err
	}
	return paged(c, "Customers retrieved successfully", items, total, page, pageSize)
}

func getCustomer(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	customer, err := GetAppContext(c).Store().Customers().GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, "Customer retrieved successfully", customer)
}

func createCustomer(c echo.Context) error {
	var payload customerPayload
	if err := bind(c, &payload); err != nil {
		return err
	}
	customer := &domain.Customer{
		Name:       strings.TrimSpace(payload.Name),
		Email:      strings.ToLower(strings.TrimSpace(payload.Email)),
		Phone:      strings.TrimSpace(payload.Phone),
		Street:     strings.TrimSpace(payload.Street),
		City:       strings.TrimSpace(payload.City),
		State:      strings.TrimSpace(payload.State),
		PostalCode: strings.TrimSpace(payload.PostalCode),
		Country:    strings.TrimSpace(payload.Country),
	}
	if err := GetAppContext(c).Store().Customers().Create(c.Request().Context(), customer); err != nil {
		return err
	}
	record(c, audit.ActionCustomerSave, customer.ID.String(), customer.Email)
	return created(c, "Customer created successfully", customer)
}

func updateCustomer(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var payload customerUpdatePayload
	if err := bind(c, &payload); err != nil {
		return err
	}
	updates := map[string]interface{}{}
	setIf(updates, "name", payload.Name)
	if payload.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*payload.Email))
	}
	setIf(updates, "phone", payload.Phone)
	setIf(updates, "street", payload.Street)
	setIf(updates, "city", payload.City)
	setIf(updates, "state", payload.State)
	setIf(updates, "postal_code", payload.PostalCode)
	setIf(updates, "country", payload.Country)

	customer, err := GetAppContext(c).Store().Customers().Update(c.Request().Context(), id, updates)
	if err != nil {
		return err
	}
	record(c, audit.ActionCustomerSave, id.String(), customer.Email)
	return ok(c, "Customer updated successfully", customer)
}

func deleteCustomer(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := GetAppContext(c).Store().Customers().Delete(c.Request().Context(), id); err != nil {
		return err
	}
	record(c, audit.ActionCustomerDel, id.String(), "")
	return ok(c, "Customer deleted successfully", nil)
}
