package adminapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/toyorbit/toyorbit/internal/apperr"
	"github.com/toyorbit/toyorbit/internal/audit"
	"github.com/toyorbit/toyorbit/internal/domain"
	"github.com/toyorbit/toyorbit/internal/webserver"
)

type productPayload struct {
	Name          string `json:"name" validate:"required,min=1,max=150"`
	Description   string `json:"description"`
	Price         string `json:"price" validate:"required,money"`
	Category      string `json:"category" validate:"required,oneof=trucks lego_sets scooters stuffed_animals dolls kitchen_sets jewelry_kits"`
	ImageURL      string `json:"imageUrl" validate:"omitempty,max=255"`
	StockQuantity int    `json:"stockQuantity" validate:"min=0"`
}

type productUpdatePayload struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=150"`
	Description   *string `json:"description"`
	Price         *string `json:"price" validate:"omitempty,money"`
	Category      *string `json:"category" validate:"omitempty,oneof=trucks lego_sets scooters stuffed_animals dolls kitchen_sets jewelry_kits"`
	ImageURL      *string `json:"imageUrl" validate:"omitempty,max=255"`
	StockQuantity *int    `json:"stockQuantity" validate:"omitempty,min=0"`
}

// registerProductRoutes registers product CRUD endpoints
func registerProductRoutes(s *webserver.AdminServer) {
	s.ApiGET("/products", listProducts)
	s.ApiGET("/products/:id", getProduct)
	s.ApiPOST("/products", createProduct)
	s.ApiPUT("/products/:id", updateProduct)
	s.ApiDELETE("/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)
	category := strings.TrimSpace(c.QueryParam("category"))
	if category != "" && !domain.IsCategory(category) {
		return apperr.BadRequest("Unknown category %q", category)
	}
	items, total, err := GetAppContext(c).Store().Products().List(c.Request().Context(), category, page, pageSize)
	if err != nil {
		return err
	}
	return paged(c, "Products retrieved successfully", items, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	p, err := GetAppContext(c).Store().Products().GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, "Product retrieved successfully", p)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := bind(c, &payload); err != nil {
		return err
	}
	p := &domain.Product{
		Name:          strings.TrimSpace(payload.Name),
		Description:   strings.TrimSpace(payload.Description),
		Price:         domain.MustMoney(payload.Price),
		Category:      payload.Category,
		ImageURL:      strings.TrimSpace(payload.ImageURL),
		StockQuantity: payload.StockQuantity,
	}
	if p.Name == "" {
		return apperr.BadRequest("name is required")
	}
	if err := GetAppContext(c).Store().Products().Create(c.Request().Context(), p); err != nil {
		return err
	}
	record(c, audit.ActionProductSave, p.ID.String(), p.Name)
	return created(c, "Product created successfully", p)
}

func updateProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var payload productUpdatePayload
	if err := bind(c, &payload); err != nil {
		return err
	}
	updates := map[string]interface{}{}
	setIf(updates, "name", payload.Name)
	setIf(updates, "description", payload.Description)
	setIf(updates, "image_url", payload.ImageURL)
	if payload.Price != nil {
		updates["price"] = domain.MustMoney(*payload.Price)
	}
	if payload.Category != nil {
		updates["category"] = *payload.Category
	}
	if payload.StockQuantity != nil {
		updates["stock_quantity"] = *payload.StockQuantity
	}
	if name, set := updates["name"].(string); set && name == "" {
		return apperr.BadRequest("name cannot be blank")
	}

	p, err := GetAppContext(c).Store().Products().Update(c.Request().Context(), id, updates)
	if err != nil {
		return err
	}
	record(c, audit.ActionProductSave, id.String(), p.Name)
	return ok(c, "Product updated successfully", p)
}

func deleteProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := GetAppContext(c).Store().Products().Delete(c.Request().Context(), id); err != nil {
		return err
	}
	record(c, audit.ActionProductDelete, id.String(), "")
	return ok(c, "Product deleted successfully", nil)
}
