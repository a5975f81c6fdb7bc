package adminapi

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/toyorbit/toyorbit/internal/audit"
	"github.com/toyorbit/toyorbit/internal/orders"
	"github.com/toyorbit/toyorbit/internal/webserver"
)

type itemUpdatePayload struct {
	ProductID *string `json:"productId" validate:"omitempty,uuid"`
	Quantity  *int    `json:"quantity" validate:"omitempty,min=1"`
	UnitPrice *string `json:"unitPrice" validate:"omitempty,money"`
}

func registerItemRoutes(s *webserver.AdminServer) {
	const base = "/customers/:customerId/orders/:orderId/items"
	s.ApiGET(base, listItems)
	s.ApiGET(base+"/:id", getItem)
	s.ApiPOST(base, createItem)
	s.ApiPUT(base+"/:id", updateItem)
	s.ApiDELETE(base+"/:id", deleteItem)
}

// orderScope reads the customer and order ids every item route is nested under
func orderScope(c echo.Context) (customerID, orderID uuid.UUID, err error) {
	if customerID, err = parseID(c, "customerId"); err != nil {
		return
	}
	orderID, err = parseID(c, "orderId")
	return
}

func listItems(c echo.Context) error {
	customerID, orderID, err := orderScope(c)
	if err != nil {
		return err
	}
	items, err := GetAppContext(c).Orders().ListItems(c.Request().Context(), orderID, customerID)
	if err != nil {
		return err
	}
	return ok(c, "Order items retrieved successfully", items)
}

func getItem(c echo.Context) error {
	customerID, orderID, err := orderScope(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	item, err := GetAppContext(c).Orders().GetItem(c.Request().Context(), id, orderID, customerID)
	if err != nil {
		return err
	}
	return ok(c, "Order item retrieved successfully", item)
}

func createItem(c echo.Context) error {
	customerID, orderID, err := orderScope(c)
	if err != nil {
		return err
	}
	var payload itemPayload
	if err := bind(c, &payload); err != nil {
		return err
	}
	item, err := GetAppContext(c).Orders().AddItem(c.Request().Context(), orderID, customerID, payload.toInput())
	if err != nil {
		return err
	}
	record(c, audit.ActionItemSave, item.ID.String(), orderID.String())
	return created(c, "Order item created successfully", item)
}

func updateItem(c echo.Context) error {
	customerID, orderID, err := orderScope(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var payload itemUpdatePayload
	if err := bind(c, &payload); err != nil {
		return err
	}
	patch := orders.ItemPatch{Quantity: payload.Quantity, UnitPrice: moneyPtr(payload.UnitPrice)}
	if payload.ProductID != nil {
		pid := uuid.MustParse(*payload.ProductID)
		patch.ProductID = &pid
	}
	item, err := GetAppContext(c).Orders().UpdateItem(c.Request().Context(), id, orderID, customerID, patch)
	if err != nil {
		return err
	}
	record(c, audit.ActionItemSave, id.String(), orderID.String())
	return ok(c, "Order item updated successfully", item)
}

func deleteItem(c echo.Context) error {
	customerID, orderID, err := orderScope(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := GetAppContext(c).Orders().RemoveItem(c.Request().Context(), id, orderID, customerID); err != nil {
		return err
	}
	record(c, audit.ActionItemDelete, id.String(), orderID.String())
	return ok(c, "Order item deleted successfully", nil)
}
