package adminapi

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/toyorbit/toyorbit/internal/apperr"
	"github.com/toyorbit/toyorbit/internal/audit"
	"github.com/toyorbit/toyorbit/internal/domain"
	"github.com/toyorbit/toyorbit/internal/orders"
	"github.com/toyorbit/toyorbit/internal/webserver"
)

type itemPayload struct {
	ProductID  string  `json:"productId" validate:"required,uuid"`
	Quantity   int     `json:"quantity" validate:"required,min=1"`
	UnitPrice  string  `json:"unitPrice" validate:"required,money"`
	TotalPrice *string `json:"totalPrice" validate:"omitempty,money"`
}

type orderPayload struct {
	OrderDate             *string       `json:"orderDate"`
	ScheduledDeliveryDate *string       `json:"scheduledDeliveryDate"`
	DateDelivered         *string       `json:"dateDelivered"`
	Status                string        `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
	TotalAmount           string        `json:"totalAmount" validate:"required,money"`
	DeliveryStreet        string        `json:"deliveryStreet" validate:"required,max=200"`
	DeliveryCity          string        `json:"deliveryCity" validate:"required,max=100"`
	DeliveryState         string        `json:"deliveryState" validate:"max=100"`
	DeliveryPostal        string        `json:"deliveryPostal" validate:"max=20"`
	DeliveryCountry       string        `json:"deliveryCountry" validate:"required,max=100"`
	Items                 []itemPayload `json:"items" validate:"required,min=1,dive"`
}

type orderUpdatePayload struct {
	OrderDate             *string       `json:"orderDate"`
	ScheduledDeliveryDate *string       `json:"scheduledDeliveryDate"`
	DateDelivered         *string       `json:"dateDelivered"`
	Status                *string       `json:"status" validate:"omitempty,oneof=pending processing shipped delivered cancelled"`
	TotalAmount           *string       `json:"totalAmount" validate:"omitempty,money"`
	DeliveryStreet        *string       `json:"deliveryStreet" validate:"omitempty,max=200"`
	DeliveryCity          *string       `json:"deliveryCity" validate:"omitempty,max=100"`
	DeliveryState         *string       `json:"deliveryState" validate:"omitempty,max=100"`
	DeliveryPostal        *string       `json:"deliveryPostal" validate:"omitempty,max=20"`
	DeliveryCountry       *string       `json:"deliveryCountry" validate:"omitempty,max=100"`
	Items                 []itemPayload `json:"items" validate:"omitempty,dive"`
}

func registerOrderRoutes(s *webserver.AdminServer) {
	s.ApiGET("/orders", listAllOrders)
	s.ApiGET("/customers/:customerId/orders", listOrders)
	s.ApiGET("/customers/:customerId/orders/:id", getOrder)
	s.ApiPOST("/customers/:customerId/orders", createOrder)
	s.ApiPUT("/customers/:customerId/orders/:id", updateOrder)
	s.ApiDELETE("/customers/:customerId/orders/:id", deleteOrder)
}

func (p itemPayload) toInput() orders.ItemInput {
	in := orders.ItemInput{
		ProductID: uuid.MustParse(p.ProductID),
		Quantity:  p.Quantity,
		UnitPrice: domain.MustMoney(p.UnitPrice),
	}
	if p.TotalPrice != nil {
		total := domain.MustMoney(*p.TotalPrice)
		in.TotalPrice = &total
	}
	return in
}

func toItemInputs(items []itemPayload) []orders.ItemInput {
	if items == nil {
		return nil
	}
	out := make([]orders.ItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, it.toInput())
	}
	return out
}

func moneyPtr(s *string) *domain.Money {
	if s == nil {
		return nil
	}
	m := domain.MustMoney(*s)
	return &m
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func (p orderPayload) toInput() (orders.CreateOrderInput, error) {
	in := orders.CreateOrderInput{
		Status:          p.Status,
		TotalAmount:     moneyPtr(&p.TotalAmount),
		DeliveryStreet:  strings.TrimSpace(p.DeliveryStreet),
		DeliveryCity:    strings.TrimSpace(p.DeliveryCity),
		DeliveryState:   strings.TrimSpace(p.DeliveryState),
		DeliveryPostal:  strings.TrimSpace(p.DeliveryPostal),
		DeliveryCountry: strings.TrimSpace(p.DeliveryCountry),
		Items:           toItemInputs(p.Items),
	}
	var err error
	if in.OrderDate, err = parseDate("orderDate", p.OrderDate); err != nil {
		return in, err
	}
	if in.ScheduledDeliveryDate, err = parseDate("scheduledDeliveryDate", p.ScheduledDeliveryDate); err != nil {
		return in, err
	}
	if in.DateDelivered, err = parseDate("dateDelivered", p.DateDelivered); err != nil {
		return in, err
	}
	return in, nil
}

func (p orderUpdatePayload) toInput() (orders.UpdateOrderInput, error) {
	in := orders.UpdateOrderInput{
		Status:          p.Status,
		TotalAmount:     moneyPtr(p.TotalAmount),
		DeliveryStreet:  trimPtr(p.DeliveryStreet),
		DeliveryCity:    trimPtr(p.DeliveryCity),
		DeliveryState:   trimPtr(p.DeliveryState),
		DeliveryPostal:  trimPtr(p.DeliveryPostal),
		DeliveryCountry: trimPtr(p.DeliveryCountry),
		Items:           toItemInputs(p.Items),
	}
	var err error
	if in.OrderDate, err = parseDate("orderDate", p.OrderDate); err != nil {
		return in, err
	}
	if in.ScheduledDeliveryDate, err = parseDate("scheduledDeliveryDate", p.ScheduledDeliveryDate); err != nil {
		return in, err
	}
	if in.DateDelivered, err = parseDate("dateDelivered", p.DateDelivered); err != nil {
		return in, err
	}
	return in, nil
}

func listAllOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)
	status := strings.TrimSpace(c.QueryParam("status"))
	if status != "" && !domain.IsOrderStatus(status) {
		return apperr.BadRequest("Unknown status %q", status)
	}
	items, total, err := GetAppContext(c).Orders().ListAll(c.Request().Context(), status, page, pageSize)
	if err != nil {
		return err
	}
	return paged(c, "Orders retrieved successfully", items, total, page, pageSize)
}

func listOrders(c echo.Context) error {
	customerID, err := parseID(c, "customerId")
	if err != nil {
		return err
	}
	page, pageSize := parsePagination(c)
	items, total, err := GetAppContext(c).Orders().ListForCustomer(c.Request().Context(), customerID, page, pageSize)
	if err != nil {
		return err
	}
	return paged(c, "Orders retrieved successfully", items, total, page, pageSize)
}

func getOrder(c echo.Context) error {
	customerID, err := parseID(c, "customerId")
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	detail, err := GetAppContext(c).Orders().Get(c.Request().Context(), id, customerID)
	if err != nil {
		return err
	}
	return ok(c, "Order retrieved successfully", detail)
}

func createOrder(c echo.Context) error {
	customerID, err := parseID(c, "customerId")
	if err != nil {
		return err
	}
	var payload orderPayload
	if err := bind(c, &payload); err != nil {
		return err
	}
	in, err := payload.toInput()
	if err != nil {
		return err
	}
	mgr := GetAppContext(c).Orders()
	ctx := c.Request().Context()
	order, err := mgr.Create(ctx, customerID, in)
	if err != nil {
		return err
	}
	record(c, audit.ActionOrderCreate, order.ID.String(), order.TotalAmount.String())
	detail, err := mgr.Get(ctx, order.ID, customerID)
	if err != nil {
		return err
	}
	return created(c, "Order created successfully", detail)
}

func updateOrder(c echo.Context) error {
	customerID, err := parseID(c, "customerId")
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var payload orderUpdatePayload
	if err := bind(c, &payload); err != nil {
		return err
	}
	in, err := payload.toInput()
	if err != nil {
		return err
	}
	mgr := GetAppContext(c).Orders()
	ctx := c.Request().Context()
	if _, err := mgr.Replace(ctx, id, customerID, in); err != nil {
		return err
	}
	record(c, audit.ActionOrderUpdate, id.String(), "")
	detail, err := mgr.Get(ctx, id, customerID)
	if err != nil {
		return err
	}
	return ok(c, "Order updated successfully", detail)
}

func deleteOrder(c echo.Context) error {
	customerID, err := parseID(c, "customerId")
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := GetAppContext(c).Orders().Delete(c.Request().Context(), id, customerID); err != nil {
		return err
	}
	record(c, audit.ActionOrderDelete, id.String(), "")
	return ok(c, "Order deleted successfully", nil)
}
