package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyorbit/toyorbit/config"
	"github.com/toyorbit/toyorbit/internal/app"
	"github.com/toyorbit/toyorbit/internal/domain"
	"github.com/toyorbit/toyorbit/internal/testutil"
	"github.com/toyorbit/toyorbit/internal/webserver"
)

type harness struct {
	app     *app.Application
	srv     *webserver.AdminServer
	admin   string
	manager string
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := *config.DefaultAppConfig
	cfg.Auth.JwtSecret = "test-secret"
	cfg.RateLimit.Enabled = false

	a := app.NewApplication(&cfg)
	require.NoError(t, a.OverrideDB(testutil.NewDB(t)))
	t.Cleanup(func() {
		a.Scheduler().Stop()
		a.Audit().Close()
	})

	s := webserver.NewAdminServer(&cfg, a)
	Init(s)

	h := &harness{app: a, srv: s}
	h.admin = h.user(t, "root", domain.RoleAdmin)
	h.manager = h.user(t, "clerk", domain.RoleManager)
	return h
}

// user creates an account with password "secret123" and returns a token for it
func (h *harness) user(t *testing.T, username, role string) string {
	t.Helper()
	u := &domain.User{Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, u.SetPassword("secret123"))
	require.NoError(t, h.app.DB().Create(u).Error)
	token, err := webserver.IssueToken("test-secret", time.Hour, u.ID.String(), u.Username, u.Role)
	require.NoError(t, err)
	return token
}

func (h *harness) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api"+path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.srv.Echo().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
}

func orderBody(productID string, qty int, unit, total string) map[string]interface{} {
	return map[string]interface{}{
		"status":          "pending",
		"totalAmount":     total,
		"deliveryStreet":  "1 Main St",
		"deliveryCity":    "Toronto",
		"deliveryCountry": "Canada",
		"orderDate":       "2024-03-05",
		"items": []map[string]interface{}{
			{"productId": productID, "quantity": qty, "unitPrice": unit},
		},
	}
}

func TestLogin(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "root", "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
	}
	decode(t, rec, &res)
	assert.NotEmpty(t, res.Token)
	assert.NotContains(t, string(res.User), "password")

	// the issued token works on a protected route
	rec = h.do(t, http.MethodGet, "/users", res.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "root", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = h.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "ghost", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = h.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "root"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterIsAdminOnly(t *testing.T) {
	h := newHarness(t)
	body := map[string]string{"username": "newbie", "email": "newbie@example.com", "password": "secret123"}

	rec := h.do(t, http.MethodPost, "/auth/register", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = h.do(t, http.MethodPost, "/auth/register", h.manager, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodPost, "/auth/register", h.admin, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var u domain.User
	decode(t, rec, &u)
	assert.Equal(t, domain.RoleManager, u.Role)

	rec = h.do(t, http.MethodPost, "/auth/register", h.admin, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "duplicate username")
}

func TestUserAdministration(t *testing.T) {
	h := newHarness(t)
	clerk, err := h.app.Store().Users().GetByUsername(context.Background(), "clerk")
	require.NoError(t, err)
	path := "/users/" + clerk.ID.String()

	rec := h.do(t, http.MethodPut, path, h.manager, map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodPut, path, h.admin, map[string]string{"email": "Clerk@Shop.example"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var u domain.User
	decode(t, rec, &u)
	assert.Equal(t, "clerk@shop.example", u.Email)

	rec = h.do(t, http.MethodDelete, path, h.admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(t, http.MethodGet, path, h.admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomerCRUD(t *testing.T) {
	h := newHarness(t)
	body := map[string]string{"name": "Ava", "email": "ava@example.com", "city": "Austin", "country": "United States"}

	rec := h.do(t, http.MethodPost, "/customers", h.manager, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c domain.Customer
	decode(t, rec, &c)

	rec = h.do(t, http.MethodPost, "/customers", h.manager, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "duplicate email")

	rec = h.do(t, http.MethodPost, "/customers", h.manager, map[string]string{"name": "x", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPut, "/customers/"+c.ID.String(), h.manager, map[string]string{"city": "Dallas"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &c)
	assert.Equal(t, "Dallas", c.City)
	assert.Equal(t, "Ava", c.Name)

	rec = h.do(t, http.MethodGet, "/customers?page=1&pageSize=10", h.manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []domain.Customer `json:"items"`
		Total int64             `json:"total"`
	}
	decode(t, rec, &page)
	assert.EqualValues(t, 1, page.Total)

	rec = h.do(t, http.MethodGet, "/customers/not-a-uuid", h.manager, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodDelete, "/customers/"+c.ID.String(), h.manager, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = h.do(t, http.MethodDelete, "/customers/"+c.ID.String(), h.admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCustomerWithOrdersCannotBeDeleted(t *testing.T) {
	h := newHarness(t)
	db := h.app.DB()
	c := testutil.Customer(t, db, "busy@example.com")
	p := testutil.Product(t, db, "Plush Bear", domain.CategoryStuffedAnimals, "15.99")
	testutil.Order(t, db, c, time.Now(), domain.OrderStatusPending, "Canada", testutil.ItemSpec{Product: p, Quantity: 1})

	rec := h.do(t, http.MethodDelete, "/customers/"+c.ID.String(), h.admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = h.do(t, http.MethodDelete, "/products/"+p.ID.String(), h.admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductValidation(t *testing.T) {
	h := newHarness(t)
	valid := map[string]interface{}{"name": "Fire Engine", "price": "29.50", "category": "trucks", "stockQuantity": 5}

	rec := h.do(t, http.MethodPost, "/products", h.manager, valid)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p domain.Product
	decode(t, rec, &p)
	assert.Equal(t, "29.50", p.Price.String())

	cases := []map[string]interface{}{
		{"name": "A", "price": "1.999", "category": "trucks"},
		{"name": "B", "price": "-1", "category": "trucks"},
		{"name": "C", "price": "1.00", "category": "robots"},
		{"name": "D", "price": "1.00", "category": "dolls", "stockQuantity": -1},
	}
	for i, body := range cases {
		rec = h.do(t, http.MethodPost, "/products", h.manager, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "case %d", i)
	}

	rec = h.do(t, http.MethodPost, "/products", h.manager, valid)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "duplicate name")

	rec = h.do(t, http.MethodPut, "/products/"+p.ID.String(), h.manager, map[string]interface{}{"price": "31.00"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &p)
	assert.Equal(t, "31.00", p.Price.String())

	rec = h.do(t, http.MethodGet, "/products?category=robots", h.manager, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type orderDetail struct {
	domain.Order
	Items []domain.OrderItemDetail `json:"items"`
}

func TestOrderLifecycle(t *testing.T) {
	h := newHarness(t)
	db := h.app.DB()
	c := testutil.Customer(t, db, "buyer@example.com")
	truck := testutil.Product(t, db, "Dump Truck", domain.CategoryTrucks, "20.00")
	doll := testutil.Product(t, db, "Fashion Doll", domain.CategoryDolls, "12.50")
	base := fmt.Sprintf("/customers/%s/orders", c.ID)

	rec := h.do(t, http.MethodPost, base, h.manager, orderBody(truck.ID.String(), 2, "20.00", "45.00"))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "total does not match items")

	rec = h.do(t, http.MethodPost, base, h.manager, orderBody(truck.ID.String(), 2, "20.00", "40.00"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created orderDetail
	decode(t, rec, &created)
	require.Len(t, created.Items, 1)
	assert.Equal(t, "40.00", created.TotalAmount.String())
	assert.Equal(t, "Dump Truck", created.Items[0].ProductName)
	assert.Equal(t, 2024, created.OrderDate.Year())
	orderPath := base + "/" + created.ID.String()

	update := map[string]interface{}{
		"status": "shipped",
		"items": []map[string]interface{}{
			{"productId": doll.ID.String(), "quantity": 3, "unitPrice": "12.50"},
		},
	}
	rec = h.do(t, http.MethodPut, orderPath, h.manager, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated orderDetail
	decode(t, rec, &updated)
	assert.Equal(t, domain.OrderStatusShipped, updated.Status)
	assert.Equal(t, "37.50", updated.TotalAmount.String())
	require.Len(t, updated.Items, 1)
	assert.Equal(t, doll.ID, updated.Items[0].ProductID)

	rec = h.do(t, http.MethodPut, orderPath, h.manager, map[string]interface{}{"items": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty replacement set")

	rec = h.do(t, http.MethodGet, "/orders?status=shipped", h.manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all struct {
		Total int64 `json:"total"`
	}
	decode(t, rec, &all)
	assert.EqualValues(t, 1, all.Total)

	rec = h.do(t, http.MethodDelete, orderPath, h.manager, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(t, http.MethodGet, orderPath, h.manager, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var left int64
	require.NoError(t, db.Model(&domain.OrderItem{}).Count(&left).Error)
	assert.Zero(t, left)
}

func TestOrderItemRoutes(t *testing.T) {
	h := newHarness(t)
	db := h.app.DB()
	c := testutil.Customer(t, db, "items@example.com")
	truck := testutil.Product(t, db, "Dump Truck", domain.CategoryTrucks, "20.00")
	kit := testutil.Product(t, db, "Bead Kit", domain.CategoryJewelryKits, "5.25")
	o := testutil.Order(t, db, c, time.Now(), domain.OrderStatusPending, "Canada", testutil.ItemSpec{Product: truck, Quantity: 1})
	base := fmt.Sprintf("/customers/%s/orders/%s/items", c.ID, o.ID)

	rec := h.do(t, http.MethodPost, base, h.manager, map[string]interface{}{"productId": kit.ID.String(), "quantity": 2, "unitPrice": "5.25"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var item domain.OrderItem
	decode(t, rec, &item)
	assert.Equal(t, "10.50", item.TotalPrice.String())

	rec = h.do(t, http.MethodPut, base+"/"+item.ID.String(), h.manager, map[string]interface{}{"quantity": 4})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodGet, fmt.Sprintf("/customers/%s/orders/%s", c.ID, o.ID), h.manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail orderDetail
	decode(t, rec, &detail)
	assert.Equal(t, "41.00", detail.TotalAmount.String())
	assert.Len(t, detail.Items, 2)

	rec = h.do(t, http.MethodGet, base, h.manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodDelete, base+"/"+item.ID.String(), h.manager, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(t, http.MethodDelete, base+"/"+o.Items[0].ID.String(), h.manager, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "last item stays")

	other := testutil.Customer(t, db, "other@example.com")
	rec = h.do(t, http.MethodGet, fmt.Sprintf("/customers/%s/orders/%s/items", other.ID, o.ID), h.manager, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalytics(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/analytics", h.manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]json.RawMessage
	decode(t, rec, &raw)
	for _, key := range []string{"totalCustomers", "ordersByDay", "locationData", "typeDistribution"} {
		assert.Contains(t, raw, key)
	}
	assert.JSONEq(t, "[]", string(raw["ordersByDay"]))

	rec = h.do(t, http.MethodGet, "/analytics", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCustomerReports(t *testing.T) {
	h := newHarness(t)
	db := h.app.DB()
	c := testutil.Customer(t, db, "report@example.com")
	p := testutil.Product(t, db, "Plush Dragon", domain.CategoryStuffedAnimals, "22.00")
	testutil.Order(t, db, c, time.Now().AddDate(0, -1, 0), domain.OrderStatusDelivered, "Canada", testutil.ItemSpec{Product: p, Quantity: 2})

	rec := h.do(t, http.MethodGet, "/reports/customer/"+c.ID.String()+"/pdf", h.manager, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, mimePDF, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = h.do(t, http.MethodGet, "/reports/customer/"+c.ID.String()+"/csv", h.manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "44.00")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), ".csv")

	rec = h.do(t, http.MethodGet, "/reports/customer/"+c.ID.String()+"/xlsx", h.manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	missing := "/reports/customer/00000000-0000-0000-0000-000000000001/pdf"
	rec = h.do(t, http.MethodGet, missing, h.manager, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEqual(t, mimePDF, rec.Header().Get(echo.HeaderContentType))
}

func TestAuditTrail(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/customers", h.manager, map[string]string{"name": "Zed", "email": "zed@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code)
	h.app.Audit().Flush()

	rec = h.do(t, http.MethodGet, "/audit", h.manager, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodGet, "/audit?actor=clerk", h.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []domain.AuditLog `json:"items"`
		Total int64             `json:"total"`
	}
	decode(t, rec, &page)
	require.EqualValues(t, 1, page.Total)
	assert.Equal(t, "customer.save", page.Items[0].Action)
}

func TestJobRoutes(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/jobs", h.manager, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodGet, "/jobs", h.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var jobs []app.JobInfo
	decode(t, rec, &jobs)
	assert.Len(t, jobs, 2)

	rec = h.do(t, http.MethodPost, "/jobs/orphan_sweep/run", h.admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(t, http.MethodPost, "/jobs/nope/run", h.admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
