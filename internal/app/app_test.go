package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyorbit/toyorbit/config"
	"github.com/toyorbit/toyorbit/internal/domain"
	"github.com/toyorbit/toyorbit/internal/testutil"
)

func newTestApp(t *testing.T) *Application {
	t.Helper()
	cfg := *config.DefaultAppConfig
	cfg.Auth.JwtSecret = "test-secret"
	a := NewApplication(&cfg)
	require.NoError(t, a.OverrideDB(testutil.NewDB(t)))
	t.Cleanup(func() {
		a.Scheduler().Stop()
		a.Audit().Close()
	})
	return a
}

func TestCheckSuperCreatesAdminOnEmptyTable(t *testing.T) {
	a := newTestApp(t)
	a.checkSuper()

	u, err := a.Store().Users().GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.True(t, u.CheckPassword("toyorbit"))

	// second call is a no-op
	a.checkSuper()
	n, err := a.Store().Users().Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestCheckSuperRepairsRole(t *testing.T) {
	a := newTestApp(t)
	a.checkSuper()
	ctx := context.Background()
	u, err := a.Store().Users().GetByUsername(ctx, "admin")
	require.NoError(t, err)
	_, err = a.Store().Users().Update(ctx, u.ID, map[string]interface{}{"role": domain.RoleManager})
	require.NoError(t, err)

	a.checkSuper()
	u, err = a.Store().Users().GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)
}

func TestCheckSuperSkipsPopulatedTable(t *testing.T) {
	a := newTestApp(t)
	other := &domain.User{Username: "jane", Email: "jane@example.com", Role: domain.RoleManager}
	require.NoError(t, other.SetPassword("secret123"))
	require.NoError(t, a.Store().Users().Create(context.Background(), other))

	a.checkSuper()
	_, err := a.Store().Users().GetByUsername(context.Background(), "admin")
	assert.Error(t, err)
}

func TestSeedDemo(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.SeedDemo(ctx, 42))

	customers, err := a.Store().Customers().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, len(seedCustomers), customers)

	list, total, err := a.Orders().ListAll(ctx, "", 1, 200)
	require.NoError(t, err)
	assert.Greater(t, total, int64(0))
	for _, o := range list {
		items, err := a.Store().OrderItems().ListByOrder(ctx, o.ID)
		require.NoError(t, err)
		require.NotEmpty(t, items)
		sum := domain.MustMoney("0")
		for _, it := range items {
			assert.True(t, it.UnitPrice.Times(it.Quantity).SameAmount(it.TotalPrice))
			sum = sum.Add(it.TotalPrice)
		}
		assert.True(t, sum.SameAmount(o.TotalAmount), "order %s total", o.ID)
	}

	assert.Error(t, a.SeedDemo(ctx, 42), "seeding twice is refused")
}

func TestSweepOrphanItems(t *testing.T) {
	a := newTestApp(t)
	db := a.DB()
	c := testutil.Customer(t, db, "sweep@example.com")
	p := testutil.Product(t, db, "Sweep Truck", domain.CategoryTrucks, "10.00")
	o := testutil.Order(t, db, c, time.Now(), domain.OrderStatusPending, "Canada", testutil.ItemSpec{Product: p, Quantity: 2})

	// bypass the foreign key to leave the items behind
	require.NoError(t, db.Exec("PRAGMA foreign_keys = OFF").Error)
	require.NoError(t, db.Exec("DELETE FROM orders WHERE id = ?", o.ID).Error)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)

	a.SchedSweepOrphanItems()
	var left int64
	require.NoError(t, db.Model(&domain.OrderItem{}).Count(&left).Error)
	assert.Zero(t, left)
}

func TestJobsRegistry(t *testing.T) {
	a := newTestApp(t)
	jobs := a.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, JobAuditRetention, jobs[0].Name)
	assert.Equal(t, JobOrphanSweep, jobs[1].Name)
	assert.False(t, jobs[1].NextRun.IsZero())

	assert.NoError(t, a.RunJobNow(JobAuditRetention))
	assert.Error(t, a.RunJobNow("reindex"))
}
