package app

import (
	"github.com/robfig/cron/v3"
	"github.com/toyorbit/toyorbit/config"
	"github.com/toyorbit/toyorbit/internal/analytics"
	"github.com/toyorbit/toyorbit/internal/audit"
	"github.com/toyorbit/toyorbit/internal/orders"
	"github.com/toyorbit/toyorbit/internal/report"
	"github.com/toyorbit/toyorbit/internal/repository"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
	Store() *repository.Store
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
	Jobs() []JobInfo
	RunJobNow(name string) error
}

// ServiceProvider exposes the domain services
type ServiceProvider interface {
	Orders() *orders.Manager
	Analytics() *analytics.Aggregator
	Reports() *report.Generator
	Audit() *audit.Recorder
}

// AppContext combines all provider interfaces for full application context
// Handlers should depend on specific providers or this combined interface
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider
	ServiceProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
}
