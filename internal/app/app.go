package app

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/toyorbit/toyorbit/config"
	"github.com/toyorbit/toyorbit/internal/analytics"
	"github.com/toyorbit/toyorbit/internal/audit"
	"github.com/toyorbit/toyorbit/internal/domain"
	"github.com/toyorbit/toyorbit/internal/orders"
	"github.com/toyorbit/toyorbit/internal/report"
	"github.com/toyorbit/toyorbit/internal/repository"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	store     *repository.Store
	sched     *cron.Cron
	jobs      map[string]*job
	orders    *orders.Manager
	analytics *analytics.Aggregator
	reports   *report.Generator
	audit     *audit.Recorder
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ ServiceProvider   = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

func (a *Application) Store() *repository.Store {
	return a.store
}

func (a *Application) Orders() *orders.Manager {
	return a.orders
}

func (a *Application) Analytics() *analytics.Aggregator {
	return a.analytics
}

func (a *Application) Reports() *report.Generator {
	return a.reports
}

func (a *Application) Audit() *audit.Recorder {
	return a.audit
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// OverrideDB replaces the application's database handle and rebuilds the
// services on top of it (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) error {
	a.gormDB = db
	if err := a.initServices(); err != nil {
		return err
	}
	if a.sched == nil {
		a.initJob()
	}
	return nil
}

func (a *Application) Init(cfg *config.AppConfig) error {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	zap.ReplaceGlobals(newLogger(cfg.Logger))

	a.gormDB, err = getDatabase(cfg.Database)
	if err != nil {
		return err
	}
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(cfg.Database.Debug); err != nil {
		return errors.Wrap(err, "migrate database")
	}
	if err := a.initServices(); err != nil {
		return err
	}
	a.checkSuper()
	a.initJob()
	return nil
}

func newLogger(cfg config.LogConfig) *zap.Logger {
	var zapConfig zap.Config
	if cfg.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	if !cfg.FileEnable {
		logger, err := zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
		return logger
	}

	lumberJackLogger := &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    64,
		MaxBackups: 7,
		MaxAge:     7,
		Compress:   false,
	}
	core := zapcore.NewTee(
		zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(lumberJackLogger),
			zapConfig.Level,
		),
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(os.Stdout),
			zapConfig.Level,
		),
	)
	return zap.New(core, zap.AddCaller())
}

// getDatabase opens postgres or sqlite according to the config
func getDatabase(cfg config.DBConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Warn),
	}
	if cfg.Debug {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Type) {
	case "sqlite":
		dsn := cfg.URL
		if dsn == "" {
			dsn = cfg.Name + ".db?_foreign_keys=on"
		}
		dialector = sqlite.Open(dsn)
	default:
		dsn := cfg.URL
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
				cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name, cfg.SSLMode)
		}
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", cfg.Type)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "database handle")
	}
	if cfg.MaxConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
	}
	if cfg.IdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.IdleConn)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// initServices builds the domain services over the current database
func (a *Application) initServices() error {
	cfg := a.appConfig
	a.store = repository.NewStore(a.gormDB)
	a.orders = orders.NewManager(a.store)
	a.analytics = analytics.NewAggregator(a.store)

	var text report.TextGenerator = report.NoopText{}
	if cfg.OpenAI.APIKey != "" {
		text = &report.OpenAIText{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
			Timeout: cfg.OpenAI.Timeout,
		}
	} else {
		zap.S().Warn("openai api key not set, report narratives will be empty")
	}
	charts := report.NewGoChart(cfg.Report.ChartWidth, cfg.Report.ChartHeight)
	a.reports = report.NewGenerator(a.store, text, charts, cfg.Report.Brand)

	if a.audit != nil {
		a.audit.Close()
	}
	rec, err := audit.NewRecorder(a.store, cfg.Jobs.SnowflakeNodeID)
	if err != nil {
		return err
	}
	a.audit = rec
	return nil
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			if err2, ok := err1.(error); ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	db := a.gormDB
	if track {
		db = db.Debug()
	}
	return db.Migrator().AutoMigrate(domain.Tables...)
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

// InitDb drops and recreates every table, then restores the administrator
func (a *Application) InitDb() {
	a.DropAll()
	if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
		zap.S().Error(err)
	}
	a.checkSuper()
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	if a.audit != nil {
		a.audit.Close()
	}
	if a.gormDB != nil {
		if sqlDB, err := a.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = zap.L().Sync()
}
