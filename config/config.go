package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Metrics bool   `yaml:"metrics"` // serve prometheus metrics on /metrics
}

// DBConfig database configuration
type DBConfig struct {
	Type     string `yaml:"type"` // postgres | sqlite
	URL      string `yaml:"url"`  // full DSN, takes precedence over host/port fields
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// LogConfig logger configuration
type LogConfig struct {
	Mode       string `yaml:"mode"` // development | production
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// AuthConfig token signing and the bootstrap administrator
type AuthConfig struct {
	JwtSecret     string        `yaml:"jwt_secret"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	AdminUsername string        `yaml:"admin_username"`
	AdminEmail    string        `yaml:"admin_email"`
	AdminPassword string        `yaml:"admin_password"`
}

// OpenAIConfig text generation collaborator
type OpenAIConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// ReportConfig chart geometry and branding used by the customer report
type ReportConfig struct {
	Brand       string `yaml:"brand"`
	ChartWidth  int    `yaml:"chart_width"`
	ChartHeight int    `yaml:"chart_height"`
}

// RateLimitConfig request rate limits, requests per window
type RateLimitConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Window      time.Duration `yaml:"window"`
	Max         int           `yaml:"max"`
	LoginWindow time.Duration `yaml:"login_window"`
	LoginMax    int           `yaml:"login_max"`
}

// CorsConfig allowed browser origins
type CorsConfig struct {
	Origins []string `yaml:"origins"`
}

// JobConfig background maintenance jobs
type JobConfig struct {
	OrphanSweep     string `yaml:"orphan_sweep"`
	AuditRetention  string `yaml:"audit_retention"`
	AuditRetainDays int    `yaml:"audit_retain_days"`
	SnowflakeNodeID int64  `yaml:"snowflake_node_id"`
}

// AppConfig application configuration
type AppConfig struct {
	System    SysConfig       `yaml:"system"`
	Web       WebConfig       `yaml:"web"`
	Database  DBConfig        `yaml:"database"`
	Logger    LogConfig       `yaml:"logger"`
	Auth      AuthConfig      `yaml:"auth"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Report    ReportConfig    `yaml:"report"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Cors      CorsConfig      `yaml:"cors"`
	Jobs      JobConfig       `yaml:"jobs"`
}

// GetLogDir returns the log directory under the workdir
func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

// Addr returns the listen address of the web server
func (c *AppConfig) Addr() string {
	return c.Web.Host + ":" + cast.ToString(c.Web.Port)
}

// DefaultAppConfig returns the built-in defaults
var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "ToyOrbit",
		Location: "UTC",
		Workdir:  "/var/toyorbit",
		Debug:    true,
	},
	Web: WebConfig{
		Host: "0.0.0.0",
		Port: 5500,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "toyorbit",
		User:     "postgres",
		Passwd:   "postgres",
		SSLMode:  "disable",
		MaxConn:  10,
		IdleConn: 2,
	},
	Logger: LogConfig{
		Mode:     "development",
		Filename: "/var/toyorbit/toyorbit.log",
	},
	Auth: AuthConfig{
		TokenTTL:      7 * 24 * time.Hour,
		AdminUsername: "admin",
		AdminEmail:    "admin@toyorbit.local",
		AdminPassword: "toyorbit",
	},
	OpenAI: OpenAIConfig{
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
		Timeout: 30 * time.Second,
	},
	Report: ReportConfig{
		Brand:       "ToyOrbit",
		ChartWidth:  800,
		ChartHeight: 400,
	},
	RateLimit: RateLimitConfig{
		Enabled:     true,
		Window:      time.Minute,
		Max:         100,
		LoginWindow: 15 * time.Minute,
		LoginMax:    10,
	},
	Cors: CorsConfig{
		Origins: []string{"http://localhost:5173"},
	},
	Jobs: JobConfig{
		OrphanSweep:     "@daily",
		AuditRetention:  "@daily",
		AuditRetainDays: 365,
		SnowflakeNodeID: 1,
	},
}

// LoadConfig reads the yaml file (when present), loads .env and applies
// environment overrides. An empty cfile means defaults plus environment.
func LoadConfig(cfile string) (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := *DefaultAppConfig
	cfg.Cors.Origins = append([]string(nil), DefaultAppConfig.Cors.Origins...)
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfile)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", cfile)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with
func (c *AppConfig) Validate() error {
	switch c.Database.Type {
	case "postgres", "sqlite":
	default:
		return errors.Errorf("unsupported database type %q", c.Database.Type)
	}
	if strings.TrimSpace(c.Auth.JwtSecret) == "" {
		return errors.New("auth.jwt_secret (or JWT_SECRET) is required")
	}
	if c.Web.Port <= 0 {
		return errors.Errorf("invalid web port %d", c.Web.Port)
	}
	return nil
}

func applyEnv(cfg *AppConfig) {
	setEnvValue("TOYORBIT_SYSTEM_WORKER_DIR", &cfg.System.Workdir)
	setEnvValue("TOYORBIT_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("TOYORBIT_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("TOYORBIT_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("TOYORBIT_WEB_PORT", &cfg.Web.Port)
	setEnvIntValue("PORT", &cfg.Web.Port)
	setEnvBoolValue("TOYORBIT_WEB_METRICS", &cfg.Web.Metrics)

	setEnvValue("TOYORBIT_DB_TYPE", &cfg.Database.Type)
	setEnvValue("TOYORBIT_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("TOYORBIT_DB_PORT", &cfg.Database.Port)
	setEnvValue("TOYORBIT_DB_NAME", &cfg.Database.Name)
	setEnvValue("TOYORBIT_DB_USER", &cfg.Database.User)
	setEnvValue("TOYORBIT_DB_PWD", &cfg.Database.Passwd)
	setEnvIntValue("TOYORBIT_DB_MAX_CONN", &cfg.Database.MaxConn)
	setEnvBoolValue("TOYORBIT_DB_DEBUG", &cfg.Database.Debug)
	setEnvValue("DATABASE_URL", &cfg.Database.URL)

	setEnvValue("TOYORBIT_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("TOYORBIT_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)

	setEnvValue("JWT_SECRET", &cfg.Auth.JwtSecret)
	setEnvDurationValue("TOYORBIT_TOKEN_TTL", &cfg.Auth.TokenTTL)
	setEnvValue("TOYORBIT_ADMIN_EMAIL", &cfg.Auth.AdminEmail)
	setEnvValue("TOYORBIT_ADMIN_PASSWORD", &cfg.Auth.AdminPassword)

	setEnvValue("OPENAI_API_KEY", &cfg.OpenAI.APIKey)
	setEnvValue("OPENAI_BASE_URL", &cfg.OpenAI.BaseURL)
	setEnvValue("OPENAI_MODEL", &cfg.OpenAI.Model)

	setEnvDurationValue("RATE_LIMIT_WINDOW", &cfg.RateLimit.Window)
	setEnvIntValue("RATE_LIMIT_MAX", &cfg.RateLimit.Max)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Cors.Origins = origins
	}
}

func setEnvValue(name string, val *string) {
	if v := os.Getenv(name); v != "" {
		*val = v
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v := os.Getenv(name); v != "" {
		*val = cast.ToBool(v)
	}
}

func setEnvIntValue(name string, val *int) {
	if v := os.Getenv(name); v != "" {
		*val = cast.ToInt(v)
	}
}

func setEnvDurationValue(name string, val *time.Duration) {
	if v := os.Getenv(name); v != "" {
		*val = cast.ToDuration(v)
	}
}
