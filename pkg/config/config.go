package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"sigs.k8s.io/yaml"

	"github.com/appcanvas/builder/pkg/logutils"
)

// Persistence backends for project documents
const (
	BackendSQL  = "sql"
	BackendBaaS = "baas"
)

// Database drivers accepted by database.Connect
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	Server struct {
		Port          string `json:"port"`
		PublicBaseURL string `json:"publicBaseURL"` // Used to build share links.
		LogLevel      string `json:"logLevel"`
		// AllowedOrigins for CORS; empty allows every origin.
		AllowedOrigins []string `json:"allowedOrigins"`
	} `json:"server"`

	Database struct {
		Driver   string `json:"driver"` // mysql (TiDB) or sqlite
		DSN      string `json:"dsn"`    // Full DSN; overrides the TiDB fields below.
		Host     string `json:"host"`
		Port     string `json:"port"`
		User     string `json:"user"`
		Password string `json:"password"`
		Name     string `json:"name"`
	} `json:"database"`

	Auth struct {
		JWTSecret       string `json:"jwtSecret"`
		TokenTTLHours   int    `json:"tokenTTLHours"`
		AllowAnonymous  bool   `json:"allowAnonymous"`
		SessionCleanup  string `json:"sessionCleanup"` // cron spec for purging expired sessions
		AnonymousPrefix string `json:"anonymousPrefix"`
	} `json:"auth"`

	Persistence struct {
		Backend string `json:"backend"` // sql or baas
	} `json:"persistence"`

	BaaS struct {
		URL            string `json:"url"`
		APIKey         string `json:"apiKey"`
		TimeoutSeconds int    `json:"timeoutSeconds"`
	} `json:"baas"`

	Admin struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	} `json:"admin"`
}

var (
	once   sync.Once
	config *Config
	errCfg error
)

// GetConfig loads the configuration once per process.
func GetConfig() (*Config, error) {
	once.Do(func() {
		path := os.Getenv("APPCANVAS_CONFIG")
		if path == "" {
			path = "config.yaml"
		}
		config, errCfg = Load(path)
	})
	return config, errCfg
}

func IsDebugMode() bool {
	return gin.Mode() == gin.DebugMode
}

// Load reads an optional YAML file, then applies .env and environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := readConfig(path, cfg); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			logutils.Log.Debugf("config file %s not found, using defaults", path)
		} else {
			logutils.Log.Infof("📁 Loaded config from %s", path)
		}
	}

	if err := godotenv.Load(); err == nil {
		logutils.Log.Debug("📁 Loaded .env")
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = "3001"
	cfg.Server.PublicBaseURL = "http://localhost:3001"
	cfg.Database.Driver = DriverSQLite
	cfg.Database.DSN = "file:appcanvas.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	cfg.Database.Port = "4000"
	cfg.Database.Name = "appcanvas"
	cfg.Auth.JWTSecret = "default-secret-change-in-production"
	cfg.Auth.TokenTTLHours = 24
	cfg.Auth.AllowAnonymous = true
	cfg.Auth.SessionCleanup = "@every 1h"
	cfg.Auth.AnonymousPrefix = "anon"
	cfg.Persistence.Backend = BackendSQL
	cfg.BaaS.TimeoutSeconds = 10
	cfg.Admin.Name = "Admin"
	return cfg
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Persistence.Backend {
	case BackendSQL:
	case BackendBaaS:
		if c.BaaS.URL == "" {
			return fmt.Errorf("persistence backend %q requires baas.url", BackendBaaS)
		}
	default:
		return fmt.Errorf("unsupported persistence backend %q", c.Persistence.Backend)
	}
	if c.Auth.TokenTTLHours <= 0 {
		return fmt.Errorf("auth.tokenTTLHours must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.Server.Port
}

// ShareURL builds the public preview link for a published id.
func (c *Config) ShareURL(publishedID string) string {
	return strings.TrimRight(c.Server.PublicBaseURL, "/") + "/share?share=" + publishedID
}

func readConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, config)
}

func applyEnv(c *Config) {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.PublicBaseURL, "PUBLIC_BASE_URL")
	setString(&c.Server.LogLevel, "LOG_LEVEL")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DB_DSN")
	setString(&c.Database.Host, "TIDB_HOST")
	setString(&c.Database.Port, "TIDB_PORT")
	setString(&c.Database.User, "TIDB_USER")
	setString(&c.Database.Password, "TIDB_PASSWORD")
	setString(&c.Database.Name, "TIDB_DATABASE")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.SessionCleanup, "SESSION_CLEANUP_CRON")
	setString(&c.Persistence.Backend, "PERSISTENCE_BACKEND")
	setString(&c.BaaS.URL, "BAAS_URL")
	setString(&c.BaaS.APIKey, "BAAS_API_KEY")
	setString(&c.Admin.Email, "ADMIN_EMAIL")
	setString(&c.Admin.Password, "ADMIN_PASSWORD")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("TOKEN_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Auth.TokenTTLHours = n
		}
	}
	if v := os.Getenv("ALLOW_ANONYMOUS"); v != "" {
		c.Auth.AllowAnonymous = v == "true" || v == "1"
	}
	// TiDB host without an explicit driver means the MySQL protocol.
	if os.Getenv("TIDB_HOST") != "" && os.Getenv("DB_DRIVER") == "" {
		c.Database.Driver = DriverMySQL
		if os.Getenv("DB_DSN") == "" {
			c.Database.DSN = ""
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
