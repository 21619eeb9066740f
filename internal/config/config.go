package config

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"evamed-backend/internal/questionbank"
)

var (
	cfg *APIConfig
	mu  sync.RWMutex
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// APIConfig represents the root element.
type APIConfig struct {
	XMLName        xml.Name             `xml:"API"`
	RequestDump    bool                 `xml:"REQUEST_DUMP,attr"`
	Context        ContextConfig        `xml:"CONTEXT"`
	Authentication AuthenticationConfig `xml:"AUTHENTICATION"`
	DB             DBConfig             `xml:"DB"`
	Logging        LoggingConfig        `xml:"LOGGING"`
	Questionnaire  QuestionnaireConfig  `xml:"QUESTIONNAIRE"`
	Cleanup        CleanupConfig        `xml:"CLEANUP"`
	RateLimit      RateLimitConfig      `xml:"RATE_LIMIT"`
	Server         ServerConfig         `xml:"SERVER"`
}

// ContextConfig holds basic server settings.
type ContextConfig struct {
	Port           int      `xml:"PORT"`
	Host           string   `xml:"HOST"`
	TimeZone       string   `xml:"TIME_ZONE"`
	StaticDir      string   `xml:"STATIC_DIR"`
	AllowedOrigins []string `xml:"ALLOWED_ORIGINS>ORIGIN"`
}

// Addr returns host:port for the HTTP listener.
func (c ContextConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Location resolves TimeZone, falling back to UTC.
func (c ContextConfig) Location() *time.Location {
	if c.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AuthenticationConfig holds authentication settings.
type AuthenticationConfig struct {
	EnableTokenAuth bool           `xml:"ENABLE_TOKEN_AUTH"`
	SessionTimeout  int            `xml:"SESSION_TIMEOUT"` // minutes
	RefreshTimeout  int            `xml:"REFRESH_TIMEOUT"` // hours
	AccessSecret    string         `xml:"ACCESS_SECRET"`
	RefreshSecret   string         `xml:"REFRESH_SECRET"`
	BootstrapAdmin  BootstrapAdmin `xml:"BOOTSTRAP_ADMIN"`
}

// AccessTTL is the access token lifetime.
func (a AuthenticationConfig) AccessTTL() time.Duration {
	return time.Duration(a.SessionTimeout) * time.Minute
}

// RefreshTTL is the refresh token lifetime.
func (a AuthenticationConfig) RefreshTTL() time.Duration {
	return time.Duration(a.RefreshTimeout) * time.Hour
}

// BootstrapAdmin is the account created on first start when no admin exists.
type BootstrapAdmin struct {
	Username    string `xml:"USERNAME"`
	Password    string `xml:"PASSWORD"`
	DisplayName string `xml:"DISPLAY_NAME"`
}

// DBConfig holds database connection settings.
type DBConfig struct {
	Initialize bool         `xml:"INITIALIZE"`
	Driver     string       `xml:"DRIVER"`
	Host       string       `xml:"HOST"`
	Port       int          `xml:"PORT"`
	SSLMode    string       `xml:"SSL_MODE"`
	Names      DBNames      `xml:"NAMES"`
	Username   string       `xml:"USERNAME"`
	Password   DBPassword   `xml:"PASSWORD"`
	Path       string       `xml:"PATH"`
	Pool       DBPoolConfig `xml:"POOL"`
}

// DBNames holds the names defined in the DB section.
type DBNames struct {
	EVAMED string `xml:"EVAMED,attr"`
}

// DBPassword holds password details.
type DBPassword struct {
	Type  string `xml:"TYPE,attr"`
	Value string `xml:",chardata"`
}

// DBPoolConfig holds database connection pooling settings.
type DBPoolConfig struct {
	MaxOpenConns    int `xml:"MAX_OPEN_CONNS"`
	MaxIdleConns    int `xml:"MAX_IDLE_CONNS"`
	ConnMaxLifetime int `xml:"CONN_MAX_LIFETIME"` // minutes
}

// DSN builds the postgres connection string.
func (d DBConfig) DSN() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password.Value, d.Names.EVAMED, sslMode)
}

// LoggingConfig controls log outputs and rotation.
type LoggingConfig struct {
	Dir        string `xml:"DIR"`
	Level      string `xml:"LEVEL"`
	Mode       string `xml:"MODE"` // console | json
	MaxSizeMB  int    `xml:"MAX_SIZE_MB"`
	MaxBackups int    `xml:"MAX_BACKUPS"`
	MaxAgeDays int    `xml:"MAX_AGE_DAYS"`
	Compress   bool   `xml:"COMPRESS"`
}

// QuestionnaireConfig selects the catalogs served by the API.
type QuestionnaireConfig struct {
	DefaultProfile string `xml:"DEFAULT_PROFILE"`
	CatalogDir     string `xml:"CATALOG_DIR"`
}

// CleanupConfig controls purging of abandoned evaluations.
type CleanupConfig struct {
	Enabled         bool `xml:"ENABLED,attr"`
	IntervalMinutes int  `xml:"INTERVAL"`
	StaleAfterHours int  `xml:"STALE_AFTER"`
}

// Interval is the delay between purge runs.
func (c CleanupConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// StaleAfter is the age beyond which an unfinished evaluation is purged.
func (c CleanupConfig) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterHours) * time.Hour
}

// RateLimitConfig throttles the public candidate endpoints per client.
type RateLimitConfig struct {
	RPS   float64 `xml:"RPS"`
	Burst int     `xml:"BURST"`
}

// ServerConfig holds listener limits.
type ServerConfig struct {
	MaxConnections  int `xml:"MAX_CONNECTIONS"`
	ReadTimeout     int `xml:"READ_TIMEOUT"`     // seconds
	WriteTimeout    int `xml:"WRITE_TIMEOUT"`    // seconds
	ShutdownTimeout int `xml:"SHUTDOWN_TIMEOUT"` // seconds
}

// Default returns the configuration used when no file is present.
func Default() *APIConfig {
	return &APIConfig{
		Context: ContextConfig{
			Port:           8000,
			Host:           "0.0.0.0",
			TimeZone:       "UTC",
			StaticDir:      "frontend/dist",
			AllowedOrigins: []string{"*"},
		},
		Authentication: AuthenticationConfig{
			EnableTokenAuth: true,
			SessionTimeout:  60,
			RefreshTimeout:  24 * 7,
			BootstrapAdmin: BootstrapAdmin{
				Username:    "admin",
				DisplayName: "Administrador",
			},
		},
		DB: DBConfig{
			Initialize: true,
			Driver:     "sqlite",
			Host:       "localhost",
			Port:       5432,
			SSLMode:    "disable",
			Names:      DBNames{EVAMED: "evamed"},
			Path:       "evamed.db",
			Pool: DBPoolConfig{
				MaxOpenConns:    10,
				MaxIdleConns:    5,
				ConnMaxLifetime: 30,
			},
		},
		Logging: LoggingConfig{
			Dir:        "logs",
			Level:      "info",
			Mode:       "console",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Questionnaire: QuestionnaireConfig{
			DefaultProfile: questionbank.ProfileSecurity,
		},
		Cleanup: CleanupConfig{
			Enabled:         true,
			IntervalMinutes: 60,
			StaleAfterHours: 24 * 30,
		},
		RateLimit: RateLimitConfig{
			RPS:   5,
			Burst: 20,
		},
		Server: ServerConfig{
			MaxConnections:  512,
			ReadTimeout:     15,
			WriteTimeout:    30,
			ShutdownTimeout: 10,
		},
	}
}

// Parse decodes an XML document over the defaults, so omitted elements keep
// their default values.
func Parse(r io.Reader) (*APIConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c := Default()
	// xml appends to slices instead of replacing them.
	c.Context.AllowedOrigins = nil
	if err := xml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if len(c.Context.AllowedOrigins) == 0 {
		c.Context.AllowedOrigins = []string{"*"}
	}
	return c, nil
}

// LoadConfig loads and parses the XML configuration from the given file,
// applies environment overrides and makes it available through GetConfig.
// A missing file yields the defaults.
func LoadConfig(xmlPath string) (*APIConfig, error) {
	var c *APIConfig
	f, err := os.Open(xmlPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		c = Default()
	case err != nil:
		return nil, fmt.Errorf("open config %s: %w", xmlPath, err)
	default:
		defer f.Close()
		if c, err = Parse(f); err != nil {
			return nil, fmt.Errorf("%s: %w", xmlPath, err)
		}
	}

	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	mu.Lock()
	cfg = c
	mu.Unlock()
	return c, nil
}

// GetConfig returns the loaded configuration, or the defaults if none was loaded.
func GetConfig() *APIConfig {
	mu.RLock()
	defer mu.RUnlock()
	if cfg == nil {
		return Default()
	}
	return cfg
}

// Validate reports every setting the server cannot start with.
func (c *APIConfig) Validate() error {
	var errs []string

	if c.Context.Port < 1 || c.Context.Port > 65535 {
		errs = append(errs, fmt.Sprintf("CONTEXT/PORT out of range: %d", c.Context.Port))
	}

	switch c.DB.Driver {
	case "sqlite":
		if c.DB.Path == "" {
			errs = append(errs, "DB/PATH is required for the sqlite driver")
		}
	case "postgres":
		if c.DB.Port < 1 || c.DB.Port > 65535 {
			errs = append(errs, fmt.Sprintf("DB/PORT out of range: %d", c.DB.Port))
		}
		if c.DB.Names.EVAMED == "" {
			errs = append(errs, "DB/NAMES EVAMED is required for the postgres driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("DB/DRIVER must be postgres or sqlite, got %q", c.DB.Driver))
	}

	if c.Authentication.EnableTokenAuth {
		if c.Authentication.AccessSecret == "" || c.Authentication.RefreshSecret == "" {
			errs = append(errs, "AUTHENTICATION secrets are required (EVAMED_JWT_SECRET, EVAMED_JWT_REFRESH_SECRET)")
		}
		if c.Authentication.SessionTimeout <= 0 || c.Authentication.RefreshTimeout <= 0 {
			errs = append(errs, "AUTHENTICATION timeouts must be positive")
		}
	}

	if c.Questionnaire.CatalogDir == "" && !slices.Contains(questionbank.EmbeddedProfiles(), c.Questionnaire.DefaultProfile) {
		errs = append(errs, fmt.Sprintf("QUESTIONNAIRE/DEFAULT_PROFILE %q is not a known catalog", c.Questionnaire.DefaultProfile))
	}

	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, "RATE_LIMIT/RPS and RATE_LIMIT/BURST must be positive")
	}
	if c.Cleanup.Enabled && (c.Cleanup.IntervalMinutes <= 0 || c.Cleanup.StaleAfterHours <= 0) {
		errs = append(errs, "CLEANUP/INTERVAL and CLEANUP/STALE_AFTER must be positive when cleanup is enabled")
	}
	if c.Server.MaxConnections < 0 {
		errs = append(errs, "SERVER/MAX_CONNECTIONS must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  %s", ErrInvalidConfig, strings.Join(errs, "\n  "))
	}
	return nil
}
