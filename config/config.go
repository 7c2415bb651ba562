package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the application-wide configuration shared by the API server and the console.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Console   ConsoleConfig   `mapstructure:"console"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	Documents DocumentsConfig `mapstructure:"documents"`
	Export    ExportConfig    `mapstructure:"export"`
}

// ServerConfig configures the REST API server.
type ServerConfig struct {
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// ConsoleConfig configures the administration console and how it reaches the API.
type ConsoleConfig struct {
	Port           int           `mapstructure:"port"`
	APIBaseURL     string        `mapstructure:"api_base_url"`
	APIToken       string        `mapstructure:"api_token"`
	APIEmail       string        `mapstructure:"api_email"`
	APIPassword    string        `mapstructure:"api_password"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	SearchDebounce time.Duration `mapstructure:"search_debounce"`
	PageSize       int           `mapstructure:"page_size"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// DSN builds the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig configures the token blacklist store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig configures JWT issuing on the API server.
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`

	// first administrator, created when the utilizadores table is empty
	BootstrapEmail    string `mapstructure:"bootstrap_email"`
	BootstrapPassword string `mapstructure:"bootstrap_password"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DocumentsConfig holds the institution identity printed on receipts and rosters.
type DocumentsConfig struct {
	InstitutionName string `mapstructure:"institution_name"`
	NIF             string `mapstructure:"nif"`
	Address         string `mapstructure:"address"`
	Phone           string `mapstructure:"phone"`
	Email           string `mapstructure:"email"`
	LogoPath        string `mapstructure:"logo_path"`
	Currency        string `mapstructure:"currency"`
}

// ExportConfig configures the SAF-T export path.
type ExportConfig struct {
	SAFTTimeout     time.Duration `mapstructure:"saft_timeout"`
	SAFTFallback    bool          `mapstructure:"saft_fallback"`
	SoftwareCertNum string        `mapstructure:"software_cert_number"`
}

// Load reads configuration from file and environment.
// Precedence: environment > config file > defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── defaults ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:8081"})

	v.SetDefault("console.port", 8081)
	v.SetDefault("console.api_base_url", "http://localhost:8080")
	v.SetDefault("console.request_timeout", "30s")
	v.SetDefault("console.search_debounce", "300ms")
	v.SetDefault("console.page_size", 10)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "jomorais")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Africa/Luanda")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "12h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("documents.institution_name", "Instituto Jomorais")
	v.SetDefault("documents.currency", "AOA")

	v.SetDefault("export.saft_timeout", "5m")
	v.SetDefault("export.saft_fallback", true)
	v.SetDefault("export.software_cert_number", "0")

	// ── config file ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── environment ──
	v.SetEnvPrefix("JOMORAIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &cfg, nil
}

// ValidateServer checks the keys the API server cannot start without.
func (c *Config) ValidateServer() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret must not be empty")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("config: auth.jwt_secret must be at least 16 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be between 1 and 65535")
	}
	return nil
}

// ValidateConsole checks the keys the console cannot start without.
func (c *Config) ValidateConsole() error {
	if c.Console.Port <= 0 || c.Console.Port > 65535 {
		return fmt.Errorf("config: console.port must be between 1 and 65535")
	}
	if c.Console.APIBaseURL == "" {
		return fmt.Errorf("config: console.api_base_url must not be empty")
	}
	if c.Console.APIToken == "" && (c.Console.APIEmail == "" || c.Console.APIPassword == "") {
		return fmt.Errorf("config: console needs api_token or api_email/api_password")
	}
	if c.Console.PageSize <= 0 {
		return fmt.Errorf("config: console.page_size must be positive")
	}
	return nil
}
