package config

import (
	"fmt"
	"math"
	"time"

	"galaxy-server/internal/shared/utils"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	OAuth     OAuthConfig
	Frontend  FrontendConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Galaxy    GalaxyConfig
	Render    RenderConfig
}

type ServerConfig struct {
	Port         string
	URL          string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsPath  string
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	Enabled         bool
	JWTSecret       string
	TokenExpiration time.Duration
	CookieSecure    bool
	CookieSameSite  string
	OperatorLogins  []string
}

type OAuthConfig struct {
	GitHub GitHubOAuthConfig
}

type GitHubOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

type FrontendConfig struct {
	URL       string
	CORSDebug bool
}

type LoggingConfig struct {
	Level      string
	Format     string
	JSONFormat bool
	File       string
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
	TrustProxy        bool
}

// GalaxyConfig carries the parameter set installed at startup
type GalaxyConfig struct {
	Flatness        float64
	Tightness       float64
	Turns           float64
	Count           int
	Size            float64
	Radius          float64
	Branches        int
	Spin            float64
	Randomness      float64
	RandomnessPower float64
	InsideColor     string
	OutsideColor    string
	Seed            uint64
	CacheTTL        time.Duration
}

type RenderConfig struct {
	SnapshotWidth   int
	SnapshotHeight  int
	MaxSnapshotSide int
	WindowWidth     int
	WindowHeight    int
	CameraX         float64
	CameraY         float64
	CameraZ         float64
	FOV             float64
	Near            float64
	Far             float64
	FrameRate       int
}

var GlobalConfig *Config

func Init() error {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	config, err := Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	GlobalConfig = config
	return nil
}

// LoadLocal is Load for the desktop tools: .env is honoured but neither the
// server checks nor GlobalConfig apply
func LoadLocal() (*Config, error) {
	_ = godotenv.Load()
	return Load()
}

// Load reads the environment without publishing the result
func Load() (*Config, error) {
	config := &Config{
		Server:    loadServerConfig(),
		Database:  loadDatabaseConfig(),
		Redis:     loadRedisConfig(),
		Auth:      loadAuthConfig(),
		OAuth:     loadOAuthConfig(),
		Frontend:  loadFrontendConfig(),
		Logging:   loadLoggingConfig(),
		RateLimit: loadRateLimitConfig(),
		Render:    loadRenderConfig(),
	}

	galaxy, err := loadGalaxyConfig()
	if err != nil {
		return nil, err
	}
	config.Galaxy = galaxy

	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:         utils.GetEnv("SERVER_PORT", "8080"),
		URL:          utils.GetEnv("SERVER_URL", "http://localhost:8080"),
		Environment:  utils.GetEnv("ENVIRONMENT", "development"),
		ReadTimeout:  time.Duration(utils.GetEnvInt("SERVER_READ_TIMEOUT_SECONDS", 15)) * time.Second,
		WriteTimeout: time.Duration(utils.GetEnvInt("SERVER_WRITE_TIMEOUT_SECONDS", 30)) * time.Second,
		IdleTimeout:  time.Duration(utils.GetEnvInt("SERVER_IDLE_TIMEOUT_SECONDS", 60)) * time.Second,
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Enabled:         utils.GetEnvBool("DB_ENABLED", true),
		Host:            utils.GetEnv("DB_HOST", "localhost"),
		Port:            utils.GetEnv("DB_PORT", "5432"),
		User:            utils.GetEnv("DB_USER", "postgres"),
		Password:        utils.GetEnv("DB_PASSWORD", "postgres"),
		Name:            utils.GetEnv("DB_NAME", "galaxy"),
		SSLMode:         utils.GetEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    utils.GetEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    utils.GetEnvInt("DB_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime: time.Duration(utils.GetEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		MigrationsPath:  utils.GetEnv("DB_MIGRATIONS_PATH", "migrations"),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  utils.GetEnvBool("REDIS_ENABLED", false),
		URL:      utils.GetEnv("REDIS_URL", ""),
		Host:     utils.GetEnv("REDIS_HOST", "localhost"),
		Port:     utils.GetEnv("REDIS_PORT", "6379"),
		Password: utils.GetEnv("REDIS_PASSWORD", ""),
		DB:       utils.GetEnvInt("REDIS_DB", 0),
	}
}

func loadAuthConfig() AuthConfig {
	environment := utils.GetEnv("ENVIRONMENT", "development")

	return AuthConfig{
		Enabled:         utils.GetEnvBool("AUTH_ENABLED", environment == "production"),
		JWTSecret:       utils.GetEnv("JWT_SECRET", ""),
		TokenExpiration: time.Duration(utils.GetEnvInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
		CookieSecure:    environment == "production",
		CookieSameSite:  utils.GetEnv("COOKIE_SAME_SITE", "lax"),
		OperatorLogins:  utils.GetEnvList("OPERATOR_LOGINS"),
	}
}

func loadOAuthConfig() OAuthConfig {
	serverURL := utils.GetEnv("SERVER_URL", "http://localhost:8080")

	return OAuthConfig{
		GitHub: GitHubOAuthConfig{
			ClientID:     utils.GetEnv("GITHUB_CLIENT_ID", ""),
			ClientSecret: utils.GetEnv("GITHUB_CLIENT_SECRET", ""),
			RedirectURL:  serverURL + "/auth/github/callback",
			Scopes:       []string{"read:user"},
		},
	}
}

func loadFrontendConfig() FrontendConfig {
	return FrontendConfig{
		URL:       utils.GetEnv("FRONTEND_URL", "http://localhost:3000"),
		CORSDebug: utils.GetEnvBool("CORS_DEBUG", false),
	}
}

func loadLoggingConfig() LoggingConfig {
	environment := utils.GetEnv("ENVIRONMENT", "development")

	return LoggingConfig{
		Level:      utils.GetEnv("LOG_LEVEL", "debug"),
		Format:     utils.GetEnv("LOG_FORMAT", "text"),
		JSONFormat: environment == "production" || utils.GetEnv("LOG_FORMAT", "text") == "json",
		File:       utils.GetEnv("LOG_FILE", ""),
	}
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           utils.GetEnvBool("RATE_LIMIT_ENABLED", true),
		RequestsPerSecond: utils.GetEnvFloat("RATE_LIMIT_REQUESTS_PER_SECOND", 5),
		BurstSize:         utils.GetEnvInt("RATE_LIMIT_BURST_SIZE", 10),
		TrustProxy:        utils.GetEnvBool("RATE_LIMIT_TRUST_PROXY", false),
	}
}

func loadGalaxyConfig() (GalaxyConfig, error) {
	seed, err := utils.GetEnvUint64("GALAXY_SEED", 0)
	if err != nil {
		return GalaxyConfig{}, err
	}

	return GalaxyConfig{
		Flatness:        utils.GetEnvFloat("GALAXY_FLATNESS", 1),
		Tightness:       utils.GetEnvFloat("GALAXY_TIGHTNESS", 0.075),
		Turns:           utils.GetEnvFloat("GALAXY_TURNS", 3),
		Count:           utils.GetEnvInt("GALAXY_COUNT", 100000),
		Size:            utils.GetEnvFloat("GALAXY_SIZE", 0.01),
		Radius:          utils.GetEnvFloat("GALAXY_RADIUS", 5),
		Branches:        utils.GetEnvInt("GALAXY_BRANCHES", 1),
		Spin:            utils.GetEnvFloat("GALAXY_SPIN", 1),
		Randomness:      utils.GetEnvFloat("GALAXY_RANDOMNESS", 0.2),
		RandomnessPower: utils.GetEnvFloat("GALAXY_RANDOMNESS_POWER", 3),
		InsideColor:     utils.GetEnv("GALAXY_INSIDE_COLOR", "#ff6030"),
		OutsideColor:    utils.GetEnv("GALAXY_OUTSIDE_COLOR", "#1b3984"),
		Seed:            seed,
		CacheTTL:        time.Duration(utils.GetEnvInt("GALAXY_CACHE_TTL_MINUTES", 30)) * time.Minute,
	}, nil
}

func loadRenderConfig() RenderConfig {
	return RenderConfig{
		SnapshotWidth:   utils.GetEnvInt("SNAPSHOT_WIDTH", 800),
		SnapshotHeight:  utils.GetEnvInt("SNAPSHOT_HEIGHT", 600),
		MaxSnapshotSide: utils.GetEnvInt("SNAPSHOT_MAX_SIDE", 2048),
		WindowWidth:     utils.GetEnvInt("VIEWER_WIDTH", 1280),
		WindowHeight:    utils.GetEnvInt("VIEWER_HEIGHT", 720),
		CameraX:         utils.GetEnvFloat("CAMERA_X", 3),
		CameraY:         utils.GetEnvFloat("CAMERA_Y", 3),
		CameraZ:         utils.GetEnvFloat("CAMERA_Z", 3),
		FOV:             utils.GetEnvFloat("CAMERA_FOV", 75),
		Near:            utils.GetEnvFloat("CAMERA_NEAR", 0.1),
		Far:             utils.GetEnvFloat("CAMERA_FAR", 100),
		FrameRate:       utils.GetEnvInt("TERMINAL_FRAME_RATE", 30),
	}
}

func (c *Config) validate() error {
	if c.Auth.Enabled {
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED is true")
		}
		if len(c.Auth.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
		}
	}

	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	}

	return c.Galaxy.validate()
}

// validate mirrors the generator preconditions so a bad environment fails at startup
func (g GalaxyConfig) validate() error {
	if g.Branches < 1 {
		return fmt.Errorf("GALAXY_BRANCHES must be at least 1")
	}
	if !(g.Turns > 0) || math.IsInf(g.Turns, 0) {
		return fmt.Errorf("GALAXY_TURNS must be positive")
	}
	if g.Radius == 0 || math.IsNaN(g.Radius) {
		return fmt.Errorf("GALAXY_RADIUS must be non-zero")
	}
	if g.Count < 0 {
		return fmt.Errorf("GALAXY_COUNT must not be negative")
	}
	return nil
}

func (c *Config) GitHubOAuthConfigured() bool {
	return c.OAuth.GitHub.ClientID != "" && c.OAuth.GitHub.ClientSecret != ""
}

func (c *Config) IsOperator(login string) bool {
	for _, allowed := range c.Auth.OperatorLogins {
		if allowed == login {
			return true
		}
	}
	return false
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
