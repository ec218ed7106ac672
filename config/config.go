package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// dockerChromium is where the container image installs Chromium.
const dockerChromium = "/usr/bin/chromium-browser"

// DefaultUserAgent matches a stock desktop Chrome so the stealth page blends in.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0.0.0 Safari/537.36"

// Config holds every setting read from the environment.
type Config struct {
	Browser   BrowserConfig
	Extractor ExtractorConfig
	Server    ServerConfig
	Sinks     SinkConfig
	Watch     WatchConfig
	LogLevel  string
}

// BrowserConfig controls how the browser session is launched.
type BrowserConfig struct {
	Headless          bool
	Bin               string
	RemoteURL         string
	Stealth           bool
	UserAgent         string
	Locale            string
	Timezone          string
	ViewportWidth     int
	ViewportHeight    int
	NavigationTimeout time.Duration
}

// ExtractorConfig holds the short local bounds used by the DOM fallback.
type ExtractorConfig struct {
	ConsentTimeout   time.Duration
	DropdownTimeout  time.Duration
	SettleTimeout    time.Duration
	OutputStyle      string
	FingerprintsFile string
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Host               string
	Port               string
	AllowedOrigins     []string
	APIKey             string
	RateLimitPerSecond float64
}

// SinkConfig enables optional result sinks.
type SinkConfig struct {
	DatabaseURL  string
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string
}

// WatchConfig configures the periodic re-check.
type WatchConfig struct {
	Schedule string
}

// Load reads the configuration from environment variables.
func Load() *Config {
	return &Config{
		Browser: BrowserConfig{
			// Cloudflare-fronted stores challenge headless Chrome far more often.
			Headless:          getEnvBool("BROWSER_HEADLESS", false),
			Bin:               getEnv("BROWSER_BIN", detectBrowserBin()),
			RemoteURL:         os.Getenv("BROWSER_REMOTE_URL"),
			Stealth:           getEnvBool("BROWSER_STEALTH", true),
			UserAgent:         getEnv("BROWSER_USER_AGENT", DefaultUserAgent),
			Locale:            getEnv("BROWSER_LOCALE", "en-US"),
			Timezone:          getEnv("BROWSER_TIMEZONE", "Asia/Kathmandu"),
			ViewportWidth:     getEnvInt("BROWSER_VIEWPORT_WIDTH", 1200),
			ViewportHeight:    getEnvInt("BROWSER_VIEWPORT_HEIGHT", 800),
			NavigationTimeout: getEnvDuration("NAVIGATION_TIMEOUT", 30*time.Second),
		},
		Extractor: ExtractorConfig{
			ConsentTimeout:   getEnvDuration("CONSENT_TIMEOUT", 2*time.Second),
			DropdownTimeout:  getEnvDuration("DROPDOWN_TIMEOUT", 2*time.Second),
			SettleTimeout:    getEnvDuration("SETTLE_TIMEOUT", 1*time.Second),
			OutputStyle:      getEnv("PRICE_OUTPUT_STYLE", "paired"),
			FingerprintsFile: os.Getenv("PRICE_FINGERPRINTS_FILE"),
		},
		Server: ServerConfig{
			Host:               getEnv("HOST", "0.0.0.0"),
			Port:               getEnv("PORT", "8080"),
			AllowedOrigins:     getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			APIKey:             os.Getenv("API_KEY"),
			RateLimitPerSecond: getEnvFloat("RATE_LIMIT_PER_SECOND", 1),
		},
		Sinks: SinkConfig{
			DatabaseURL:  os.Getenv("DATABASE_URL"),
			InfluxURL:    os.Getenv("INFLUXDB_URL"),
			InfluxToken:  os.Getenv("INFLUXDB_TOKEN"),
			InfluxOrg:    os.Getenv("INFLUXDB_ORG"),
			InfluxBucket: os.Getenv("INFLUXDB_BUCKET"),
		},
		Watch: WatchConfig{
			Schedule: getEnv("WATCH_SCHEDULE", "0 0 */12 * * *"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Addr is the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// InfluxEnabled reports whether enough is set to write to InfluxDB.
func (c SinkConfig) InfluxEnabled() bool {
	return c.InfluxURL != "" && c.InfluxOrg != "" && c.InfluxBucket != ""
}

// detectBrowserBin prefers the system Chromium inside the container image.
// An empty result lets the launcher download or find a browser itself.
func detectBrowserBin() string {
	if _, err := os.Stat(dockerChromium); err == nil {
		return dockerChromium
	}
	return ""
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
