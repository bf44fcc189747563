package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./wayfinderlogs")

	viper.SetDefault("kiosk.id", "")

	viper.SetDefault("api.baseUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")

	viper.SetDefault("cache.type", "sqlite")
	viper.SetDefault("cache.sqlitePath", "./wayfinder_cache.db")
	viper.SetDefault("cache.maxAgeHours", 24)
	viper.SetDefault("cache.postgresDsn", "")

	viper.SetDefault("display.revealSpeed", 120.0) // plan units per second
	viper.SetDefault("display.terminalPreview", false)

	// 300000 ms on the kiosk surface; admin surfaces configure 60000 ms.
	viper.SetDefault("idle.timeoutMs", 300000)
	viper.SetDefault("idle.requestFullscreen", true)

	viper.SetDefault("server.listenAddr", ":8090")

	viper.SetDefault("building.anchorLon", 0.0)
	viper.SetDefault("building.anchorLat", 0.0)
	viper.SetDefault("building.metersPerUnit", 0.05)

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "wayfinder-metrics")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetConfigName("wayfinder_kiosk.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat64 returns a float64 config value.
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}

// IdleTimeout returns the inactivity timeout as a duration.
func IdleTimeout() time.Duration {
	return time.Duration(viper.GetInt("idle.timeoutMs")) * time.Millisecond
}

// CacheMaxAge returns the cache entry max age as a duration.
func CacheMaxAge() time.Duration {
	return time.Duration(viper.GetInt("cache.maxAgeHours")) * time.Hour
}
