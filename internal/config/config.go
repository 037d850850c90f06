package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is built once at startup and passed explicitly to the components
// that need it. It is never mutated afterwards; there is no hot reload.
type Config struct {
	Port      string
	DBPath    string
	StaticDir string
	Env       string

	// PointsPerBottle is the conversion rate applied at deposit time.
	PointsPerBottle int64

	// Devices maps a kiosk device id to its API key.
	Devices map[string]string

	AdminKey string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("SERVER_PORT", "3000"),
		DBPath:          getEnv("DB_PATH", "./recycle.db"),
		StaticDir:       getEnv("STATIC_DIR", "./public"),
		Env:             getEnv("ENVIRONMENT", "development"),
		PointsPerBottle: int64(getEnvInt("POINTS_PER_BOTTLE", 10)),
		AdminKey:        getEnv("ADMIN_KEY", "RESET123"),
	}

	if cfg.PointsPerBottle <= 0 {
		return nil, fmt.Errorf("POINTS_PER_BOTTLE must be positive, got %d", cfg.PointsPerBottle)
	}

	devices, err := parseDevices(getEnv("DEVICE_KEYS", "BIN-01:BIN01SECRET"))
	if err != nil {
		return nil, err
	}
	cfg.Devices = devices

	return cfg, nil
}

// parseDevices parses a comma-separated list of device_id:api_key pairs.
func parseDevices(raw string) (map[string]string, error) {
	devices := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, key, ok := strings.Cut(pair, ":")
		if !ok || id == "" || key == "" {
			return nil, fmt.Errorf("DEVICE_KEYS entry %q is not device_id:api_key", pair)
		}
		devices[id] = key
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("DEVICE_KEYS contains no devices")
	}
	return devices, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
