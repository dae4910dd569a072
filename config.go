package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string
	LogLevel    string
	Environment string

	APIToken       string
	BaseURL        string
	ConfigTableID  string
	ConfigTableURL string

	CachePath   string
	HTTPTimeout time.Duration

	ConfigCacheTTL time.Duration
	SchemaCacheTTL time.Duration
	EventsCacheTTL time.Duration

	CategoriesFile string
	Aliases        map[string][]string
}

// defaultAliases are the category search patterns the site shipped with; a
// categories file extends or overrides them without a redeploy.
var defaultAliases = map[string][]string{
	"Raiwind":     {"International-Raiwind", "Raiwind"},
	"Tongi":       {"International-Tongi", "Tongi"},
	"Nizamuddin":  {"International-Nizamuddin", "Nizamuddin"},
	"UK":          {"International-UK", "UK"},
	"Canada":      {"International-Canada", "Canada"},
	"India":       {"International-India", "India"},
	"Other":       {"International-Other", "Other"},
	"Old Workers": {"OWJ"},
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	config := &Config{}

	config.APIToken = os.Getenv("BASEROW_API_TOKEN")
	if config.APIToken == "" {
		return nil, fmt.Errorf("BASEROW_API_TOKEN environment variable is required")
	}

	config.ConfigTableID = os.Getenv("CONFIG_TABLE_ID")
	if config.ConfigTableID == "" {
		return nil, fmt.Errorf("CONFIG_TABLE_ID environment variable is required")
	}

	config.BaseURL = getEnvWithDefault("BASEROW_BASE_URL", "https://api.baserow.io")
	config.ConfigTableURL = fmt.Sprintf("%s/api/database/rows/table/%s/?user_field_names=true",
		config.BaseURL, config.ConfigTableID)

	config.Port = getEnvWithDefault("PORT", "8080")
	config.LogLevel = getEnvWithDefault("LOG_LEVEL", "INFO")
	config.Environment = getEnvWithDefault("ENVIRONMENT", "development")
	config.CachePath = getEnvWithDefault("CACHE_PATH", "./cache.db")
	config.CategoriesFile = getEnvWithDefault("CATEGORIES_FILE", "")

	timeoutSec, err := strconv.Atoi(getEnvWithDefault("HTTP_TIMEOUT_SECONDS", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT_SECONDS: %v", err)
	}
	config.HTTPTimeout = time.Duration(timeoutSec) * time.Second

	config.ConfigCacheTTL, err = minutesEnv("CONFIG_CACHE_TTL_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	config.SchemaCacheTTL, err = minutesEnv("SCHEMA_CACHE_TTL_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	config.EventsCacheTTL, err = minutesEnv("EVENTS_CACHE_TTL_MINUTES", 30)
	if err != nil {
		return nil, err
	}

	config.Aliases, err = loadAliases(config.CategoriesFile)
	if err != nil {
		return nil, err
	}

	return config, nil
}

func minutesEnv(key string, fallback int) (time.Duration, error) {
	minutes, err := strconv.Atoi(getEnvWithDefault(key, strconv.Itoa(fallback)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return time.Duration(minutes) * time.Minute, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

type categoriesFile struct {
	Aliases map[string][]string `yaml:"aliases"`
}

// loadAliases merges the optional categories file over the built-in alias
// table. Entries in the file replace the default patterns for the same name.
func loadAliases(path string) (map[string][]string, error) {
	aliases := make(map[string][]string, len(defaultAliases))
	for k, v := range defaultAliases {
		aliases[k] = v
	}

	if path == "" {
		return aliases, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories file %s: %v", path, err)
	}

	var parsed categoriesFile
	if err := yaml.Unmarshal(b, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse categories file %s: %v", path, err)
	}
	for k, v := range parsed.Aliases {
		aliases[k] = v
	}

	return aliases, nil
}
