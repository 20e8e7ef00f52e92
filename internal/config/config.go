package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const dotEnvFile = ".env"

type Config struct {
	Port           string
	ProjectID      string
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string
	RedisAddr      string
	RedisPassword  string
	CacheTTL       time.Duration
	AllowDataReset bool
	AdminEmails    []string
	CatalogPath    string
}

// New reads the configuration from the environment after loading a .env file
// from the working directory when one exists.
func New() *Config {
	loadDotEnv(dotEnvFile)
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("port", "8080")
	v.SetDefault("projectid", "")
	v.SetDefault("loglevel", "info")
	v.SetDefault("logformat", "json")
	v.SetDefault("allowedorigins", "*")
	v.SetDefault("redisaddr", "")
	v.SetDefault("redispassword", "")
	v.SetDefault("cachettl", 5*time.Minute)
	v.SetDefault("allowdatareset", false)
	v.SetDefault("adminemails", "")
	v.SetDefault("catalogpath", "")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:           v.GetString("port"),
		ProjectID:      v.GetString("projectid"),
		LogLevel:       v.GetString("loglevel"),
		LogFormat:      v.GetString("logformat"),
		AllowedOrigins: splitList(v.GetString("allowedorigins")),
		RedisAddr:      v.GetString("redisaddr"),
		RedisPassword:  v.GetString("redispassword"),
		CacheTTL:       v.GetDuration("cachettl"),
		AllowDataReset: v.GetBool("allowdatareset"),
		AdminEmails:    splitList(v.GetString("adminemails")),
		CatalogPath:    v.GetString("catalogpath"),
	}
}

func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not load env file", "path", path, "error", err)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func (c *Config) CacheEnabled() bool { return c.RedisAddr != "" }

// Validate rejects a configuration without a Firestore project unless the
// emulator is in use.
func (c *Config) Validate() error {
	if c.ProjectID == "" && os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		return errors.New("PROJECTID is required")
	}
	return nil
}
