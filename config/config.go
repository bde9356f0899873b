package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// MinIOConfig selects the blob-store backend. An empty endpoint falls back to
// the in-process store for development.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AppConfig holds the application configuration. Server tuning and allowed
// origins come from an optional toml file; connection strings and credentials
// come from the environment.
type AppConfig struct {
	ServiceHost    string
	ServicePort    int
	DBURL          string
	RedisAddress   string
	AllowedOrigins []string
	MinIO          MinIOConfig
}

// Load reads the optional config file and the environment.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	configName := "config"
	if os.Getenv("CONFIG_NAME") != "" {
		configName = os.Getenv("CONFIG_NAME")
	}

	viper.SetConfigName(configName)
	viper.SetConfigType("toml")
	viper.AddConfigPath("config")
	viper.AddConfigPath(".")
	viper.SetDefault("service_host", "0.0.0.0")
	viper.SetDefault("service_port", 8930)
	viper.SetDefault("allowed_origins", []string{"http://localhost:3000"})

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	cfg := &AppConfig{
		ServiceHost:    viper.GetString("service_host"),
		ServicePort:    viper.GetInt("service_port"),
		AllowedOrigins: viper.GetStringSlice("allowed_origins"),
	}

	cfg.DBURL = os.Getenv("DB_URL")
	if cfg.DBURL == "" {
		return nil, errors.New("missing DB_URL environment variable")
	}

	cfg.RedisAddress = os.Getenv("REDIS_URL")
	if cfg.RedisAddress == "" {
		return nil, errors.New("missing REDIS_URL environment variable")
	}

	cfg.MinIO = MinIOConfig{
		Endpoint:  os.Getenv("MINIO_ENDPOINT"),
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		Bucket:    os.Getenv("MINIO_BUCKET"),
		UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = "mucosaview-media"
	}

	logrus.Info("config loaded")
	return cfg, nil
}

// ServiceAddr renders the host:port the HTTP server binds to.
func (c *AppConfig) ServiceAddr() string {
	return fmt.Sprintf("%s:%d", c.ServiceHost, c.ServicePort)
}
