package config

import (
	"os"
	"time"

	"github.com/go-yaml/yaml"
)

type Config struct {
	App    App    `yaml:"app"`
	Server Server `yaml:"server"`
}

type App struct {
	FQDN         string        `yaml:"fqdn"`
	JWTSecret    string        `yaml:"jwtSecret"`
	TokenExpiry  time.Duration `yaml:"tokenExpiry"`
	MediaBaseURL string        `yaml:"mediaBaseURL"`
}

type Server struct {
	ListenAddr    string `yaml:"listenAddr"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	StoragePath   string `yaml:"storagePath"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = ":8000"
	}
	if config.App.TokenExpiry == 0 {
		config.App.TokenExpiry = 24 * time.Hour
	}

	return config, nil
}
