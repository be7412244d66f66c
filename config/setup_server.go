package config

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"gopkg.in/yaml.v3"
)

const megabyte = 1 << 20

type AppConfig struct {
	DatabaseConfig DatabaseConfig `yaml:"databaseConfig"`
	RedisConfig    RedisConfig    `yaml:"redisConfig"`
	ServerAddr     string         `yaml:"serverAddr"`
	S3Config       S3Config       `yaml:"s3Config"`
	Staging        StagingConfig  `yaml:"staging"`
	JWT            JWTConfig      `yaml:"jwt"`
	Admin          AdminConfig    `yaml:"admin"`
	Upstream       UpstreamConfig `yaml:"upstream"`
	CORS           CORSConfig     `yaml:"cors"`
	Limits         LimitsConfig   `yaml:"limits"`
	TTL            TTL            `yaml:"TTL"`
}

// LoadConfig : читает .env (если есть), подставляет ${VAR} в yaml и применяет значения по умолчанию
func LoadConfig(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParseConfig(file)
}

func ParseConfig(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *AppConfig) applyDefaults() {
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = ":8080"
	}
	if cfg.Staging.Backend == "" {
		cfg.Staging.Backend = "memory"
	}
	if cfg.Staging.Prefix == "" {
		cfg.Staging.Prefix = "staging"
	}
	if cfg.Limits.MaxFolderUploadMB <= 0 {
		cfg.Limits.MaxFolderUploadMB = 10
	}
	if cfg.Limits.MaxTCCUploadMB <= 0 {
		cfg.Limits.MaxTCCUploadMB = 50
	}
	if cfg.Limits.SearchDebounce == "" {
		cfg.Limits.SearchDebounce = "400ms"
	}
	if cfg.Limits.SearchMinLength <= 0 {
		cfg.Limits.SearchMinLength = 3
	}
	if cfg.Limits.BulkConcurrency <= 0 {
		cfg.Limits.BulkConcurrency = 4
	}
	if cfg.TTL.Confirmations <= 0 {
		cfg.TTL.Confirmations = 120
	}
	if cfg.TTL.Staging <= 0 {
		cfg.TTL.Staging = 3600
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	}
}

func (l LimitsConfig) MaxFolderUploadBytes() int64 {
	return int64(l.MaxFolderUploadMB) * megabyte
}

func (l LimitsConfig) MaxTCCUploadBytes() int64 {
	return int64(l.MaxTCCUploadMB) * megabyte
}

func (l LimitsConfig) SearchDebounceDuration() time.Duration {
	d, err := time.ParseDuration(l.SearchDebounce)
	if err != nil || d < 0 {
		return 400 * time.Millisecond
	}
	return d
}

func (t TTL) Seconds(v int) time.Duration {
	return time.Duration(v) * time.Second
}

func SetupServer(serverAddress string, cfg CORSConfig) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Browser-Session"},
		AllowCredentials: true,
	})
	router.Use(corsHandler.Handler)

	server := &http.Server{
		Addr:              serverAddress,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
	}

	return server, router
}

func SetupDatabase(cfg *DatabaseConfig) (*Database, error) {
	return NewDatabaseConnection("postgres", cfg)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}
