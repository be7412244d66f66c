package config

import "time"

type DatabaseConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// S3Config : Endpoint задаётся для minio, без него используется цепочка учётных данных AWS
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// StagingConfig : где держать файлы между шагами drop и upload
type StagingConfig struct {
	Backend string `yaml:"backend"` // s3 | memory
	Prefix  string `yaml:"prefix"`
}

type JWTConfig struct {
	SecretKey string `yaml:"secret_key"`
	JWKSURL   string `yaml:"jwks_url"`
	Issuer    string `yaml:"issuer"`
}

// AdminConfig : bcrypt-хэш сервисного токена администратора консоли
type AdminConfig struct {
	TokenHash string `yaml:"token_hash"`
}

// UpstreamConfig : REST API платформы, которому консоль делегирует данные
type UpstreamConfig struct {
	BaseURL      string `yaml:"base_url"`
	Timeout      string `yaml:"timeout"`
	ServiceToken string `yaml:"service_token"`
}

func (c UpstreamConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LimitsConfig struct {
	MaxFolderUploadMB int    `yaml:"max_folder_upload_mb"`
	MaxTCCUploadMB    int    `yaml:"max_tcc_upload_mb"`
	SearchDebounce    string `yaml:"search_debounce"`
	SearchMinLength   int    `yaml:"search_min_length"`
	BulkConcurrency   int    `yaml:"bulk_concurrency"`
}

// TTL : время жизни в секундах; для Permission и Reports 0 отключает кэш
type TTL struct {
	Permission    int `yaml:"permission"`
	Reports       int `yaml:"reports"`
	Confirmations int `yaml:"confirmations"`
	Staging       int `yaml:"staging"`
}
