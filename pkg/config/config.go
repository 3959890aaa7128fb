// Package config はサーバーと CLI の設定を読み込みます。
// 優先順位は 既定値 → YAML ファイル → 環境変数 です。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/shouni/gemini-promo-kit/pkg/fetcher"
	"github.com/shouni/gemini-promo-kit/pkg/gcpauth"
	"github.com/shouni/gemini-promo-kit/pkg/generator"
)

// Config はアプリケーション全体の設定です。
type Config struct {
	Addr     string         `yaml:"addr" validate:"required"`
	LogLevel string         `yaml:"log_level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Debug    bool           `yaml:"debug"`
	Vertex   VertexConfig   `yaml:"vertex"`
	Download DownloadConfig `yaml:"download"`
	Database DatabaseConfig `yaml:"database"`
	Supabase SupabaseConfig `yaml:"supabase"`
}

// VertexConfig は生成モデルと認証情報の設定です。
type VertexConfig struct {
	// Project が空の場合は認証情報の project_id を使います。
	Project         string  `yaml:"project"`
	Location        string  `yaml:"location" validate:"required"`
	Model           string  `yaml:"model" validate:"required"`
	CredentialsDir  string  `yaml:"credentials_dir"`
	MaxOutputTokens int32   `yaml:"max_output_tokens" validate:"gt=0"`
	Temperature     float32 `yaml:"temperature" validate:"gte=0,lte=2"`
	TopP            float32 `yaml:"top_p" validate:"gt=0,lte=1"`
}

// DownloadConfig は参照画像取得の設定です。
type DownloadConfig struct {
	Timeout              time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxBytes             int64         `yaml:"max_bytes" validate:"gt=0"`
	Concurrency          int           `yaml:"concurrency" validate:"gte=1,lte=16"`
	BlockPrivateNetworks bool          `yaml:"block_private_networks"`
	Compress             bool          `yaml:"compress"`
	CompressionQuality   int           `yaml:"compression_quality" validate:"gte=1,lte=100"`
	MaxDimension         int           `yaml:"max_dimension" validate:"gte=0"`
	PingInterval         time.Duration `yaml:"ping_interval"`
	EnableGCS            bool          `yaml:"enable_gcs"`
}

// DatabaseConfig はプロモーションテーブルの接続先です。
type DatabaseConfig struct {
	// Driver は postgres または sqlite です。
	Driver string `yaml:"driver" validate:"oneof=postgres sqlite"`
	DSN    string `yaml:"dsn"`
}

// SupabaseConfig は SQL プロキシの転送先です。
type SupabaseConfig struct {
	URL            string `yaml:"url" validate:"omitempty,url"`
	ServiceRoleKey string `yaml:"service_role_key"`
}

// Default は既定値を返します。
func Default() *Config {
	return &Config{
		Addr:     ":3000",
		LogLevel: "info",
		Vertex: VertexConfig{
			Location:        generator.DefaultLocation,
			Model:           generator.DefaultModel,
			CredentialsDir:  gcpauth.DefaultDir,
			MaxOutputTokens: generator.DefaultMaxOutputTokens,
			Temperature:     generator.DefaultTemperature,
			TopP:            generator.DefaultTopP,
		},
		Download: DownloadConfig{
			Timeout:              fetcher.DefaultTimeout,
			MaxBytes:             fetcher.MaxImageBytes,
			Concurrency:          1,
			BlockPrivateNetworks: true,
			CompressionQuality:   fetcher.DefaultCompressQual,
			MaxDimension:         2048,
			PingInterval:         15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "postgres",
		},
	}
}

// Load は path の YAML を既定値に重ね、環境変数で上書きしてから検証します。
// path が空、またはファイルが存在しない場合は既定値から始めます。
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			log.WithField("path", path).Debug("config file not found, using defaults")
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("GOOGLE_CLOUD_PROJECT", &c.Vertex.Project)
	str("GOOGLE_CLOUD_LOCATION", &c.Vertex.Location)
	str("NEXT_PUBLIC_SUPABASE_URL", &c.Supabase.URL)
	str("SUPABASE_SERVICE_ROLE_KEY", &c.Supabase.ServiceRoleKey)
	str("DATABASE_URL", &c.Database.DSN)
	str("LOG_LEVEL", &c.LogLevel)
	if v, ok := lookup("PORT"); ok && v != "" {
		c.Addr = ":" + v
	}
	if v, ok := lookup("DEBUG"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}
}

// Validate は設定値を検証します。
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GetLogLevel は logrus のログレベルを返します。Debug が有効なら常に DebugLevel です。
func (c *Config) GetLogLevel() log.Level {
	if c.Debug {
		return log.DebugLevel
	}
	lvl, err := log.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// GeneratorSettings は生成パラメータを返します。
func (c *Config) GeneratorSettings() generator.Settings {
	return generator.Settings{
		MaxOutputTokens: c.Vertex.MaxOutputTokens,
		Temperature:     c.Vertex.Temperature,
		TopP:            c.Vertex.TopP,
	}
}

// DownloadOptions はダウンロード制約を返します。
func (c *Config) DownloadOptions() fetcher.Options {
	return fetcher.Options{
		Timeout:              c.Download.Timeout,
		MaxBytes:             c.Download.MaxBytes,
		Concurrency:          c.Download.Concurrency,
		BlockPrivateNetworks: c.Download.BlockPrivateNetworks,
		Compress:             c.Download.Compress,
		CompressionQuality:   c.Download.CompressionQuality,
		MaxDimension:         c.Download.MaxDimension,
	}
}

// HTTPClientOptions は参照画像ダウンロード用クライアントの設定を返します。
func (c *Config) HTTPClientOptions() fetcher.ClientOptions {
	return fetcher.ClientOptions{
		Timeout:              c.Download.Timeout,
		PingInterval:         c.Download.PingInterval,
		BlockPrivateNetworks: c.Download.BlockPrivateNetworks,
	}
}
