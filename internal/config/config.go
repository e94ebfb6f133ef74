package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ==================== 超时常量 ====================

const (
	MinTimeoutMs     = 25_000
	MaxTimeoutMs     = 40_000
	DefaultTimeoutMs = 30_000
)

// ==================== 配置结构 ====================

// Config 进程级配置，启动时构建一次，之后只读
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	AI       AIConfig
	Database DatabaseConfig
	Storage  StorageConfig
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port string `validate:"required,numeric"`
	Mode string `validate:"omitempty,oneof=debug release test"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `validate:"omitempty,oneof=debug info warn error"`
}

// AIConfig 上游 AI 服务配置
type AIConfig struct {
	Provider   string `validate:"required"`
	BaseURL    string `validate:"required,url"`
	Token      string // 允许为空：缺失时由接口返回 500
	TextModel  string `validate:"required"`
	ImageModel string `validate:"required"`
	Timeout    time.Duration
}

// DatabaseConfig 调用日志持久化配置，DSN 为空表示不落库
type DatabaseConfig struct {
	DSN           string
	RetentionDays int `validate:"gte=1"`
}

// StorageConfig 海报归档存储配置，Provider 为空表示不归档
type StorageConfig struct {
	Provider  string `validate:"omitempty,oneof=local s3"`
	BasePath  string
	BaseURL   string
	Bucket    string `validate:"required_if=Provider s3"`
	Region    string `validate:"required_if=Provider s3"`
	AccessKey string
	SecretKey string
	CDNDomain string
}

// Enabled 是否开启调用日志持久化
func (c DatabaseConfig) Enabled() bool { return c.DSN != "" }

// Enabled 是否开启海报归档
func (c StorageConfig) Enabled() bool { return c.Provider != "" }

// TimeoutSeconds 用户可读的超时秒数（向下取整）
func (c AIConfig) TimeoutSeconds() int64 {
	return c.Timeout.Milliseconds() / 1000
}

// ==================== 加载 ====================

var defaults = map[string]any{
	"SERVER_PORT":             "8080",
	"GIN_MODE":                "release",
	"LOG_LEVEL":               "info",
	"AI_PROVIDER":             "ai-builder",
	"AI_BUILDER_BASE_URL":     "https://space.ai-builders.com/backend/v1",
	"AI_BUILDER_MODEL":        "supermind-agent-v1",
	"AI_BUILDER_IMAGE_MODEL":  "gpt-image-1.5",
	"CALL_LOG_RETENTION_DAYS": 30,
	"STORAGE_BASE_PATH":       "./archive",
	"STORAGE_BASE_URL":        "/archive",
}

// Load 读取 .env（若存在）与环境变量，构建并校验配置
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("加载 .env 失败: %w", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return FromViper(v)
}

// FromViper 从已准备好的 viper 实例构建配置
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("SERVER_PORT"),
			Mode: v.GetString("GIN_MODE"),
		},
		Log: LogConfig{
			Level: strings.ToLower(v.GetString("LOG_LEVEL")),
		},
		AI: AIConfig{
			Provider:   v.GetString("AI_PROVIDER"),
			BaseURL:    strings.TrimRight(v.GetString("AI_BUILDER_BASE_URL"), "/"),
			Token:      strings.TrimSpace(v.GetString("AI_BUILDER_TOKEN")),
			TextModel:  v.GetString("AI_BUILDER_MODEL"),
			ImageModel: v.GetString("AI_BUILDER_IMAGE_MODEL"),
			Timeout:    time.Duration(ResolveTimeoutMs(v.GetString("AI_BUILDER_TIMEOUT_MS"))) * time.Millisecond,
		},
		Database: DatabaseConfig{
			DSN:           v.GetString("DATABASE_DSN"),
			RetentionDays: v.GetInt("CALL_LOG_RETENTION_DAYS"),
		},
		Storage: StorageConfig{
			Provider:  strings.ToLower(v.GetString("STORAGE_PROVIDER")),
			BasePath:  v.GetString("STORAGE_BASE_PATH"),
			BaseURL:   strings.TrimRight(v.GetString("STORAGE_BASE_URL"), "/"),
			Bucket:    v.GetString("AWS_BUCKET"),
			Region:    v.GetString("AWS_REGION"),
			AccessKey: v.GetString("AWS_ACCESS_KEY_ID"),
			SecretKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
			CDNDomain: v.GetString("AWS_CDN_DOMAIN"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fmt.Errorf("配置校验失败: %s (%s)", verrs[0].Namespace(), verrs[0].Tag())
		}
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}

	return cfg, nil
}

// ResolveTimeoutMs 解析上游超时（毫秒）
// 未设置或非数字时取默认值，否则四舍五入后限制在 [MinTimeoutMs, MaxTimeoutMs]
func ResolveTimeoutMs(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultTimeoutMs
	}

	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return DefaultTimeoutMs
	}

	rounded := math.Round(parsed)
	if rounded < MinTimeoutMs {
		return MinTimeoutMs
	}
	if rounded > MaxTimeoutMs {
		return MaxTimeoutMs
	}
	return int(rounded)
}
