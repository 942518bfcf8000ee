package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// 存储驱动
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Config 应用配置
type Config struct {
	Port             int
	Debug            bool
	StoreDriver      string
	MongoURI         string
	MongoDB          string
	WebhookKey       string
	SimulatedLatency time.Duration
	PreviewRows      int
	MaxPreviewRows   int
	MaxUploadBytes   int64
	AllowedOrigins   []string
	ReportTimezone   string
}

// LoadConfig 从环境变量加载配置
func LoadConfig() *Config {
	return &Config{
		Port:             getEnvInt("PORT", 8080),
		Debug:            getEnv("GIN_MODE", "debug") == "debug",
		StoreDriver:      getEnv("STORE_DRIVER", StoreMemory),
		MongoURI:         getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:          getEnv("MONGO_DB", "salesiq"),
		WebhookKey:       getEnv("WEBHOOK_KEY", "your-secret-key"), // 实际环境应替换为安全密钥
		SimulatedLatency: getEnvDuration("SIMULATED_LATENCY", 2*time.Second),
		PreviewRows:      getEnvInt("PREVIEW_ROWS", 10),
		MaxPreviewRows:   getEnvInt("MAX_PREVIEW_ROWS", 100),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_MB", 20)) << 20,
		AllowedOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		ReportTimezone:   getEnv("REPORT_TIMEZONE", "Europe/Stockholm"),
	}
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
