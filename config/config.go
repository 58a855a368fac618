package config

import (
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Port           int
	GatewayBaseURL string
	GatewayTimeout time.Duration
	JWTKey         string
	ForecastDate   string
	Debug          bool
}

// LoadConfig 从环境变量加载配置
func LoadConfig() *Config {
	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	timeoutSec, _ := strconv.Atoi(getEnv("GATEWAY_TIMEOUT_SECONDS", "15"))
	return &Config{
		Port:           port,
		GatewayBaseURL: getEnv("GATEWAY_BASE_URL", "https://znzyg110de.execute-api.us-east-1.amazonaws.com/prod"),
		GatewayTimeout: time.Duration(timeoutSec) * time.Second,
		JWTKey:         getEnv("JWT_KEY", "your-secret-key"), // 实际环境应替换为安全密钥
		ForecastDate:   getEnv("FORECAST_DATE", "2025-08-06"),
		Debug:          getEnv("GIN_MODE", "debug") == "debug",
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
