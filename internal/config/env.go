package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AIAPIKey       string
	GenModel       string
	GenTemperature float64
	GenMaxTokens   int
	OCRLanguage    string
	PDFBackend     string
	PreviewMaxDim  int
	MaxImagePixels int
	MaxUploadBytes int64
	Port           string
	MCPTransport   string
	MCPFileRoot    string
	LogLevel       string
	AllowedOrigins []string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		AIAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GenModel:       getEnv("GEN_MODEL", "gemini-1.5-flash"),
		GenTemperature: getEnvFloat("GEN_TEMPERATURE", 0.7),
		GenMaxTokens:   getEnvInt("GEN_MAX_OUTPUT_TOKENS", 4096),
		OCRLanguage:    getEnv("OCR_LANGUAGE", "eng"),
		PDFBackend:     strings.ToLower(getEnv("PDF_BACKEND", "native")),
		PreviewMaxDim:  getEnvInt("PREVIEW_MAX_DIM", 256),
		MaxImagePixels: getEnvInt("MAX_IMAGE_PIXELS", 40_000_000),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 64<<20)),
		Port:           getEnv("PORT", "8080"),
		MCPTransport:   getEnv("MCP_TRANSPORT", ""),
		MCPFileRoot:    getEnv("MCP_FILE_ROOT", "."),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	// A missing key is surfaced per task by the analysis stage, not at startup.
	if cfg.AIAPIKey == "" {
		slog.Warn("GEMINI_API_KEY not set; analysis requests will fail")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config value is not an int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("config value is not a number, using default", "key", key, "value", v, "default", def)
		return def
	}
	return f
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
