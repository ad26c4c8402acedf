// Package config provides centralized default values for the enhancement
// engine.
package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

// loadEnvFile loads environment variables from .env file
func loadEnvFile() {
	envLoaded.Do(loadEnvFileOnce)
}

func loadEnvFileOnce() {
	file, err := os.Open(".env")
	if err != nil {
		// .env file is optional, don't error if it doesn't exist
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

func init() {
	loadEnvFile()
}

// getEnvInt reads environment variable with fallback to default
func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvString reads environment variable with string fallback
func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

// Server Configuration
var (
	Port        = getEnvString("PORT", "8080")
	JWTSecret   = getEnvString("ENHANCE_JWT_SECRET", "")
	CORSOrigins = strings.Split(getEnvString("CORS_ORIGINS",
		"http://localhost:3000,http://localhost:4321,http://127.0.0.1:3000,http://127.0.0.1:4321"), ",")
)

// Enhancement Configuration
var (
	// AnnounceDelay is how long the live-region write is deferred after
	// DOM mutation so screen readers register the content change.
	AnnounceDelay = time.Duration(getEnvInt("ENHANCE_ANNOUNCE_DELAY_MS", 1000)) * time.Millisecond

	// PreviewMaxPx bounds the long edge of generated preview thumbnails.
	PreviewMaxPx = getEnvInt("ENHANCE_PREVIEW_MAX_PX", 160)

	// MaxFileBytes caps a single posted file payload.
	MaxFileBytes = getEnvInt("ENHANCE_MAX_FILE_BYTES", 10<<20)

	// MaxTargets caps live enhancement targets per process.
	MaxTargets = getEnvInt("ENHANCE_MAX_TARGETS", 10000)
)

// Lifecycle Configuration
var (
	TargetTTL       = time.Duration(getEnvInt("TARGET_TTL_MINUTES", 60)) * time.Minute
	CleanupInterval = time.Duration(getEnvInt("CLEANUP_INTERVAL_MINUTES", 10)) * time.Minute
)
