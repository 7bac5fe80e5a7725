package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"
)

// const dsn = "host=localhost user=postgres password=password dbname=roomrent port=5432 sslmode=disable TimeZone=Asia/Kolkata"

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

func GetDatabaseDriver() string {
	return getEnv("DATABASE_DRIVER", "postgres")
}

func GetSQLitePath() string {
	return getEnv("SQLITE_PATH", "roomrent.db")
}

const (
	// VIEWING_FEE is charged in minor units of VIEWING_FEE_CURRENCY.
	VIEWING_FEE          int64 = 1100
	VIEWING_FEE_CURRENCY       = "inr"

	OWNER_TOKEN_TTL    = 48 * time.Hour
	OWNER_TOKEN_LENGTH = 10

	MAX_UPLOAD_SIZE int64 = 16 << 20

	SESSION_COOKIE = "session"
)

var ALLOWED_IMAGE_EXTENSIONS = []string{"png", "jpg", "jpeg", "webp"}

func AllowedImage(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	for _, v := range ALLOWED_IMAGE_EXTENSIONS {
		if ext == v {
			return true
		}
	}
	return false
}

func GetAPIEnv() string {
	return os.Getenv("API_ENV")
}

func GetJWTSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func GetSessionTTL() time.Duration {
	return getDuration("SESSION_TTL", 12*time.Hour)
}

func GetPendingBookingTTL() time.Duration {
	return getDuration("BOOKING_PENDING_TTL", 24*time.Hour)
}

func GetUploadDir() string {
	return getEnv("UPLOAD_DIR", path.Join("static", "uploads"))
}

func GetImageStore() string {
	return getEnv("IMAGE_STORE", "local")
}

func GetMailTransport() string {
	return getEnv("MAIL_TRANSPORT", "smtp")
}

func GetSMTPPort() int {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		return 465
	}
	return port
}

func GetMailFrom() (address string, name string) {
	return os.Getenv("MAIL_FROM"), getEnv("MAIL_FROM_NAME", "RoomRent")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
