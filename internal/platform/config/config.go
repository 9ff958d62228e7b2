package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CFAPIBase           string
	CFProfileTimeout    time.Duration
	CFSubmissionTimeout time.Duration
	CFSubmissionPage    int

	SyncDelay          time.Duration
	SyncLockKey        string
	SyncLockTTLSeconds int

	EmailProvider string
	SendgridKey   string
	EmailFrom     string
	EmailFromName string

	DefaultCronSchedule   string
	DefaultInactivityDays int
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:    getEnv("API_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "cf_tracker_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		CFAPIBase:           getEnv("CF_API_BASE", "https://codeforces.com/api"),
		CFProfileTimeout:    time.Duration(getEnvAsInt("CF_PROFILE_TIMEOUT_SECONDS", 10)) * time.Second,
		CFSubmissionTimeout: time.Duration(getEnvAsInt("CF_SUBMISSION_TIMEOUT_SECONDS", 15)) * time.Second,
		CFSubmissionPage:    getEnvAsInt("CF_SUBMISSION_PAGE_SIZE", 1000),

		SyncDelay:          time.Duration(getEnvAsInt("SYNC_DELAY_MS", 1500)) * time.Millisecond,
		SyncLockKey:        getEnv("SYNC_LOCK_KEY", "fleet_sync_lock"),
		SyncLockTTLSeconds: getEnvAsInt("SYNC_LOCK_TTL_SECONDS", 3600),

		EmailProvider: getEnv("EMAIL_PROVIDER", "console"),
		SendgridKey:   getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:     getEnv("EMAIL_FROM", "noreply@cftracker.local"),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "CF Tracker"),

		DefaultCronSchedule:   getEnv("DEFAULT_CRON_SCHEDULE", "0 2 * * *"),
		DefaultInactivityDays: getEnvAsInt("DEFAULT_INACTIVITY_DAYS", 7),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
