package database

import (
	"fmt"
	"log"
	"os"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB   *gorm.DB
	once sync.Once
)

// Connect opens the shared connection. databaseURL wins when set; otherwise
// the DSN is assembled from the discrete DB_* variables.
func Connect(databaseURL string) *gorm.DB {
	once.Do(func() {
		db, err := gorm.Open(postgres.Open(ResolveDSN(databaseURL)), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}

		DB = db
	})

	return DB
}

// ResolveDSN returns the explicit URL when given, else a DSN built from the
// DB_HOST/DB_USER/DB_PASS/DB_NAME/DB_PORT environment variables.
func ResolveDSN(databaseURL string) string {
	if databaseURL != "" {
		return databaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		valueOrDefault("DB_HOST", "localhost"),
		valueOrDefault("DB_USER", "postgres"),
		os.Getenv("DB_PASS"),
		valueOrDefault("DB_NAME", "siakad"),
		valueOrDefault("DB_PORT", "5432"),
	)
}

func valueOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}
