package database

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ManuelReschke/IntegrationHub/app/models"
	"github.com/ManuelReschke/IntegrationHub/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

// SetupDatabase opens the MySQL connection pool. The returned handle is passed
// explicitly to every repository; nothing in the pipeline reads a package global.
func SetupDatabase() (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=UTC"
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)

	logLevel := logger.Warn
	if env.IsDev() {
		logLevel = logger.Info
	}

	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                       dsn,
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), &gorm.Config{
			Logger: logger.Default.LogMode(logLevel),
		})
		if err == nil {
			break
		}

		log.Warnf("[Database] Failed to connect (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Infof("[Database] Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxOpenConns(env.GetEnvInt("DB_MAX_OPEN_CONN", 20))
	sqlDB.SetMaxIdleConns(env.GetEnvInt("DB_MAX_IDLE_CONN", 10))
	sqlDB.SetConnMaxLifetime(time.Duration(env.GetEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 60)) * time.Minute)

	// Schema is owned by cmd/migrate; AutoMigrate is a dev convenience only.
	if env.GetEnvBool("DB_AUTO_MIGRATE", false) {
		if err := db.AutoMigrate(models.All()...); err != nil {
			log.Warnf("[Database] AutoMigrate error: %v", err)
		}
	}

	log.Info("[Database] Connection established")
	return db, nil
}

// MustSetupDatabase panics when the database stays unreachable after all retries.
func MustSetupDatabase() *gorm.DB {
	db, err := SetupDatabase()
	if err != nil {
		panic(err)
	}
	return db
}
