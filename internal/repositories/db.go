// Package repositories provides the data access layer.
// It handles all database operations and data persistence logic.
package repositories

import (
	"fmt"
	"log"
	"time"

	"datasub/internal/config"
	"datasub/internal/models"
	"datasub/internal/repositories/cache"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DBConfig holds database connection pool configuration
type DBConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultDBConfig returns pool settings from the environment with sane defaults.
func DefaultDBConfig() DBConfig {
	lifetime, err := time.ParseDuration(config.GetEnv("DB_CONN_MAX_LIFETIME", "1h"))
	if err != nil {
		lifetime = time.Hour
	}
	idleTime, err := time.ParseDuration(config.GetEnv("DB_CONN_MAX_IDLE_TIME", "30m"))
	if err != nil {
		idleTime = 30 * time.Minute
	}
	return DBConfig{
		MaxIdleConns:    config.GetIntEnv("DB_MAX_IDLE_CONNS", 10),
		MaxOpenConns:    config.GetIntEnv("DB_MAX_OPEN_CONNS", 100),
		ConnMaxLifetime: lifetime,
		ConnMaxIdleTime: idleTime,
	}
}

// InitDB opens the Postgres connection, applies pool settings and runs
// migrations. The returned handle is injected into services from the
// bootstrap; nothing in this package keeps global state.
func InitDB(cfg DBConfig) (*gorm.DB, error) {
	dsn := "host=" + config.GetEnv("DB_HOST", "localhost") +
		" user=" + config.GetEnv("DB_USER", "postgres") +
		" password=" + config.GetEnv("DB_PASSWORD", "postgres") +
		" dbname=" + config.GetEnv("DB_NAME", "datasub") +
		" port=" + config.GetEnv("DB_PORT", "5432") +
		" sslmode=" + config.GetEnv("DB_SSLMODE", "disable")

	logLevel := logger.Warn
	if !config.IsProduction() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// Unique violations must surface as gorm.ErrDuplicatedKey so the
		// settlement path can treat them as "already processed".
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Transaction{},
		&models.WalletFunding{},
		&models.PlanOverride{},
		&models.AdminActivityLog{},
	); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	log.Println("connected to database with connection pooling")
	return db, nil
}

// InitCache connects to Redis and returns the cache service.
func InitCache() *cache.CacheService {
	redisCfg := &cache.RedisConfig{
		Host:        config.GetEnv("REDIS_HOST", "localhost"),
		Port:        config.GetEnv("REDIS_PORT", "6379"),
		Password:    config.GetEnv("REDIS_PASSWORD", ""),
		DB:          config.GetIntEnv("REDIS_DB", 0),
		DialTimeout: 5 * time.Second,
		ReadTimeout: 3 * time.Second,
		PoolSize:    config.GetIntEnv("REDIS_POOL_SIZE", 10),
	}
	client := cache.NewRedisClient(redisCfg)
	return cache.NewCacheService(client, 24*time.Hour)
}
