// Package database opens the key/value store the configuration asks for.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-dashboard/config"
	"github.com/yeremiapane/restaurant-dashboard/store"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

// OpenStore connects to the configured backend. The caller closes it.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case "sqlite", "mysql":
		db, err := openGorm(cfg.StoreDriver, cfg.DBDSN, cfg.GinMode)
		if err != nil {
			return nil, err
		}
		return store.NewGormStore(db, cfg.StoreMaxValueBytes), nil

	case "postgres":
		db, err := store.OpenPostgres(cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return store.NewSQLStore(db, cfg.StoreMaxValueBytes), nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return store.NewRedisStore(client, cfg.StoreKeyPrefix, cfg.StoreMaxValueBytes), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openGorm(driver, dsn, ginMode string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if driver == "mysql" {
		dialector = mysql.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}
	level := logger.Warn
	if ginMode == "release" {
		level = logger.Error
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// Migrate creates the kv_entries table for SQL backends. Redis needs none.
func Migrate(ctx context.Context, s store.Store) error {
	switch st := s.(type) {
	case *store.GormStore:
		if err := st.Migrate(); err != nil {
			return fmt.Errorf("failed to AutoMigrate: %w", err)
		}
	case *store.SQLStore:
		if err := st.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate postgres: %w", err)
		}
	default:
		utils.InfoLogger.Debugf("store %T needs no migration", s)
		return nil
	}
	utils.InfoLogger.Println("Migration completed.")
	return nil
}
