package store

import (
	"context"
	"time"

	"tailorbase/internal/config"
	"tailorbase/internal/errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormConfig returns the ORM settings shared by every connection. Error
// translation must stay on: translateError maps gorm.ErrDuplicatedKey to a
// conflict, and the driver only produces that sentinel when translation is
// enabled.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	}
}

// Open connects to Postgres and applies the configured pool limits
func Open(cfg config.DatabaseConfig, logger *errors.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig())
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageFailed,
			"Failed to connect to database", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageFailed,
			"Failed to access connection pool", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	logger.Info("Database connection established",
		"host", cfg.Host,
		"database", cfg.Name,
		"max_open_conns", cfg.MaxOpenConns)

	return db, nil
}

// Migrate creates or updates the schema for every entity
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return errors.NewStorageError(errors.ErrCodeStorageFailed,
			"Schema migration failed", err)
	}
	return nil
}

// Ping verifies the connection is alive, for health checks
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return sqlDB.PingContext(pingCtx)
}
