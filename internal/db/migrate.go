package db

import (
	"time" // Pool lifetimes and clock

	"game_store/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"        // GORM logger levels
)

// Options shared by every connection, production or test
func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,                                         // Map driver errors to gorm.ErrDuplicatedKey etc.
		NowFunc:        func() time.Time { return time.Now().UTC() }, // Store timestamps in UTC
		Logger:         logger.Default.LogMode(logger.Warn),          // Only slow queries and errors
	}
}

// Open connects to MySQL and tunes the connection pool
func Open(dsn string) (*gorm.DB, error) {
	return OpenDialector(mysql.Open(dsn))
}

// OpenDialector opens any gorm dialector with the shared options
func OpenDialector(d gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(d, gormConfig()) // Open a connection to the database
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB() // Underlying pool
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)           // Keep a few warm connections
	sqlDB.SetMaxOpenConns(100)          // Cap concurrent connections
	sqlDB.SetConnMaxLifetime(time.Hour) // Recycle long-lived connections
	return db, nil
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(domain.All()...); err != nil {
		return err
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}
