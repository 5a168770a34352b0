package database

import (
	"fmt"
	"time"

	"rental-service/internal/config"
	"rental-service/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

func New(cfg config.DatabaseConfig, log *logrus.Logger) (*Database, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"host": cfg.Host,
		"db":   cfg.DBName,
	}).Info("connected to PostgreSQL")

	return &Database{DB: db}, nil
}

// Migrate creates the schema and seeds the singleton utility rate row. Kept
// separate from New so tests can run it against their own connections.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Room{},
		&model.Rental{},
		&model.ElectricityUsage{},
		&model.UtilityRate{},
		&model.Invoice{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// Get-or-create the one rate row so the billing engine never starts
	// without a rate table.
	var count int64
	if err := db.Model(&model.UtilityRate{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count utility rates: %w", err)
	}
	if count == 0 {
		if err := db.Create(&model.UtilityRate{}).Error; err != nil {
			return fmt.Errorf("failed to seed utility rate: %w", err)
		}
	}

	return nil
}
