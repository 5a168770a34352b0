package repository

import (
	"context"
	"errors"

	"rental-service/internal/model"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type RateRepository struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewRateRepository(db *gorm.DB, log *logrus.Logger) *RateRepository {
	return &RateRepository{
		db:  db,
		log: log,
	}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *RateRepository) WithTx(tx *gorm.DB) *RateRepository {
	return &RateRepository{db: tx, log: r.log}
}

// Get returns the singleton rate row, creating a zero-rate row if the table
// is empty. Callers receive a value snapshot; later rate updates do not
// affect work already in flight.
func (r *RateRepository) Get(ctx context.Context) (model.UtilityRate, error) {
	var rate model.UtilityRate
	err := r.db.WithContext(ctx).Order("id ASC").First(&rate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rate = model.UtilityRate{}
		if err := r.db.WithContext(ctx).Create(&rate).Error; err != nil {
			return model.UtilityRate{}, err
		}
		return rate, nil
	}
	if err != nil {
		return model.UtilityRate{}, err
	}
	return rate, nil
}

// Update sets new utility rates; affects only invoices created afterward
func (r *RateRepository) Update(ctx context.Context, electricityPerUnit, waterFlat decimal.Decimal) (model.UtilityRate, error) {
	rate, err := r.Get(ctx)
	if err != nil {
		return model.UtilityRate{}, err
	}

	rate.ElectricityRatePerUnit = electricityPerUnit
	rate.WaterFlatRate = waterFlat
	if err := r.db.WithContext(ctx).Save(&rate).Error; err != nil {
		return model.UtilityRate{}, err
	}

	r.log.WithFields(logrus.Fields{
		"electricity_rate": electricityPerUnit,
		"water_flat_rate":  waterFlat,
	}).Info("utility rates updated")

	return rate, nil
}
