package repository

import (
	"context"
	"io"
	"testing"
	"time"

	"rental-service/internal/database"
	"rental-service/internal/model"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedRental(t *testing.T, db *gorm.DB, number string, status model.RentalStatus, start, end time.Time) *model.Rental {
	rental := &model.Rental{
		RoomID:         1,
		TenantID:       1,
		ContractNumber: number,
		StartDate:      start,
		EndDate:        end,
		Status:         status,
		MonthlyRent:    decimal.RequireFromString("5000"),
		TotalPrice:     decimal.RequireFromString("5000"),
	}
	require.NoError(t, db.Create(rental).Error)
	return rental
}

func TestFindOverlapping(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRentalRepository(db, newTestLogger())
	ctx := context.Background()

	seedRental(t, db, "CT-1", model.RentalApproved, date(2025, 1, 10), date(2025, 2, 9))

	cases := []struct {
		name       string
		start, end time.Time
		hit        bool
	}{
		{"disjoint before", date(2025, 1, 1), date(2025, 1, 9), false},
		{"disjoint after", date(2025, 2, 10), date(2025, 2, 28), false},
		{"partial left", date(2025, 1, 1), date(2025, 1, 15), true},
		{"partial right", date(2025, 2, 1), date(2025, 2, 15), true},
		{"contained", date(2025, 1, 15), date(2025, 1, 20), true},
		{"containing", date(2025, 1, 1), date(2025, 3, 1), true},
		{"touching start day", date(2025, 1, 1), date(2025, 1, 10), true},
		{"touching end day", date(2025, 2, 9), date(2025, 2, 28), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.FindOverlapping(ctx, 1, tc.start, tc.end)
			require.NoError(t, err)
			assert.Equal(t, tc.hit, len(got) > 0)
		})
	}
}

func TestFindOverlapping_IgnoresNonBlockingStatuses(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRentalRepository(db, newTestLogger())
	ctx := context.Background()

	seedRental(t, db, "CT-2", model.RentalPending, date(2025, 1, 1), date(2025, 1, 31))
	seedRental(t, db, "CT-3", model.RentalCancelled, date(2025, 1, 1), date(2025, 1, 31))
	seedRental(t, db, "CT-4", model.RentalCompleted, date(2025, 1, 1), date(2025, 1, 31))

	got, err := repo.FindOverlapping(ctx, 1, date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindOverlapping_OtherRoomDoesNotMatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRentalRepository(db, newTestLogger())
	ctx := context.Background()

	seedRental(t, db, "CT-5", model.RentalActive, date(2025, 1, 1), date(2025, 1, 31))

	got, err := repo.FindOverlapping(ctx, 2, date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRentalRepository_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRentalRepository(db, newTestLogger())
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, ErrRentalNotFound)

	err = repo.UpdateStatus(ctx, 42, model.RentalApproved)
	assert.ErrorIs(t, err, ErrRentalNotFound)
}

func TestRoomRepository_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db, newTestLogger())
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	err = repo.UpdateStatus(ctx, 42, model.RoomOccupied)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRateRepository_GetOrCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRateRepository(db, newTestLogger())
	ctx := context.Background()

	// Migrate seeds the singleton row; Get must keep returning the same one
	first, err := repo.Get(ctx)
	require.NoError(t, err)
	second, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&model.UtilityRate{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
