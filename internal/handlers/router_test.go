package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"rental-service/internal/billing"
	"rental-service/internal/booking"
	"rental-service/internal/database"
	"rental-service/internal/ledger"
	"rental-service/internal/model"
	"rental-service/internal/repository"
	"rental-service/internal/sequence"
	"rental-service/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	seq, err := sequence.NewAllocator(1)
	require.NoError(t, err)

	docs, err := storage.NewDocumentStore(t.TempDir(), log)
	require.NoError(t, err)

	roomRepo := repository.NewRoomRepository(db, log)
	rentalRepo := repository.NewRentalRepository(db, log)
	usageRepo := repository.NewUsageRepository(db, log)
	invoiceRepo := repository.NewInvoiceRepository(db, log)
	rateRepo := repository.NewRateRepository(db, log)

	bookingSvc := booking.NewService(db, roomRepo, rentalRepo, seq, docs, nil, log)
	ledgerSvc := ledger.NewService(db, roomRepo, usageRepo, log)
	billingSvc := billing.NewService(db, rentalRepo, roomRepo, usageRepo, invoiceRepo, rateRepo, seq, nil, 7, log)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	New(bookingSvc, ledgerSvc, billingSvc, docs, log).Register(router)

	return router, db
}

func seedRoom(t *testing.T, db *gorm.DB) *model.Room {
	room := &model.Room{
		Number:        "D-404",
		Status:        model.RoomAvailable,
		PricePerMonth: decimal.RequireFromString("5000"),
	}
	require.NoError(t, db.Create(room).Error)
	return room
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func rentalForm(roomID, start, end string) url.Values {
	return url.Values{
		"room_id":    {roomID},
		"tenant_id":  {"7"},
		"start_date": {start},
		"end_date":   {end},
	}
}

func TestCreateRentalEndpoint(t *testing.T) {
	router, db := setupRouter(t)
	seeded := seedRoom(t, db)

	w := doForm(router, "/api/rentals", rentalForm("1", "2025-01-10", "2025-02-09"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var rental model.Rental
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rental))
	assert.Equal(t, seeded.ID, rental.RoomID)
	assert.Equal(t, model.RentalPending, rental.Status)
	assert.True(t, rental.TotalPrice.Equal(decimal.RequireFromString("10000")))
}

func TestCreateRentalEndpoint_RoomNotFound(t *testing.T) {
	router, _ := setupRouter(t)

	w := doForm(router, "/api/rentals", rentalForm("999", "2025-01-10", "2025-02-09"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApproveThenConflictEndpoint(t *testing.T) {
	router, db := setupRouter(t)
	seedRoom(t, db)

	w := doForm(router, "/api/rentals", rentalForm("1", "2025-01-10", "2025-02-09"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/api/rentals/1/approve", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doForm(router, "/api/rentals", rentalForm("1", "2025-02-01", "2025-02-15"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRecordReadingEndpoint_NonMonotonic(t *testing.T) {
	router, db := setupRouter(t)
	seedRoom(t, db)

	w := doJSON(router, http.MethodPost, "/api/rooms/1/readings", `{"reading_date":"2025-01-31","current_units":"120"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(router, http.MethodPost, "/api/rooms/1/readings", `{"reading_date":"2025-02-28","current_units":"100"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGenerateInvoicesEndpoint(t *testing.T) {
	router, db := setupRouter(t)
	seedRoom(t, db)

	w := doForm(router, "/api/rentals", rentalForm("1", "2025-01-01", "2025-01-30"))
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(router, http.MethodPost, "/api/rentals/1/approve", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/api/invoices/generate", `{"month":1,"year":2025}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		GeneratedCount int `json:"generated_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.GeneratedCount)
}

func TestUpdateRatesEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodPut, "/api/rates", `{"electricity_rate_per_unit":"8","water_flat_rate":"100"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rate model.UtilityRate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rate))
	assert.True(t, rate.ElectricityRatePerUnit.Equal(decimal.RequireFromString("8")))
}
