package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type recordReadingBody struct {
	ReadingDate  string          `json:"reading_date" binding:"required"`
	CurrentUnits decimal.Decimal `json:"current_units" binding:"required"`
}

// RecordReading handles POST /api/rooms/:room_id/readings
func (h *Handler) RecordReading(c *gin.Context) {
	roomID, ok := uintParam(c, "room_id")
	if !ok {
		return
	}

	var body recordReadingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	readingDate, err := time.Parse(dateLayout, body.ReadingDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reading_date must be YYYY-MM-DD"})
		return
	}

	usage, err := h.ledger.RecordReading(c.Request.Context(), roomID, readingDate, body.CurrentUnits)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, usage)
}

// ListReadings handles GET /api/rooms/:room_id/readings?unbilled=true
func (h *Handler) ListReadings(c *gin.Context) {
	roomID, ok := uintParam(c, "room_id")
	if !ok {
		return
	}

	usages, err := h.ledger.ListByRoom(c.Request.Context(), roomID, c.Query("unbilled") == "true")
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usages)
}

type createInvoiceBody struct {
	RentalID          uint            `json:"rental_id" binding:"required"`
	RoomRent          decimal.Decimal `json:"room_rent"`
	ElectricityCharge decimal.Decimal `json:"electricity_charge"`
	WaterCharge       decimal.Decimal `json:"water_charge"`
	UsageID           *uint           `json:"usage_id"`
}

// CreateInvoice handles POST /api/invoices, the manual billing path
func (h *Handler) CreateInvoice(c *gin.Context) {
	var body createInvoiceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invoice, err := h.billing.CreateInvoice(
		c.Request.Context(),
		body.RentalID,
		body.RoomRent,
		body.ElectricityCharge,
		body.WaterCharge,
		body.UsageID,
	)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

type generateInvoicesBody struct {
	Month int `json:"month" binding:"required,min=1,max=12"`
	Year  int `json:"year" binding:"required"`
}

// GenerateMonthlyInvoices handles POST /api/invoices/generate
func (h *Handler) GenerateMonthlyInvoices(c *gin.Context) {
	var body generateInvoicesBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	generated, rentalErrs, err := h.billing.GenerateMonthlyInvoices(c.Request.Context(), body.Year, time.Month(body.Month))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"generated_count": generated,
		"errors":          rentalErrs,
	})
}

// GetInvoice handles GET /api/invoices/:number
func (h *Handler) GetInvoice(c *gin.Context) {
	invoice, err := h.billing.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// ListRentalInvoices handles GET /api/rentals/:id/invoices
func (h *Handler) ListRentalInvoices(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	invoices, err := h.billing.ListByRental(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// GetRates handles GET /api/rates
func (h *Handler) GetRates(c *gin.Context) {
	rate, err := h.billing.Rates(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rate)
}

type updateRatesBody struct {
	ElectricityRatePerUnit decimal.Decimal `json:"electricity_rate_per_unit"`
	WaterFlatRate          decimal.Decimal `json:"water_flat_rate"`
}

// UpdateRates handles PUT /api/rates; changes apply to invoices created later
func (h *Handler) UpdateRates(c *gin.Context) {
	var body updateRatesBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rate, err := h.billing.UpdateRates(c.Request.Context(), body.ElectricityRatePerUnit, body.WaterFlatRate)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rate)
}
