package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"rental-service/internal/booking"
	"rental-service/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type createRentalForm struct {
	RoomID         uint   `form:"room_id" binding:"required"`
	TenantID       uint   `form:"tenant_id" binding:"required"`
	StartDate      string `form:"start_date" binding:"required"`
	EndDate        string `form:"end_date" binding:"required"`
	DepositAmount  string `form:"deposit_amount"`
	AdvancePayment string `form:"advance_payment"`
}

// CreateRental handles POST /api/rentals. Accepts a multipart form with an
// optional tenant document; the document is stored before the transaction
// and removed by the service if creation fails.
func (h *Handler) CreateRental(c *gin.Context) {
	var form createRentalForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := time.Parse(dateLayout, form.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse(dateLayout, form.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}

	deposit, err := parseMoney(form.DepositAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deposit_amount must be a decimal"})
		return
	}
	advance, err := parseMoney(form.AdvancePayment)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "advance_payment must be a decimal"})
		return
	}

	var documentPath string
	if file, err := c.FormFile("document"); err == nil {
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read document"})
			return
		}
		defer src.Close()

		documentPath, err = h.docs.Save(file.Filename, src)
		if err != nil {
			h.log.WithError(err).Error("failed to store tenant document")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store document"})
			return
		}
	}

	rental, err := h.booking.CheckAndCreateRental(c.Request.Context(), booking.CreateRentalRequest{
		RoomID:         form.RoomID,
		TenantID:       form.TenantID,
		StartDate:      start,
		EndDate:        end,
		DepositAmount:  deposit,
		AdvancePayment: advance,
		DocumentPath:   documentPath,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rental)
}

// GetRental handles GET /api/rentals/:id
func (h *Handler) GetRental(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	rental, err := h.booking.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rental)
}

// ApproveRental handles POST /api/rentals/:id/approve
func (h *Handler) ApproveRental(c *gin.Context) {
	h.transition(c, h.booking.Approve)
}

// RejectRental handles POST /api/rentals/:id/reject
func (h *Handler) RejectRental(c *gin.Context) {
	h.transition(c, h.booking.Reject)
}

// CancelRental handles POST /api/rentals/:id/cancel on behalf of a tenant
func (h *Handler) CancelRental(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var body struct {
		RequesterID uint `json:"requester_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rental, err := h.booking.Cancel(c.Request.Context(), id, body.RequesterID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rental)
}

// ActivateRental handles POST /api/rentals/:id/activate (external trigger)
func (h *Handler) ActivateRental(c *gin.Context) {
	h.transition(c, h.booking.MarkActive)
}

// CompleteRental handles POST /api/rentals/:id/complete (external trigger)
func (h *Handler) CompleteRental(c *gin.Context) {
	h.transition(c, h.booking.Complete)
}

// CheckAvailability handles GET /api/rooms/:room_id/availability
func (h *Handler) CheckAvailability(c *gin.Context) {
	roomID, ok := uintParam(c, "room_id")
	if !ok {
		return
	}

	start, err := time.Parse(dateLayout, c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse(dateLayout, c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}

	if err := h.booking.CheckAvailability(c.Request.Context(), roomID, start, end); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": true})
}

// ListRoomRentals handles GET /api/rooms/:room_id/rentals
func (h *Handler) ListRoomRentals(c *gin.Context) {
	roomID, ok := uintParam(c, "room_id")
	if !ok {
		return
	}

	rentals, err := h.booking.ListByRoom(c.Request.Context(), roomID, model.RentalStatus(c.Query("status")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rentals)
}

func (h *Handler) transition(c *gin.Context, op func(ctx context.Context, id uint) (*model.Rental, error)) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	rental, err := op(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rental)
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return uint(id), true
}

func parseMoney(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
