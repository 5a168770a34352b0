package handlers

import (
	"errors"
	"net/http"

	"rental-service/internal/billing"
	"rental-service/internal/booking"
	"rental-service/internal/ledger"
	"rental-service/internal/repository"
	"rental-service/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler maps the engine operations one-to-one onto HTTP endpoints. It owns
// no business rules; every decision happens in the services.
type Handler struct {
	booking *booking.Service
	ledger  *ledger.Service
	billing *billing.Service
	docs    *storage.DocumentStore
	log     *logrus.Logger
}

func New(
	bookingSvc *booking.Service,
	ledgerSvc *ledger.Service,
	billingSvc *billing.Service,
	docs *storage.DocumentStore,
	log *logrus.Logger,
) *Handler {
	return &Handler{
		booking: bookingSvc,
		ledger:  ledgerSvc,
		billing: billingSvc,
		docs:    docs,
		log:     log,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		rentals := api.Group("/rentals")
		{
			rentals.POST("", h.CreateRental)
			rentals.GET("/:id", h.GetRental)
			rentals.POST("/:id/approve", h.ApproveRental)
			rentals.POST("/:id/reject", h.RejectRental)
			rentals.POST("/:id/cancel", h.CancelRental)
			rentals.POST("/:id/activate", h.ActivateRental)
			rentals.POST("/:id/complete", h.CompleteRental)
			rentals.GET("/:id/invoices", h.ListRentalInvoices)
		}

		rooms := api.Group("/rooms")
		{
			rooms.GET("/:room_id/availability", h.CheckAvailability)
			rooms.GET("/:room_id/rentals", h.ListRoomRentals)
			rooms.POST("/:room_id/readings", h.RecordReading)
			rooms.GET("/:room_id/readings", h.ListReadings)
		}

		invoices := api.Group("/invoices")
		{
			invoices.POST("", h.CreateInvoice)
			invoices.POST("/generate", h.GenerateMonthlyInvoices)
			invoices.GET("/:number", h.GetInvoice)
		}

		rates := api.Group("/rates")
		{
			rates.GET("", h.GetRates)
			rates.PUT("", h.UpdateRates)
		}
	}
}

// respondError translates the engine's error taxonomy to HTTP statuses:
// not-found and conflicting-state are distinguished so clients can render
// the right message; validation failures are 422; anything else is a 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	var nonMonotonic *ledger.NonMonotonicReadingError

	switch {
	case errors.Is(err, repository.ErrRoomNotFound),
		errors.Is(err, repository.ErrRentalNotFound),
		errors.Is(err, repository.ErrInvoiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, booking.ErrRoomUnavailable),
		errors.Is(err, booking.ErrDateConflict),
		errors.Is(err, booking.ErrRoomNoLongerAvailable),
		errors.Is(err, booking.ErrInvalidState),
		errors.Is(err, booking.ErrNotOwner):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, booking.ErrInvalidInterval):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	case errors.As(err, &nonMonotonic):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": nonMonotonic.Error(),
			"value": nonMonotonic.Value,
			"floor": nonMonotonic.Floor,
		})

	default:
		h.log.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
