package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	bookingapp "staybook/internal/app/handlers/booking"
	"staybook/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createBookingRequest struct {
	ListingID   string `json:"listing_id"`
	GuestID     string `json:"guest_id"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	Guests      int    `json:"guests"`
	ExtraGuests int    `json:"extra_guests"`
}

func (h BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := bookingapp.RequestBookingCommand{
		ListingID:       req.ListingID,
		GuestID:         req.GuestID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		ExtraGuests:     req.ExtraGuests,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type transitionRequest struct {
	Reason string `json:"reason"`
}

// bindReason accepts an empty body.
func bindReason(c *gin.Context) (string, bool) {
	var req transitionRequest
	if c.Request.ContentLength == 0 {
		return "", true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return "", false
	}
	return req.Reason, true
}

func (h BookingHandler) Cancel(c *gin.Context) {
	reason, ok := bindReason(c)
	if !ok {
		return
	}
	cmd := bookingapp.CancelBookingCommand{BookingID: c.Param("id"), Reason: reason}
	h.transition(c, func() (*dto.Booking, error) {
		return commands.Dispatch[bookingapp.CancelBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	})
}

func (h BookingHandler) Confirm(c *gin.Context) {
	cmd := bookingapp.ConfirmBookingCommand{BookingID: c.Param("id")}
	h.transition(c, func() (*dto.Booking, error) {
		return commands.Dispatch[bookingapp.ConfirmBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	})
}

func (h BookingHandler) Decline(c *gin.Context) {
	reason, ok := bindReason(c)
	if !ok {
		return
	}
	cmd := bookingapp.DeclineBookingCommand{BookingID: c.Param("id"), Reason: reason}
	h.transition(c, func() (*dto.Booking, error) {
		return commands.Dispatch[bookingapp.DeclineBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	})
}

func (h BookingHandler) transition(c *gin.Context, run func() (*dto.Booking, error)) {
	result, err := run()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) ListForListing(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.Query("include_inactive"))
	q := bookingapp.ListBookingsQuery{ListingID: c.Param("id"), IncludeInactive: includeInactive}
	result, err := queries.Ask[bookingapp.ListBookingsQuery, []dto.Booking](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

var _ BookingHTTP = BookingHandler{}
