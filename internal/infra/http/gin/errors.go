package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/handlers/hostcalendar"
	"staybook/internal/app/middleware"
	"staybook/internal/app/queries"
	"staybook/internal/domain/availability"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/calendardate"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/infra/db/mongo"
	"staybook/internal/infra/storage/memory"
	"staybook/internal/infra/validation"
)

type errorBody struct {
	Error     string                  `json:"error"`
	Code      string                  `json:"code"`
	Fields    []validation.FieldError `json:"fields,omitempty"`
	Decision  *decisionBody           `json:"decision,omitempty"`
	RequestID string                  `json:"request_id,omitempty"`
}

type decisionBody struct {
	Reason         string `json:"reason"`
	Date           string `json:"date,omitempty"`
	BookingID      string `json:"booking_id,omitempty"`
	BlockedRangeID string `json:"blocked_range_id,omitempty"`
	MinAllowed     string `json:"min_allowed,omitempty"`
}

var statusTable = []struct {
	err    error
	status int
	code   string
}{
	{validation.ErrValidation, http.StatusBadRequest, "validation_failed"},
	{middleware.ErrInvalidMessage, http.StatusBadRequest, "invalid_request"},
	{availability.ErrInvalidRange, http.StatusBadRequest, "invalid_range"},
	{daterange.ErrInvalidRange, http.StatusBadRequest, "invalid_range"},
	{calendardate.ErrInvalidDate, http.StatusBadRequest, "invalid_date"},
	{hostcalendar.ErrInvalidDate, http.StatusBadRequest, "invalid_date"},
	{availability.ErrBlockedRangeInvalid, http.StatusBadRequest, "invalid_range"},
	{availability.ErrBlockedRangeListing, http.StatusBadRequest, "invalid_range"},
	{availability.ErrBlockedRangeScope, http.StatusBadRequest, "invalid_range"},
	{pricing.ErrRuleRange, http.StatusBadRequest, "invalid_range"},
	{pricing.ErrRuleTooLong, http.StatusBadRequest, "rule_too_long"},
	{pricing.ErrRulePrice, http.StatusBadRequest, "invalid_price"},
	{pricing.ErrRuleListing, http.StatusBadRequest, "invalid_rule"},
	{booking.ErrInvalidGuests, http.StatusBadRequest, "invalid_guests"},
	{booking.ErrGuestRequired, http.StatusBadRequest, "guest_required"},
	{listings.ErrListingNotFound, http.StatusNotFound, "listing_not_found"},
	{booking.ErrBookingNotFound, http.StatusNotFound, "booking_not_found"},
	{availability.ErrBlockedRangeNotFound, http.StatusNotFound, "blocked_range_not_found"},
	{pricing.ErrRuleNotFound, http.StatusNotFound, "price_rule_not_found"},
	{availability.ErrBooked, http.StatusConflict, "booked"},
	{booking.ErrInvalidState, http.StatusConflict, "invalid_state"},
	{middleware.ErrIdempotencyKeyReused, http.StatusConflict, "idempotency_key_reused"},
	{memory.ErrConcurrentUpdate, http.StatusConflict, "concurrent_update"},
	{mongo.ErrConcurrentUpdate, http.StatusConflict, "concurrent_update"},
	{availability.ErrTooSoon, http.StatusUnprocessableEntity, "too_soon"},
	{availability.ErrBlocked, http.StatusUnprocessableEntity, "blocked"},
	{booking.ErrStayLength, http.StatusUnprocessableEntity, "stay_length"},
	{commands.ErrHandlerNotFound, http.StatusNotImplemented, "not_implemented"},
	{queries.ErrHandlerNotFound, http.StatusNotImplemented, "not_implemented"},
}

// writeError maps domain and bus errors onto HTTP statuses. Unknown errors
// are 500s and keep their message out of the response.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	body := errorBody{Error: "internal error", Code: "internal", RequestID: c.GetString("request_id")}
	status := http.StatusInternalServerError
	for _, row := range statusTable {
		if errors.Is(err, row.err) {
			status, body.Code, body.Error = row.status, row.code, err.Error()
			break
		}
	}
	var verr *validation.Error
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	var unavailable *availability.UnavailableError
	if errors.As(err, &unavailable) {
		d := unavailable.Decision
		body.Error = d.Message()
		body.Decision = &decisionBody{
			Reason:         string(d.Reason),
			Date:           formatDate(d.Date),
			BookingID:      d.BookingID,
			BlockedRangeID: d.BlockedRangeID,
			MinAllowed:     formatDate(d.MinAllowed),
		}
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{
		Error:     err.Error(),
		Code:      "bad_request",
		RequestID: c.GetString("request_id"),
	})
}

func formatDate(d calendardate.Date) string {
	if !d.Valid() {
		return ""
	}
	return d.Format()
}
