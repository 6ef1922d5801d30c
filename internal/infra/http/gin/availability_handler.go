package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	availabilityapp "staybook/internal/app/handlers/availability"
	pricingapp "staybook/internal/app/handlers/pricing"
	"staybook/internal/app/queries"
)

// AvailabilityHandler serves the guest-facing calendar views.
type AvailabilityHandler struct {
	Queries queries.Bus
}

type calendarParams struct {
	Year     int    `form:"year"`
	Month    int    `form:"month"`
	CheckIn  string `form:"check_in"`
	CheckOut string `form:"check_out"`
}

func (h AvailabilityHandler) Calendar(c *gin.Context) {
	var p calendarParams
	if err := c.ShouldBindQuery(&p); err != nil {
		badRequest(c, err)
		return
	}
	q := availabilityapp.MonthGridQuery{
		ListingID: c.Param("id"),
		Year:      p.Year,
		Month:     p.Month,
		CheckIn:   p.CheckIn,
		CheckOut:  p.CheckOut,
	}
	result, err := queries.Ask[availabilityapp.MonthGridQuery, dto.MonthGrid](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) Check(c *gin.Context) {
	q := availabilityapp.CheckStayQuery{
		ListingID: c.Param("id"),
		CheckIn:   c.Query("check_in"),
		CheckOut:  c.Query("check_out"),
	}
	result, err := queries.Ask[availabilityapp.CheckStayQuery, dto.Availability](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type selectDayRequest struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	Day         string `json:"day"`
	Guests      int    `json:"guests"`
	ExtraGuests int    `json:"extra_guests"`
}

// Select applies one click to the client's current selection.
func (h AvailabilityHandler) Select(c *gin.Context) {
	var req selectDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	q := availabilityapp.SelectDayQuery{
		ListingID:   c.Param("id"),
		Start:       req.Start,
		End:         req.End,
		Day:         req.Day,
		Guests:      req.Guests,
		ExtraGuests: req.ExtraGuests,
	}
	result, err := queries.Ask[availabilityapp.SelectDayQuery, dto.SelectResult](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type quoteParams struct {
	CheckIn     string `form:"check_in"`
	CheckOut    string `form:"check_out"`
	Guests      int    `form:"guests"`
	ExtraGuests int    `form:"extra_guests"`
}

func (h AvailabilityHandler) Quote(c *gin.Context) {
	var p quoteParams
	if err := c.ShouldBindQuery(&p); err != nil {
		badRequest(c, err)
		return
	}
	q := pricingapp.QuoteQuery{
		ListingID:   c.Param("id"),
		CheckIn:     p.CheckIn,
		CheckOut:    p.CheckOut,
		Guests:      p.Guests,
		ExtraGuests: p.ExtraGuests,
	}
	result, err := queries.Ask[pricingapp.QuoteQuery, dto.Quote](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
