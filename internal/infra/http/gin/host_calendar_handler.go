package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/hostcalendar"
	"staybook/internal/app/queries"
)

// HostCalendarHandler edits the blocked ranges and price rules of one listing.
type HostCalendarHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type blockRangeRequest struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason"`
}

type priceRuleRequest struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	NightlyPrice int64  `json:"nightly_price"`
}

func (h HostCalendarHandler) Config(c *gin.Context) {
	q := hostcalendar.CalendarConfigQuery{ListingID: c.Param("id")}
	result, err := queries.Ask[hostcalendar.CalendarConfigQuery, dto.CalendarConfig](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostCalendarHandler) Block(c *gin.Context) {
	blockRange(c, h.Commands, c.Param("id"))
}

func (h HostCalendarHandler) Unblock(c *gin.Context) {
	cmd := hostcalendar.UnblockRangeCommand{RangeID: c.Param("rangeId")}
	result, err := commands.Dispatch[hostcalendar.UnblockRangeCommand, *dto.Deleted](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostCalendarHandler) SetPriceRule(c *gin.Context) {
	var req priceRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := hostcalendar.SetPriceRuleCommand{
		ListingID:    c.Param("id"),
		Start:        req.Start,
		End:          req.End,
		NightlyPrice: req.NightlyPrice,
	}
	result, err := commands.Dispatch[hostcalendar.SetPriceRuleCommand, *dto.PriceRuleResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h HostCalendarHandler) DeletePriceRule(c *gin.Context) {
	cmd := hostcalendar.DeletePriceRuleCommand{RuleID: c.Param("ruleId")}
	result, err := commands.Dispatch[hostcalendar.DeletePriceRuleCommand, *dto.Deleted](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// blockRange serves both the listing route and the admin global route; an
// empty listingID makes the range global.
func blockRange(c *gin.Context, bus commands.Bus, listingID string) {
	var req blockRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := hostcalendar.BlockRangeCommand{
		ListingID: listingID,
		Start:     req.Start,
		End:       req.End,
		Reason:    req.Reason,
	}
	result, err := commands.Dispatch[hostcalendar.BlockRangeCommand, *dto.BlockedRangeResult](c.Request.Context(), bus, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ HostCalendarHTTP = HostCalendarHandler{}
