package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	availabilityapp "staybook/internal/app/handlers/availability"
	"staybook/internal/app/queries"
)

type AdminHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type timelineParams struct {
	From      string `form:"from"`
	Days      int    `form:"days"`
	ListingID string `form:"listing_id"`
}

func (h AdminHandler) Timeline(c *gin.Context) {
	var p timelineParams
	if err := c.ShouldBindQuery(&p); err != nil {
		badRequest(c, err)
		return
	}
	q := availabilityapp.TimelineQuery{From: p.From, Days: p.Days, ListingID: p.ListingID}
	result, err := queries.Ask[availabilityapp.TimelineQuery, dto.Timeline](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) BlockGlobal(c *gin.Context) {
	blockRange(c, h.Commands, "")
}

var _ AdminHTTP = AdminHandler{}
