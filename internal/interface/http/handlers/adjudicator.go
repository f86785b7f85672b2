package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/crowdescrow/escrowd/internal/interface/http/middlewares"
	"github.com/gin-gonic/gin"
)

func (h *handler) giveRuling(c *gin.Context) {
	disputeId, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, fmt.Errorf("invalid dispute id: %s", c.Param("id")))
		return
	}
	var body rulingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	ruling, err := domain.ParseRuling(body.Ruling)
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := h.adjudicator.GiveRuling(
		c.Request.Context(), middlewares.Caller(c), disputeId, ruling,
	); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dispute_id": disputeId, "ruling": ruling.String()})
}
