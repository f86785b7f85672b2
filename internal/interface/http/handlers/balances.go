package handlers

import (
	"fmt"
	"net/http"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/crowdescrow/escrowd/internal/interface/http/middlewares"
	"github.com/gin-gonic/gin"
)

func (h *handler) getBalance(c *gin.Context) {
	account := c.Param("account")
	balance, err := h.ledger.Balance(c.Request.Context(), account)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account, "balance": balance})
}

// deposit tops up an account, the caller's own if none is given.
func (h *handler) deposit(c *gin.Context) {
	var body depositBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if body.Amount == 0 {
		badRequest(c, fmt.Errorf("%w: missing amount", domain.ErrInvalidParams))
		return
	}
	account := body.Account
	if len(account) <= 0 {
		account = middlewares.Caller(c)
	}

	ctx := c.Request.Context()
	if err := h.ledger.Deposit(ctx, account, body.Amount); err != nil {
		fail(c, err)
		return
	}
	balance, err := h.ledger.Balance(ctx, account)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account, "balance": balance})
}
