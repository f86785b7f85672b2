package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/crowdescrow/escrowd/internal/core/application"
	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/crowdescrow/escrowd/internal/interface/http/middlewares"
	"github.com/gin-gonic/gin"
)

func (h *handler) listSubjects(c *gin.Context) {
	offset, err := queryInt(c, "offset")
	if err != nil {
		badRequest(c, err)
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		badRequest(c, err)
		return
	}

	ids, err := h.appSvc.ListSubjects(c.Request.Context(), offset, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subjects": ids})
}

func (h *handler) getSubject(c *gin.Context) {
	subject, err := h.appSvc.GetSubject(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toSubjectView(subject))
}

func (h *handler) submit(c *gin.Context) {
	var body submitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	kind, err := domain.ParseRequestKind(body.Kind)
	if err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.appSvc.Submit(c.Request.Context(), application.SubmitRequest{
		SubjectId: c.Param("id"),
		Kind:      kind,
		Requester: middlewares.Caller(c),
		Value:     body.Value,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, submitView{
		RequestId:    result.RequestId,
		Request:      result.Request,
		Contribution: toContributionView(result.Contribution),
	})
}

func (h *handler) challenge(c *gin.Context) {
	var body challengeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.appSvc.Challenge(c.Request.Context(), application.ChallengeRequest{
		SubjectId:  c.Param("id"),
		Challenger: middlewares.Caller(c),
		Value:      body.Value,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, challengeView{
		Request:      result.Request,
		Contribution: toContributionView(result.Contribution),
	})
}

func (h *handler) contribute(c *gin.Context) {
	var body contributeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	side, err := domain.ParseSide(body.Side)
	if err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.appSvc.Contribute(c.Request.Context(), application.ContributeRequest{
		SubjectId:   c.Param("id"),
		Side:        side,
		Contributor: middlewares.Caller(c),
		Value:       body.Value,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toContributionView(result))
}

func (h *handler) executeUnchallenged(c *gin.Context) {
	if err := h.appSvc.ExecuteUnchallenged(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *handler) timeoutFundingWindow(c *gin.Context) {
	if err := h.appSvc.TimeoutFundingWindow(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *handler) withdraw(c *gin.Context) {
	var body withdrawBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	beneficiary := body.Beneficiary
	if len(beneficiary) <= 0 {
		beneficiary = middlewares.Caller(c)
	}

	ctx := c.Request.Context()
	var (
		amount uint64
		err    error
	)
	if body.Round == nil {
		amount, err = h.appSvc.WithdrawAll(ctx, beneficiary, c.Param("id"), body.Request)
	} else {
		amount, err = h.appSvc.Withdraw(ctx, application.WithdrawRequest{
			Beneficiary: beneficiary,
			SubjectId:   c.Param("id"),
			Request:     body.Request,
			Round:       *body.Round,
		})
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"beneficiary": beneficiary, "amount": amount})
}

func queryInt(c *gin.Context, key string) (int, error) {
	str := c.Query(key)
	if len(str) <= 0 {
		return 0, nil
	}
	v, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, str)
	}
	return v, nil
}
