package handlers

import (
	"errors"
	"net/http"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{domain.ErrInsufficientValue, http.StatusPaymentRequired},
	{domain.ErrInvalidStateTransition, http.StatusConflict},
	{domain.ErrWindowNotYetElapsed, http.StatusTooEarly},
	{domain.ErrWindowExpired, http.StatusGone},
	{domain.ErrUnauthorizedCaller, http.StatusForbidden},
	{domain.ErrAdjudicatorCallFailed, http.StatusBadGateway},
	{domain.ErrSubjectNotFound, http.StatusNotFound},
	{domain.ErrInvalidParams, http.StatusBadRequest},
}

func errorStatus(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Errorf("failed to serve %s %s", c.Request.Method, c.FullPath())
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
