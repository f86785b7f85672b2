package handlers

import (
	"net/http"

	"github.com/crowdescrow/escrowd/internal/interface/http/middlewares"
	"github.com/gin-gonic/gin"
)

func (h *handler) getInfo(c *gin.Context) {
	info, err := h.appSvc.GetInfo(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, infoView{
		Adjudicators:   info.Adjudicators,
		KeeperInterval: info.KeeperInterval,
		Params:         toParamsView(info.Params),
	})
}

func (h *handler) getParams(c *gin.Context) {
	params, err := h.appSvc.GetParams(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toParamsView(*params))
}

func (h *handler) updateParams(c *gin.Context) {
	var body paramsView
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	params := body.toParams()
	if err := h.appSvc.UpdateParams(
		c.Request.Context(), middlewares.Caller(c), params,
	); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toParamsView(params))
}
