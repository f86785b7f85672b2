package handlers

import (
	"github.com/crowdescrow/escrowd/internal/core/application"
	"github.com/crowdescrow/escrowd/internal/core/ports"
	"github.com/crowdescrow/escrowd/internal/infrastructure/adjudicator/centralized"
	"github.com/crowdescrow/escrowd/internal/interface/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AppService application.Service
	Ledger     ports.Ledger
	// Adjudicator is optional, the ruling route is served only if set.
	Adjudicator centralized.Adjudicator
	// Gatherer is optional, /metrics is served only if set.
	Gatherer  prometheus.Gatherer
	JWTSecret string
	RateLimit float64
	RateBurst int
}

type handler struct {
	appSvc      application.Service
	ledger      ports.Ledger
	adjudicator centralized.Adjudicator
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	h := &handler{
		appSvc:      cfg.AppService,
		ledger:      cfg.Ledger,
		adjudicator: cfg.Adjudicator,
	}

	r := gin.New()
	r.Use(gin.Recovery(), middlewares.Logger())

	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/v1")
	v1.GET("/info", h.getInfo)
	v1.GET("/params", h.getParams)
	v1.GET("/subjects", h.listSubjects)
	v1.GET("/subjects/:id", h.getSubject)
	v1.GET("/balances/:account", h.getBalance)

	auth := v1.Group("")
	auth.Use(middlewares.Auth(cfg.JWTSecret), middlewares.RateLimit(cfg.RateLimit, cfg.RateBurst))
	auth.POST("/subjects/:id/requests", h.submit)
	auth.POST("/subjects/:id/challenge", h.challenge)
	auth.POST("/subjects/:id/contributions", h.contribute)
	auth.POST("/subjects/:id/execute", h.executeUnchallenged)
	auth.POST("/subjects/:id/timeout", h.timeoutFundingWindow)
	auth.POST("/subjects/:id/withdrawals", h.withdraw)
	auth.PUT("/params", h.updateParams)
	auth.POST("/balances/deposit", h.deposit)
	if h.adjudicator != nil {
		auth.POST("/adjudicator/disputes/:id/ruling", h.giveRuling)
	}

	return r
}
