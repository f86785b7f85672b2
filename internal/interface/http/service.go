package httpservice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/crowdescrow/escrowd/internal/config"
	interfaces "github.com/crowdescrow/escrowd/internal/interface"
	"github.com/crowdescrow/escrowd/internal/interface/http/handlers"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type service struct {
	config    Config
	appConfig *config.Config
	server    *http.Server
	group     *errgroup.Group
}

func NewService(
	svcConfig Config, appConfig *config.Config,
) (interfaces.Service, error) {
	if err := svcConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service config: %s", err)
	}
	if err := appConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid app config: %s", err)
	}

	return &service{config: svcConfig, appConfig: appConfig}, nil
}

func (s *service) Start() error {
	appSvc, err := s.appConfig.AppService()
	if err != nil {
		return err
	}
	if err := appSvc.Start(); err != nil {
		return fmt.Errorf("failed to start app service: %s", err)
	}
	log.Info("started app service")

	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.RouterConfig{
		AppService:  appSvc,
		Ledger:      s.appConfig.Ledger(),
		Adjudicator: s.appConfig.Adjudicator(),
		Gatherer:    s.appConfig.MetricsGatherer(),
		JWTSecret:   s.config.JWTSecret,
		RateLimit:   s.config.RateLimit,
		RateBurst:   s.config.RateBurst,
	})
	s.server = &http.Server{
		Addr:              s.config.address(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.group = new(errgroup.Group)
	s.group.Go(func() error {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server stopped unexpectedly")
			return err
		}
		return nil
	})
	log.Infof("started listening at %s", s.config.address())

	return nil
}

func (s *service) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("failed to shutdown http server gracefully")
		}
		if err := s.group.Wait(); err != nil {
			log.WithError(err).Warn("http server exited with error")
		}
		log.Info("stopped http server")
	}

	appSvc, _ := s.appConfig.AppService()
	if appSvc != nil {
		appSvc.Stop()
		log.Info("stopped app service")
	}
	if adjudicator := s.appConfig.Adjudicator(); adjudicator != nil {
		adjudicator.Close()
		log.Info("closed adjudicator")
	}
}
