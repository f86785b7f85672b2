package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/crowdescrow/escrowd/internal/config"
	httpservice "github.com/crowdescrow/escrowd/internal/interface/http"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

//nolint:all
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	urlFlag = &cli.StringFlag{
		Name:  "url",
		Usage: "the url of the escrowd http api",
		Value: fmt.Sprintf("http://localhost:%d", config.DefaultPort),
	}
	callerFlag = &cli.StringFlag{
		Name:    "caller",
		Usage:   "the identity of the caller, used when the server has no jwt secret",
		EnvVars: []string{"ESCROWD_CALLER"},
	}
	tokenFlag = &cli.StringFlag{
		Name:    "token",
		Usage:   "the bearer token of the caller",
		EnvVars: []string{"ESCROWD_TOKEN"},
	}
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s (%s) %s", version, commit, date)
	app.Name = "escrowd"
	app.Usage = "run or manage the crowdfunded dispute escrow daemon"
	app.Flags = []cli.Flag{urlFlag, callerFlag, tokenFlag}
	app.Commands = append(
		app.Commands,
		subjectCmd,
		contributeCmd,
		withdrawCmd,
		paramsCmd,
	)
	app.Action = mainAction

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func mainAction(_ *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid config: %s", err)
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	svcConfig := httpservice.Config{
		Port:      cfg.Port,
		JWTSecret: cfg.JWTSecret,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	}

	svc, err := httpservice.NewService(svcConfig, cfg)
	if err != nil {
		return err
	}

	log.RegisterExitHandler(svc.Stop)

	log.Info("starting service...")
	if err := svc.Start(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, os.Interrupt)
	<-sigChan

	log.Info("shutting down service...")
	log.Exit(0)
	return nil
}
