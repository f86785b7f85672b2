package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crowdescrow/escrowd/internal/core/application"
	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/crowdescrow/escrowd/internal/core/ports"
	"github.com/crowdescrow/escrowd/internal/infrastructure/adjudicator/centralized"
	"github.com/crowdescrow/escrowd/internal/infrastructure/db"
	badgerledger "github.com/crowdescrow/escrowd/internal/infrastructure/ledger/badger"
	inmemoryledger "github.com/crowdescrow/escrowd/internal/infrastructure/ledger/inmemory"
	inmemorylocker "github.com/crowdescrow/escrowd/internal/infrastructure/locker/inmemory"
	redislocker "github.com/crowdescrow/escrowd/internal/infrastructure/locker/redis"
	prometheusmetrics "github.com/crowdescrow/escrowd/internal/infrastructure/metrics/prometheus"
	watermillnotifier "github.com/crowdescrow/escrowd/internal/infrastructure/notifier/watermill"
	timescheduler "github.com/crowdescrow/escrowd/internal/infrastructure/scheduler/gocron"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	supportedDbs = supportedType{
		"badger":   {},
		"sqlite":   {},
		"postgres": {},
	}
	supportedLedgers = supportedType{
		"inmemory": {},
		"badger":   {},
	}
	supportedLockers = supportedType{
		"inmemory": {},
		"redis":    {},
	}
)

type Config struct {
	Datadir  string
	Port     uint32
	LogLevel int

	DbType         string
	DbDir          string
	DbUrl          string
	LedgerType     string
	LockerType     string
	RedisUrl       string
	LockTTL        time.Duration
	KeeperInterval int64

	JWTSecret string `json:"-"`
	RateLimit float64
	RateBurst int

	Governor             string
	RequesterDeposit     uint64
	ChallengePeriod      int64
	FundingWaitingPeriod int64
	SharedMultiplier     uint64
	WinnerMultiplier     uint64
	LoserMultiplier      uint64

	AdjudicatorId    string
	AdjudicatorOwner string
	ArbitrationCost  uint64
	AppealCost       uint64
	AppealPeriod     int64

	repo        ports.RepoManager
	ledger      ports.Ledger
	scheduler   ports.SchedulerService
	publisher   ports.EventPublisher
	locker      ports.Locker
	adjudicator centralized.Adjudicator
	registry    *prometheus.Registry
	svc         application.Service
}

func (c *Config) String() string {
	json, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(json)
}

var (
	Datadir              = "DATADIR"
	Port                 = "PORT"
	LogLevel             = "LOG_LEVEL"
	DbType               = "DB_TYPE"
	DbUrl                = "DB_URL"
	LedgerType           = "LEDGER_TYPE"
	LockerType           = "LOCKER_TYPE"
	RedisUrl             = "REDIS_URL"
	LockTTL              = "LOCK_TTL"
	KeeperInterval       = "KEEPER_INTERVAL"
	JWTSecret            = "JWT_SECRET"
	RateLimit            = "RATE_LIMIT"
	RateBurst            = "RATE_BURST"
	Governor             = "GOVERNOR"
	RequesterDeposit     = "REQUESTER_DEPOSIT"
	ChallengePeriod      = "CHALLENGE_PERIOD"
	FundingWaitingPeriod = "FUNDING_WAITING_PERIOD"
	SharedMultiplier     = "SHARED_MULTIPLIER"
	WinnerMultiplier     = "WINNER_MULTIPLIER"
	LoserMultiplier      = "LOSER_MULTIPLIER"
	AdjudicatorId        = "ADJUDICATOR_ID"
	AdjudicatorOwner     = "ADJUDICATOR_OWNER"
	ArbitrationCost      = "ARBITRATION_COST"
	AppealCost           = "APPEAL_COST"
	AppealPeriod         = "APPEAL_PERIOD"

	defaultDatadir              = appDataDir()
	DefaultPort                 = 7171
	defaultLogLevel             = 4
	defaultDbType               = "badger"
	defaultLedgerType           = "badger"
	defaultLockerType           = "inmemory"
	defaultLockTTL              = 30 * time.Second
	defaultKeeperInterval       = 10
	defaultRateLimit            = 5
	defaultRateBurst            = 10
	defaultRequesterDeposit     = 1000
	defaultChallengePeriod      = 3 * 24 * 60 * 60
	defaultFundingWaitingPeriod = 3 * 24 * 60 * 60
	defaultSharedMultiplier     = domain.MultiplierPrecision
	defaultWinnerMultiplier     = domain.MultiplierPrecision
	defaultLoserMultiplier      = 2 * domain.MultiplierPrecision
	defaultAdjudicatorId        = "centralized"
	defaultArbitrationCost      = 1000
	defaultAppealCost           = 1000
	defaultAppealPeriod         = 24 * 60 * 60
)

func LoadConfig() (*Config, error) {
	viper.SetEnvPrefix("ESCROWD")
	viper.AutomaticEnv()

	viper.SetDefault(Datadir, defaultDatadir)
	viper.SetDefault(Port, DefaultPort)
	viper.SetDefault(LogLevel, defaultLogLevel)
	viper.SetDefault(DbType, defaultDbType)
	viper.SetDefault(LedgerType, defaultLedgerType)
	viper.SetDefault(LockerType, defaultLockerType)
	viper.SetDefault(LockTTL, defaultLockTTL)
	viper.SetDefault(KeeperInterval, defaultKeeperInterval)
	viper.SetDefault(RateLimit, defaultRateLimit)
	viper.SetDefault(RateBurst, defaultRateBurst)
	viper.SetDefault(RequesterDeposit, defaultRequesterDeposit)
	viper.SetDefault(ChallengePeriod, defaultChallengePeriod)
	viper.SetDefault(FundingWaitingPeriod, defaultFundingWaitingPeriod)
	viper.SetDefault(SharedMultiplier, defaultSharedMultiplier)
	viper.SetDefault(WinnerMultiplier, defaultWinnerMultiplier)
	viper.SetDefault(LoserMultiplier, defaultLoserMultiplier)
	viper.SetDefault(AdjudicatorId, defaultAdjudicatorId)
	viper.SetDefault(ArbitrationCost, defaultArbitrationCost)
	viper.SetDefault(AppealCost, defaultAppealCost)
	viper.SetDefault(AppealPeriod, defaultAppealPeriod)

	if err := initDatadir(); err != nil {
		return nil, fmt.Errorf("error while creating datadir: %s", err)
	}

	dbPath := filepath.Join(viper.GetString(Datadir), "db")

	var dbUrl string
	if viper.GetString(DbType) == "postgres" {
		dbUrl = viper.GetString(DbUrl)
		if dbUrl == "" {
			return nil, fmt.Errorf("DB_URL not provided")
		}
	}

	return &Config{
		Datadir:              viper.GetString(Datadir),
		Port:                 viper.GetUint32(Port),
		LogLevel:             viper.GetInt(LogLevel),
		DbType:               viper.GetString(DbType),
		DbDir:                dbPath,
		DbUrl:                dbUrl,
		LedgerType:           viper.GetString(LedgerType),
		LockerType:           viper.GetString(LockerType),
		RedisUrl:             viper.GetString(RedisUrl),
		LockTTL:              viper.GetDuration(LockTTL),
		KeeperInterval:       viper.GetInt64(KeeperInterval),
		JWTSecret:            viper.GetString(JWTSecret),
		RateLimit:            viper.GetFloat64(RateLimit),
		RateBurst:            viper.GetInt(RateBurst),
		Governor:             viper.GetString(Governor),
		RequesterDeposit:     viper.GetUint64(RequesterDeposit),
		ChallengePeriod:      viper.GetInt64(ChallengePeriod),
		FundingWaitingPeriod: viper.GetInt64(FundingWaitingPeriod),
		SharedMultiplier:     viper.GetUint64(SharedMultiplier),
		WinnerMultiplier:     viper.GetUint64(WinnerMultiplier),
		LoserMultiplier:      viper.GetUint64(LoserMultiplier),
		AdjudicatorId:        viper.GetString(AdjudicatorId),
		AdjudicatorOwner:     viper.GetString(AdjudicatorOwner),
		ArbitrationCost:      viper.GetUint64(ArbitrationCost),
		AppealCost:           viper.GetUint64(AppealCost),
		AppealPeriod:         viper.GetInt64(AppealPeriod),
	}, nil
}

func appDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".escrowd"
	}
	return filepath.Join(home, ".escrowd")
}

func initDatadir() error {
	datadir := viper.GetString(Datadir)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

// Params returns the engine params seeded on first boot.
func (c *Config) Params() domain.Params {
	return domain.Params{
		Governor:             c.Governor,
		Adjudicator:          c.AdjudicatorId,
		RequesterDeposit:     c.RequesterDeposit,
		ChallengePeriod:      c.ChallengePeriod,
		FundingWaitingPeriod: c.FundingWaitingPeriod,
		SharedMultiplier:     c.SharedMultiplier,
		WinnerMultiplier:     c.WinnerMultiplier,
		LoserMultiplier:      c.LoserMultiplier,
	}
}

func (c *Config) Validate() error {
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if !supportedLedgers.supports(c.LedgerType) {
		return fmt.Errorf("ledger type not supported, please select one of: %s", supportedLedgers)
	}
	if !supportedLockers.supports(c.LockerType) {
		return fmt.Errorf("locker type not supported, please select one of: %s", supportedLockers)
	}
	if c.LockerType == "redis" && len(c.RedisUrl) <= 0 {
		return fmt.Errorf("REDIS_URL not provided")
	}
	if c.KeeperInterval < 0 {
		return fmt.Errorf("invalid keeper interval, must be positive or 0 to disable it")
	}
	if len(c.AdjudicatorOwner) <= 0 {
		return fmt.Errorf("missing adjudicator owner")
	}
	if err := c.Params().Validate(); err != nil {
		return err
	}

	if err := c.repoManager(); err != nil {
		return err
	}
	if err := c.ledgerService(); err != nil {
		return err
	}
	if err := c.schedulerService(); err != nil {
		return err
	}
	if err := c.notifierService(); err != nil {
		return err
	}
	if err := c.lockerService(); err != nil {
		return err
	}
	if err := c.adjudicatorService(); err != nil {
		return err
	}
	if err := c.metricsService(); err != nil {
		return err
	}
	return nil
}

func (c *Config) AppService() (application.Service, error) {
	if c.svc == nil {
		if err := c.appService(); err != nil {
			return nil, err
		}
	}
	return c.svc, nil
}

func (c *Config) Ledger() ports.Ledger {
	return c.ledger
}

func (c *Config) Adjudicator() centralized.Adjudicator {
	return c.adjudicator
}

func (c *Config) MetricsGatherer() prometheus.Gatherer {
	return c.registry
}

func (c *Config) repoManager() error {
	var dataStoreConfig []interface{}
	logger := log.New()

	switch c.DbType {
	case "badger":
		dataStoreConfig = []interface{}{c.DbDir, logger}
	case "sqlite":
		dataStoreConfig = []interface{}{c.DbDir}
	case "postgres":
		dataStoreConfig = []interface{}{c.DbUrl}
	default:
		return fmt.Errorf("unknown db type")
	}

	svc, err := db.NewService(db.ServiceConfig{
		DataStoreType:   c.DbType,
		DataStoreConfig: dataStoreConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) ledgerService() error {
	var svc ports.Ledger
	var err error
	switch c.LedgerType {
	case "inmemory":
		svc = inmemoryledger.NewLedger()
	case "badger":
		svc, err = badgerledger.NewLedger(c.DbDir, log.New())
	default:
		err = fmt.Errorf("unknown ledger type")
	}
	if err != nil {
		return err
	}

	c.ledger = svc
	return nil
}

func (c *Config) schedulerService() error {
	c.scheduler = timescheduler.NewScheduler()
	return nil
}

func (c *Config) notifierService() error {
	c.publisher = watermillnotifier.NewNotifier()
	return nil
}

func (c *Config) lockerService() error {
	var svc ports.Locker
	var err error
	switch c.LockerType {
	case "inmemory":
		svc = inmemorylocker.NewLocker()
	case "redis":
		svc, err = redislocker.NewLocker(c.RedisUrl, c.LockTTL)
	default:
		err = fmt.Errorf("unknown locker type")
	}
	if err != nil {
		return err
	}

	c.locker = svc
	return nil
}

func (c *Config) adjudicatorService() error {
	if c.scheduler == nil {
		return fmt.Errorf("scheduler not set")
	}

	svc, err := centralized.NewAdjudicator(centralized.Config{
		Id:              c.AdjudicatorId,
		Owner:           c.AdjudicatorOwner,
		ArbitrationCost: c.ArbitrationCost,
		AppealCost:      c.AppealCost,
		AppealPeriod:    c.AppealPeriod,
		Datadir:         c.DbDir,
	}, c.scheduler, centralized.WithLogger(log.New()))
	if err != nil {
		return err
	}

	c.adjudicator = svc
	return nil
}

func (c *Config) metricsService() error {
	if c.publisher == nil {
		return fmt.Errorf("event publisher not set")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector, err := prometheusmetrics.NewCollector(registry)
	if err != nil {
		return err
	}
	if err := c.publisher.RegisterEventsHandler(
		domain.SubjectTopic, collector.HandleEvents,
	); err != nil {
		return fmt.Errorf("failed to register metrics handler: %s", err)
	}

	c.registry = registry
	return nil
}

func (c *Config) appService() error {
	svc, err := application.NewService(
		c.Params(), c.KeeperInterval, c.repo, []ports.Adjudicator{c.adjudicator},
		c.ledger, c.publisher, c.scheduler, c.locker,
	)
	if err != nil {
		return err
	}
	c.adjudicator.RegisterRuler(svc)

	c.svc = svc
	return nil
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
